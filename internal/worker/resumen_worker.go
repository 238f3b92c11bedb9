package worker

// resumen_worker.go
// Processes period-summary jobs from QueueResumen.
// Renders the closed period's PDF and emails it to the configured address,
// going through the circuit breaker so a downed SMTP relay does not pile up
// blocked workers. Failed sends retry with backoff and end in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cuadrecaja/internal/infra"
	"cuadrecaja/internal/model"
	"cuadrecaja/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxResumenRetries bounds SMTP attempts per job before the DLQ.
const MaxResumenRetries = 3

// ResumenJobPayload is the job envelope sent to QueueResumen.
type ResumenJobPayload struct {
	PeriodoID string `json:"periodo_id"`
}

// ResumenWorker renders and emails the summary of a closed period.
type ResumenWorker struct {
	cierreRepo     repository.CierreRepository
	tiendaRepo     repository.TiendaRepository
	mailer         *infra.Mailer
	cb             *infra.CircuitBreaker
	rdb            *redis.Client
	pdfStoragePath string
	toEmail        string
}

// NewResumenWorker wires all dependencies for the summary worker.
func NewResumenWorker(
	cierreRepo repository.CierreRepository,
	tiendaRepo repository.TiendaRepository,
	mailer *infra.Mailer,
	cb *infra.CircuitBreaker,
	rdb *redis.Client,
	pdfStoragePath string,
	toEmail string,
) *ResumenWorker {
	return &ResumenWorker{
		cierreRepo:     cierreRepo,
		tiendaRepo:     tiendaRepo,
		mailer:         mailer,
		cb:             cb,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
		toEmail:        toEmail,
	}
}

// Process handles a single resumen job:
//  1. Parse ResumenJobPayload from the job envelope
//  2. Fetch the period with backoff; skip if it was reopened or deleted
//  3. Render the summary PDF
//  4. Send the email through the circuit breaker with backoff
//  5. Move to the DLQ after MaxResumenRetries failures
func (w *ResumenWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ResumenJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("resumen_worker: invalid payload")
		return
	}
	if w.toEmail == "" {
		log.Debug().Msg("resumen_worker: no recipient configured, skipping")
		return
	}

	periodoID, err := uuid.Parse(payload.PeriodoID)
	if err != nil {
		log.Error().Str("periodo_id", payload.PeriodoID).Msg("resumen_worker: invalid periodo_id")
		return
	}

	// Transient DB failures retry and end in the DLQ; the job must survive a
	// blip, not vanish with it.
	var periodo *model.CierrePeriodo
	loadErr := withRetry(ctx, MaxResumenRetries, func(attempt int) error {
		p, err := w.cierreRepo.FindPeriodoByID(ctx, periodoID)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("periodo_id", payload.PeriodoID).
				Msg("resumen_worker: load attempt failed, retrying")
			return err
		}
		periodo = p
		return nil
	})
	if loadErr != nil {
		log.Error().Err(loadErr).Str("periodo_id", payload.PeriodoID).Msg("resumen_worker: failed to load periodo after all retries")
		SendToDLQ(ctx, w.rdb, QueueResumen, "resumen", raw,
			fmt.Sprintf("load periodo after %d retries: %v", MaxResumenRetries, loadErr),
			MaxResumenRetries)
		return
	}
	// Not-found is (nil, nil): the row was deleted, nothing to summarize
	if periodo == nil {
		log.Warn().Str("periodo_id", payload.PeriodoID).Msg("resumen_worker: periodo no longer exists, skipping")
		return
	}
	if periodo.EstaAbierto() {
		log.Warn().Str("periodo_id", payload.PeriodoID).Msg("resumen_worker: periodo is still open, skipping")
		return
	}

	tiendaNombre := periodo.TiendaID.String()
	if tienda, err := w.tiendaRepo.FindByID(ctx, periodo.TiendaID); err == nil && tienda != nil {
		tiendaNombre = tienda.Nombre
	}

	pdfPath, err := infra.GenerateResumenPDF(periodo, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("periodo_id", payload.PeriodoID).Msg("resumen_worker: PDF generation failed")
		pdfPath = "" // send the email without attachment
	}

	subject := fmt.Sprintf("Cuadre de caja — %s", tiendaNombre)
	body := fmt.Sprintf(
		"Se cerró el período de caja de %s.\n\nVentas: $%s\nGanancia: $%s\nInversión: $%s\nTransferencias: $%s\n",
		tiendaNombre,
		periodo.TotalVentas.StringFixed(2),
		periodo.TotalGanancia.StringFixed(2),
		periodo.TotalInversion.StringFixed(2),
		periodo.TotalTransferencia.StringFixed(2),
	)

	sendErr := withRetry(ctx, MaxResumenRetries, func(attempt int) error {
		return w.cb.Execute(func() error {
			if err := w.mailer.SendResumen(w.toEmail, subject, body, pdfPath); err != nil {
				log.Warn().
					Err(err).
					Int("attempt", attempt+1).
					Str("periodo_id", payload.PeriodoID).
					Msg("resumen_worker: send attempt failed, retrying")
				return err
			}
			return nil
		})
	})

	if sendErr != nil {
		log.Error().Err(sendErr).Str("periodo_id", payload.PeriodoID).Msg("resumen_worker: send failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueResumen, "resumen", raw,
			fmt.Sprintf("max retries (%d) exceeded: %v", MaxResumenRetries, sendErr),
			MaxResumenRetries)
		return
	}
	log.Info().Str("to", w.toEmail).Str("periodo_id", payload.PeriodoID).Msg("resumen_worker: resumen sent successfully")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
