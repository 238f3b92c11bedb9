package infra

import (
	"fmt"

	"cuadrecaja/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. Schema creation is
// a separate, explicit step — see RunMigrations.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	return db, nil
}

// RunMigrations creates the schema and applies the post-migrate patches.
// Shared with the integration test setup.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Negocio{},
		&model.Tienda{},
		&model.Usuario{},
		&model.CierrePeriodo{},
		&model.Producto{},
		&model.Venta{},
		&model.VentaItem{},
		&model.VentaPago{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Second line of defense for the single-open-period invariant: the
		// transactional FOR UPDATE read is the primary guard, but "at most one
		// NULL fecha_fin per tienda" is also declarable as a partial unique
		// index, which catches any write path that skips the lock.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_cierre_abierto_por_tienda') THEN
		    CREATE UNIQUE INDEX uni_cierre_abierto_por_tienda
		        ON cierre_periodos (tienda_id)
		        WHERE fecha_fin IS NULL;
		  END IF;
		END $$`,
		// Latest-period lookups order by fecha_inicio DESC per tienda
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cierre_tienda_inicio') THEN
		    CREATE INDEX idx_cierre_tienda_inicio
		        ON cierre_periodos (tienda_id, fecha_inicio DESC);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
