package database

import (
	"order-service/internal/model"
	"order-service/pkg/config"
	applog "order-service/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the postgres connection and configures the pool
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	log := applog.GetLogger()

	pgConfig := postgres.Config{
		DSN:                  cfg.DB.GetDSN(),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	conn, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.LogLevel(cfg.DB.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get database handle")
	}
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	log.Info("Database connected successfully",
		zap.String("host", cfg.DB.Host),
		zap.String("database", cfg.DB.Name))
	return conn, nil
}

// Migrate creates or updates the tables of the order engine
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&model.Customer{}, &model.Product{}, &model.Order{}, &model.OrderItem{}); err != nil {
		return errors.Wrap(err, "run database migrations")
	}
	applog.GetLogger().Info("Database migrations applied")
	return nil
}

// Close releases the connection pool
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
