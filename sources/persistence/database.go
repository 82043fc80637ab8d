package persistence

import (
	"fmt"
	"time"

	"fitcoach/sources/configuration"
	"fitcoach/sources/persistence/entities"
	"fitcoach/sources/tracing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

func NewPostgresDatabase(config *configuration.Config, log *tracing.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		config.Database.Host, config.Database.User, config.Database.Password, config.Database.DBName, config.Database.Port, config.Database.SSLMode, config.Database.TimeZone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: NewGormLogger(log)})
	if err != nil {
		log.E("Failed to connect to database", tracing.InnerError, err)
		return nil, err
	}

	if len(config.Database.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(config.Database.Replicas))
		for _, replica := range config.Database.Replicas {
			replicas = append(replicas, postgres.Open(replica))
		}

		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxOpenConns(10).
			SetMaxIdleConns(2).
			SetConnMaxLifetime(2 * time.Hour)

		if err := db.Use(resolver); err != nil {
			log.E("Failed to register read replicas", tracing.InnerError, err)
			return nil, err
		}

		log.I("Read replicas registered", "replicas", len(replicas))
	}

	sqldb, err := db.DB()
	if err != nil {
		log.E("Failed to get underlying sql.DB", tracing.InnerError, err)
		return nil, err
	}

	sqldb.SetMaxOpenConns(10)
	sqldb.SetMaxIdleConns(2)
	sqldb.SetConnMaxLifetime(2 * time.Hour)
	sqldb.SetConnMaxIdleTime(30 * time.Minute)

	log.I("Database initialized successfully")
	return db, nil
}

func NewGormLogger(log *tracing.Logger) logger.Interface {
	return logger.New(
		&gormtracer{logger: log},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB, log *tracing.Logger) error {
	defer tracing.ProfilePoint(log, "Database migration completed", "persistence.migrate")()

	if err := db.AutoMigrate(entities.All()...); err != nil {
		log.E("Failed to migrate database", tracing.InnerError, err)
		return err
	}
	return nil
}
