package pkg

import (
	"fmt"

	"github.com/schoolscan/omr-service/internal/config"
	"github.com/schoolscan/omr-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// Duplicate-key violations must surface as gorm.ErrDuplicatedKey
		// for the write-once grading guard.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for all domain models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.School{},
		&models.Student{},
		&models.Exam{},
		&models.Question{},
		&models.Choice{},
		&models.ExamVersion{},
		&models.AnswerSheet{},
		&models.Result{},
	)
}
