package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/testlify/tenderstack/config"
	"github.com/testlify/tenderstack/interfaces"
	"github.com/testlify/tenderstack/internal/models"
)

type Repositories struct {
	EmailRepository interfaces.EmailRepository
	LogRepository   interfaces.LogRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		EmailRepository: NewEmailRepository(db),
		LogRepository:   NewLogRepository(db),
	}
}

func MigrateDB(dbConfig *config.TenderstackDatabaseConfig, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(5)

	err = db.AutoMigrate(
		&models.TenderEmail{},
		&models.ProcessingLog{},
	)

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConn)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConn)
	sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}
