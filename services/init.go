package services

import (
	"github.com/testlify/tenderstack/config"
	"github.com/testlify/tenderstack/interfaces"
	"github.com/testlify/tenderstack/internal/dedup"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/repository"
	"github.com/testlify/tenderstack/services/ai"
	"github.com/testlify/tenderstack/services/export"
	"github.com/testlify/tenderstack/services/filter"
	"github.com/testlify/tenderstack/services/parser"
	"github.com/testlify/tenderstack/services/sheets"
	"github.com/testlify/tenderstack/services/storage"
)

type Services struct {
	AIService     interfaces.AIService
	ParserService *parser.Service
	SheetsService interfaces.SheetsService
	CSVExporter   *export.CSVExporter
	FilterService *filter.Service

	// Optional: nil / absent when not configured.
	StorageService interfaces.StorageService
	DedupFilter    interfaces.DedupService
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	services := &Services{}

	if cfg.GeminiConfig.ApiKey != "" {
		services.AIService = ai.NewGeminiService(cfg.GeminiConfig, log)
	} else {
		log.Warn("GEMINI_API_KEY not set, structural parsing only and no relevance scoring")
	}

	services.ParserService = parser.NewService(services.AIService, log)

	if cfg.GoogleSheetsConfig.SpreadsheetID != "" && cfg.GoogleSheetsConfig.ServiceAccountJSON != "" {
		sheetsService, err := sheets.NewSheetsService(cfg.GoogleSheetsConfig, log)
		if err != nil {
			return nil, err
		}
		services.SheetsService = sheetsService
	} else {
		log.Warn("google sheets not configured, filtered tenders will only be exported to CSV")
	}

	if cfg.R2StorageConfig.Enabled() {
		services.StorageService = storage.NewR2AttachmentStorage(cfg.R2StorageConfig)
	}

	services.CSVExporter = export.NewCSVExporter(cfg.AppConfig.ExportDir, services.StorageService, log)

	services.FilterService = filter.NewService(
		repos.EmailRepository,
		services.AIService,
		services.SheetsService,
		services.CSVExporter,
		log,
	)

	if cfg.AppConfig.RedisURL != "" {
		dedupFilter, err := dedup.NewFilter(cfg.AppConfig.RedisURL)
		if err != nil {
			return nil, err
		}
		services.DedupFilter = dedupFilter
	}

	return services, nil
}
