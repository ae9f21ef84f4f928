package handlers

import (
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/repository"
	"github.com/testlify/tenderstack/services"
)

type APIHandlers struct {
	Inbound *InboundHandler
	Emails  *EmailsHandler
	Export  *ExportHandler
}

func InitHandlers(repos *repository.Repositories, svc *services.Services, log logger.Logger) *APIHandlers {
	return &APIHandlers{
		Inbound: NewInboundHandler(repos, svc, log),
		Emails:  NewEmailsHandler(repos),
		Export:  NewExportHandler(repos, svc, log),
	}
}
