package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/testlify/tenderstack/internal/enum"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/models"
	"github.com/testlify/tenderstack/internal/repository"
	"github.com/testlify/tenderstack/internal/tracing"
	"github.com/testlify/tenderstack/services"
)

// ExportHandler triggers a filter cycle on demand, the same work the nightly job
// does on schedule.
type ExportHandler struct {
	repos *repository.Repositories
	svc   *services.Services
	log   logger.Logger
}

func NewExportHandler(repos *repository.Repositories, svc *services.Services, log logger.Logger) *ExportHandler {
	return &ExportHandler{
		repos: repos,
		svc:   svc,
		log:   log,
	}
}

func (h *ExportHandler) Trigger() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "ExportHandler.Trigger")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		started := time.Now()

		result, err := h.svc.FilterService.RunFilterCycle(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			h.writeLog(ctx, enum.LogStatusError, "", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		status := enum.LogStatusSuccess
		reason := "filtered and exported emails"
		if result.Selected == 0 {
			status = enum.LogStatusSkipped
			reason = "no emails selected"
		}
		h.writeLog(ctx, status, reason, "")

		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"candidates":   result.Candidates,
			"filtered":     result.Selected,
			"rowsAppended": result.RowsAppended,
			"exportFile":   result.ExportFile,
			"elapsed":      elapsedSince(started),
		})
	}
}

func (h *ExportHandler) writeLog(ctx context.Context, status enum.LogStatus, reason, errorMessage string) {
	entry := &models.ProcessingLog{
		Status:       status,
		Subject:      "Filtered & exported emails",
		Reason:       reason,
		ErrorMessage: errorMessage,
	}
	if err := h.repos.LogRepository.Create(ctx, entry); err != nil {
		h.log.Errorf("failed to save processing log: %v", err)
	}
}
