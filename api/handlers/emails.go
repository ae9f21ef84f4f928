package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/testlify/tenderstack/internal/repository"
	"github.com/testlify/tenderstack/internal/tracing"
)

const (
	defaultEmailsLimit  = 100
	defaultTendersLimit = 50
)

type EmailsHandler struct {
	repos *repository.Repositories
}

func NewEmailsHandler(repos *repository.Repositories) *EmailsHandler {
	return &EmailsHandler{repos: repos}
}

// ListAll returns the newest stored emails, tender or not.
func (h *EmailsHandler) ListAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.ListAll")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		limit := parseLimit(c.Query("limit"), defaultEmailsLimit)

		emails, err := h.repos.EmailRepository.ListAll(ctx, limit)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   len(emails),
			"data":    emails,
		})
	}
}

// ListTenders returns the newest detected tender emails.
func (h *EmailsHandler) ListTenders() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.ListTenders")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		limit := parseLimit(c.Query("limit"), defaultTendersLimit)

		emails, err := h.repos.EmailRepository.ListTenders(ctx, limit)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   len(emails),
			"data":    emails,
		})
	}
}

// GetByID returns a single stored email by its record id.
func (h *EmailsHandler) GetByID() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.GetByID")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		id := c.Param("id")
		tracing.TagEntity(span, id)

		email, err := h.repos.EmailRepository.GetByID(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		if email == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "email not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    email,
		})
	}
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
