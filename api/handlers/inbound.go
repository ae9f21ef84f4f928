package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/testlify/tenderstack/dto"
	"github.com/testlify/tenderstack/internal/enum"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/models"
	"github.com/testlify/tenderstack/internal/repository"
	"github.com/testlify/tenderstack/internal/tracing"
	"github.com/testlify/tenderstack/internal/utils"
	"github.com/testlify/tenderstack/services"
	"github.com/testlify/tenderstack/services/detector"
	"github.com/testlify/tenderstack/services/parser"
)

// InboundHandler receives the Postmark inbound webhook and runs the ingestion
// pipeline: parse, detect, persist, audit. Postmark expects a 2xx within 30s or it
// retries the delivery.
type InboundHandler struct {
	repos *repository.Repositories
	svc   *services.Services
	log   logger.Logger
}

func NewInboundHandler(repos *repository.Repositories, svc *services.Services, log logger.Logger) *InboundHandler {
	return &InboundHandler{
		repos: repos,
		svc:   svc,
		log:   log,
	}
}

func (h *InboundHandler) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "InboundHandler.Handle")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		if c.Request.Method != http.MethodPost {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method Not Allowed. Use POST."})
			return
		}

		started := time.Now()

		var payload dto.InboundEmail
		if err := c.ShouldBindJSON(&payload); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload."})
			return
		}
		if payload.IsEmpty() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload."})
			return
		}

		messageID := utils.NormalizeMessageID(payload.MessageID)
		tracing.TagEntity(span, messageID)
		h.log.Infof("inbound email received | from=%s | subject=%q", payload.FromEmail(), payload.SubjectOrDefault())

		if h.svc.DedupFilter != nil && !h.svc.DedupFilter.FirstSeen(ctx, messageID) {
			// A marker without a persisted record means an earlier delivery was
			// claimed but never saved. Fall through and process this one.
			existing, lookupErr := h.repos.EmailRepository.GetByMessageID(ctx, messageID)
			if lookupErr != nil {
				tracing.TraceErr(span, lookupErr)
			}
			if existing != nil {
				span.SetTag("duplicate", true)
				h.auditLog(ctx, enum.LogStatusSkipped, payload.FromEmail(), payload.SubjectOrDefault(), "duplicate delivery", "")
				c.JSON(http.StatusOK, gin.H{
					"success":   true,
					"messageId": messageID,
					"dbId":      existing.ID,
					"duplicate": true,
					"elapsed":   elapsedSince(started),
				})
				return
			}
		}

		email := h.buildEmail(ctx, &payload, messageID)

		created, err := h.repos.EmailRepository.Create(ctx, email)
		if err != nil {
			tracing.TraceErr(span, err)
			if h.svc.DedupFilter != nil {
				// Release the marker so the retried delivery is not skipped.
				h.svc.DedupFilter.Forget(ctx, messageID)
			}
			h.log.Errorf("failed to save inbound email: %v", err)
			h.auditLog(ctx, enum.LogStatusError, payload.FromEmail(), payload.SubjectOrDefault(), "", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		if !created {
			h.auditLog(ctx, enum.LogStatusSkipped, payload.FromEmail(), payload.SubjectOrDefault(), "duplicate message id", "")
			c.JSON(http.StatusOK, gin.H{
				"success":   true,
				"messageId": messageID,
				"dbId":      email.ID,
				"duplicate": true,
				"elapsed":   elapsedSince(started),
			})
			return
		}

		h.auditLog(ctx, enum.LogStatusSuccess, payload.FromEmail(), payload.SubjectOrDefault(), "email saved successfully", "")
		h.log.Infof("inbound email saved | id=%s | tender=%t | elapsed=%s", email.ID, email.IsTender, elapsedSince(started))

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"messageId": messageID,
			"dbId":      email.ID,
			"elapsed":   elapsedSince(started),
		})
	}
}

// buildEmail assembles the database record: parsed tender fields, the detection
// verdict and attachment metadata. The record ID is allocated up front so uploaded
// attachments can be keyed by it.
func (h *InboundHandler) buildEmail(ctx context.Context, payload *dto.InboundEmail, messageID string) *models.TenderEmail {
	span, ctx := opentracing.StartSpanFromContext(ctx, "InboundHandler.buildEmail")
	defer span.Finish()

	receivedAt := payload.ReceivedAt()

	email := &models.TenderEmail{
		ID:          utils.GenerateNanoIDWithPrefix("email", 24),
		MessageID:   messageID,
		Subject:     payload.SubjectOrDefault(),
		FromAddress: payload.FromEmail(),
		FromName:    payload.SenderName(),
		FromDomain:  payload.FromDomain(),
		ReceivedAt:  &receivedAt,
		BodyText:    payload.TextBody,
		BodyHTML:    payload.HtmlBody,
		RawPayload:  rawPayloadMap(payload),
	}

	results := h.svc.ParserService.Parse(ctx, payload)
	primary := results[0]
	email.TenderTitle = primary.TenderTitle
	email.IssuingAuthority = primary.IssuingAuthority
	email.Deadline = primary.Deadline
	email.ContractValue = primary.ContractValue
	email.Description = primary.Description
	email.ParsingMethod = primary.Method
	email.ExtractedLinks = mergeLinks(results)

	detection := detector.Detect(payload)
	email.IsTender = detection.IsTender
	email.DetectedBy = detection.MatchedBy
	email.DetectedValue = detection.MatchedValue

	email.Attachments = h.storeAttachments(ctx, email.ID, payload.Attachments)

	return email
}

// storeAttachments keeps metadata for every attachment and, when object storage is
// configured, uploads the decoded content. Base64 blobs are never persisted to the
// database. Upload failures degrade to metadata-only.
func (h *InboundHandler) storeAttachments(ctx context.Context, emailID string, attachments []dto.InboundAttachment) models.AttachmentList {
	if len(attachments) == 0 {
		return nil
	}

	list := make(models.AttachmentList, 0, len(attachments))
	for _, a := range attachments {
		attachment := models.Attachment{
			Name:        a.Name,
			ContentType: a.ContentType,
		}

		if h.svc.StorageService != nil && a.Content != "" {
			data, err := base64.StdEncoding.DecodeString(a.Content)
			if err == nil {
				key := fmt.Sprintf("attachments/%s/%s", emailID, a.Name)
				if err := h.svc.StorageService.Upload(ctx, key, data, a.ContentType); err == nil {
					attachment.StorageKey = key
				} else {
					h.log.Warnf("attachment upload failed for %s: %v", a.Name, err)
				}
			} else {
				h.log.Warnf("attachment %s is not valid base64: %v", a.Name, err)
			}
		}

		list = append(list, attachment)
	}
	return list
}

func (h *InboundHandler) auditLog(ctx context.Context, status enum.LogStatus, sender, subject, reason, errorMessage string) {
	entry := &models.ProcessingLog{
		Status:       status,
		Sender:       sender,
		Subject:      subject,
		Reason:       reason,
		ErrorMessage: errorMessage,
	}
	if err := h.repos.LogRepository.Create(ctx, entry); err != nil {
		h.log.Errorf("failed to save processing log: %v", err)
	}
}

// rawPayloadMap stores the original webhook body for debugging and re-processing,
// minus the base64 attachment content.
func rawPayloadMap(payload *dto.InboundEmail) models.JSONMap {
	raw := models.JSONMap{
		"From":      payload.From,
		"FromName":  payload.FromName,
		"FromFull":  map[string]interface{}{"Email": payload.FromFull.Email, "Name": payload.FromFull.Name},
		"To":        payload.To,
		"Subject":   payload.Subject,
		"MessageID": payload.MessageID,
		"Date":      payload.Date,
		"TextBody":  payload.TextBody,
		"HtmlBody":  payload.HtmlBody,
	}
	if payload.Tag != "" {
		raw["Tag"] = payload.Tag
	}
	return raw
}

// mergeLinks unions the link lists of every parsed tender, preserving order.
func mergeLinks(results []parser.Result) []string {
	seen := make(map[string]struct{})
	var links []string
	for _, r := range results {
		for _, link := range r.ExtractedLinks {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			links = append(links, link)
		}
	}
	return links
}

func elapsedSince(started time.Time) string {
	return fmt.Sprintf("%dms", time.Since(started).Milliseconds())
}
