// Package export writes the selected tenders of a filter cycle to a timestamped CSV
// file on local disk, as a portable sidecar to the spreadsheet append.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/testlify/tenderstack/interfaces"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/models"
	"github.com/testlify/tenderstack/internal/tracing"
)

var csvHeaders = []string{
	"fromEmail",
	"tenderTitle",
	"issuingAuthority",
	"deadline",
	"contractValue",
	"description",
	"attachments",
	"extractedLinks",
}

type CSVExporter struct {
	dir     string
	storage interfaces.StorageService
	log     logger.Logger
}

// NewCSVExporter writes export files under dir. storage may be nil; when set,
// uploaded attachments are referenced by their public URL instead of the raw key.
func NewCSVExporter(dir string, storage interfaces.StorageService, log logger.Logger) *CSVExporter {
	return &CSVExporter{
		dir:     dir,
		storage: storage,
		log:     log,
	}
}

// Export writes one CSV file named filtered_emails_<unix-millis>.csv and returns its
// path. An empty input writes nothing and returns "".
func (e *CSVExporter) Export(ctx context.Context, emails []*models.TenderEmail) (string, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "CSVExporter.Export")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("count", len(emails))

	if len(emails) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to create export directory")
	}

	path := filepath.Join(e.dir, fmt.Sprintf("filtered_emails_%d.csv", time.Now().UnixMilli()))
	file, err := os.Create(path)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to create export file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeaders); err != nil {
		return "", err
	}
	for _, email := range emails {
		if err := writer.Write(e.buildRecord(email)); err != nil {
			tracing.TraceErr(span, err)
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	e.log.Infof("exported %d filtered emails to %s", len(emails), path)
	return path, nil
}

func (e *CSVExporter) buildRecord(email *models.TenderEmail) []string {
	attachments := make([]string, 0, len(email.Attachments))
	for _, a := range email.Attachments {
		attachments = append(attachments, e.attachmentRef(a))
	}

	return []string{
		email.FromAddress,
		deref(email.TenderTitle),
		deref(email.IssuingAuthority),
		deref(email.Deadline),
		deref(email.ContractValue),
		deref(email.Description),
		strings.Join(attachments, ", "),
		strings.Join(email.ExtractedLinks, ", "),
	}
}

// attachmentRef resolves the most useful reference for an attachment: public URL
// when storage is configured with a CDN domain, else the storage key, else the
// bare filename for metadata-only attachments.
func (e *CSVExporter) attachmentRef(a models.Attachment) string {
	if a.StorageKey == "" {
		return a.Name
	}
	if e.storage != nil {
		if url := e.storage.GetPublicURL(a.StorageKey); url != "" {
			return url
		}
	}
	return a.StorageKey
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
