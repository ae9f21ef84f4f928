// Package filter implements the relevance cycle: every unconsumed email is scored
// against the company profile, relevant ones are flagged and pushed to the
// spreadsheet and a CSV export. The consumed flag is monotonic, a record enters at
// most one cycle.
package filter

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/testlify/tenderstack/dto"
	"github.com/testlify/tenderstack/interfaces"
	"github.com/testlify/tenderstack/internal/enum"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/models"
	"github.com/testlify/tenderstack/internal/tracing"
)

// Exporter writes selected tenders to a local file. Implemented by the CSV exporter.
type Exporter interface {
	Export(ctx context.Context, emails []*models.TenderEmail) (string, error)
}

// Result summarizes one filter cycle.
type Result struct {
	Candidates   int    `json:"candidates"`
	Selected     int    `json:"selected"`
	RowsAppended int    `json:"rowsAppended"`
	ExportFile   string `json:"exportFile,omitempty"`
	UsedFallback bool   `json:"usedFallback"`
}

type Service struct {
	emailRepo interfaces.EmailRepository
	ai        interfaces.AIService
	sheets    interfaces.SheetsService
	exporter  Exporter
	log       logger.Logger
}

func NewService(
	emailRepo interfaces.EmailRepository,
	ai interfaces.AIService,
	sheets interfaces.SheetsService,
	exporter Exporter,
	log logger.Logger,
) *Service {
	return &Service{
		emailRepo: emailRepo,
		ai:        ai,
		sheets:    sheets,
		exporter:  exporter,
		log:       log,
	}
}

// RunFilterCycle scores every unconsumed email, selects those above the irrelevant
// tier and delivers them to the configured sinks. Selected records are flagged as
// consumed before delivery; a sink failure surfaces as an error but never reverts
// the flag.
func (s *Service) RunFilterCycle(ctx context.Context) (*Result, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "FilterService.RunFilterCycle")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	emails, err := s.emailRepo.ListUnfiltered(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.SetTag("candidates", len(emails))

	if len(emails) == 0 {
		s.log.Info("filter cycle: no unfiltered emails")
		return &Result{}, nil
	}

	selected, usedFallback := s.selectRelevant(ctx, span, emails)

	result := &Result{
		Candidates:   len(emails),
		Selected:     len(selected),
		UsedFallback: usedFallback,
	}
	if len(selected) == 0 {
		s.log.Infof("filter cycle: 0 of %d emails selected", len(emails))
		return result, nil
	}

	ids := make([]string, 0, len(selected))
	for _, email := range selected {
		ids = append(ids, email.ID)
	}
	if err := s.emailRepo.MarkFiltered(ctx, ids); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if s.sheets != nil {
		rows, err := s.sheets.AppendTenders(ctx, selected)
		if err != nil {
			tracing.TraceErr(span, err)
			return result, err
		}
		result.RowsAppended = rows
	}

	if s.exporter != nil {
		path, err := s.exporter.Export(ctx, selected)
		if err != nil {
			tracing.TraceErr(span, err)
			return result, err
		}
		result.ExportFile = path
	}

	s.log.Infof("filter cycle: selected %d of %d emails, appended %d rows", len(selected), len(emails), result.RowsAppended)
	return result, nil
}

// selectRelevant scores the batch and keeps everything above the irrelevant tier.
// When the scoring model fails, a keyword scan over the stored text stands in so
// the cycle still completes.
func (s *Service) selectRelevant(ctx context.Context, span opentracing.Span, emails []*models.TenderEmail) ([]*models.TenderEmail, bool) {
	if s.ai != nil {
		candidates := make([]dto.TenderCandidate, 0, len(emails))
		byID := make(map[string]*models.TenderEmail, len(emails))
		for _, email := range emails {
			byID[email.ID] = email
			candidates = append(candidates, dto.TenderCandidate{
				ID:          email.ID,
				Subject:     email.Subject,
				TenderTitle: email.TenderTitle,
				Description: email.Description,
			})
		}

		scored, err := s.ai.ScoreTenders(ctx, candidates)
		if err == nil {
			var selected []*models.TenderEmail
			for _, verdict := range scored {
				email, ok := byID[verdict.ID]
				if !ok {
					continue
				}
				// The tier is always derived from the score, the model's own
				// label is kept only as reasoning context.
				tier := enum.TierForScore(verdict.RelevanceScore)
				if err := s.emailRepo.UpdateScore(ctx, email.ID, verdict.RelevanceScore, tier, verdict.MatchReasoning); err != nil {
					tracing.TraceErr(span, err)
					continue
				}
				score := verdict.RelevanceScore
				email.RelevanceScore = &score
				email.Classification = tier
				email.MatchReasoning = verdict.MatchReasoning

				if tier != enum.TierIrrelevant {
					selected = append(selected, email)
				}
			}
			return selected, false
		}

		tracing.TraceErr(span, err)
		s.log.Warnf("scoring model failed, using keyword fallback: %v", err)
	}

	var selected []*models.TenderEmail
	for _, email := range emails {
		if matchesTargetProfile(email) {
			selected = append(selected, email)
		}
	}
	return selected, true
}

func matchesTargetProfile(email *models.TenderEmail) bool {
	for _, text := range []string{
		email.Subject,
		deref(email.TenderTitle),
		deref(email.Description),
		email.BodyText,
		email.BodyHTML,
	} {
		if text != "" && fallbackRegex.MatchString(text) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
