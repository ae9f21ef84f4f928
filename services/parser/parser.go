// Package parser turns an inbound email into structured tender fields. The primary
// strategy asks the extraction model; when that fails or yields nothing, a structural
// pass over the HTML (or plain text) takes over so no email is ever left unparsed.
package parser

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/testlify/tenderstack/dto"
	"github.com/testlify/tenderstack/interfaces"
	"github.com/testlify/tenderstack/internal/enum"
	"github.com/testlify/tenderstack/internal/logger"
	"github.com/testlify/tenderstack/internal/tracing"
	"github.com/testlify/tenderstack/internal/utils"
)

// Result is one parsed tender plus the strategy that produced it.
type Result struct {
	dto.TenderFields
	Method enum.ParsingMethod
}

type Service struct {
	ai  interfaces.AIService
	log logger.Logger
}

func NewService(ai interfaces.AIService, log logger.Logger) *Service {
	return &Service{
		ai:  ai,
		log: log,
	}
}

// Parse runs the extraction strategies in order and returns at least one result.
// An email can list several tenders, so the model may return more than one; the
// structural fallback always returns exactly one.
func (s *Service) Parse(ctx context.Context, email *dto.InboundEmail) []Result {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ParserService.Parse")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if s.ai != nil {
		fields, err := s.ai.ExtractTenderFields(ctx, email)
		if err == nil && len(fields) > 0 {
			span.SetTag("method", enum.ParsingMethodPrimary.String())
			results := make([]Result, 0, len(fields))
			for _, f := range fields {
				results = append(results, Result{TenderFields: f, Method: enum.ParsingMethodPrimary})
			}
			return results
		}
		if err != nil {
			tracing.TraceErr(span, err)
			s.log.Warnf("extraction model failed, falling back to structural parse: %v", err)
		}
	}

	span.SetTag("method", enum.ParsingMethodStructural.String())
	return []Result{s.parseStructural(email)}
}

func (s *Service) parseStructural(email *dto.InboundEmail) Result {
	fields := ParseStructural(email.HtmlBody)
	if fields == nil {
		fields = &dto.TenderFields{}
	}

	// Plain-text emails still get links and a deadline.
	if len(fields.ExtractedLinks) == 0 {
		fields.ExtractedLinks = ExtractLinks(email.TextBody)
	}
	if fields.Deadline == nil {
		fields.Deadline = utils.StringPtr(ExtractDeadline(email.TextBody))
	}

	return Result{TenderFields: *fields, Method: enum.ParsingMethodStructural}
}
