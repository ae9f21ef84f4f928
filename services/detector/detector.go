// Package detector decides whether an inbound email came from a tender or RFP
// source. Three layers run in strict order: sender domain, sender address pattern,
// subject keyword. The first hit wins and records which layer matched.
package detector

import (
	"strings"

	"github.com/testlify/tenderstack/dto"
	"github.com/testlify/tenderstack/internal/enum"
)

// Detection is the verdict for one email. MatchedBy and MatchedValue are empty when
// IsTender is false.
type Detection struct {
	IsTender     bool
	MatchedBy    enum.MatchChannel
	MatchedValue string
}

func Detect(email *dto.InboundEmail) Detection {
	return DetectWith(DefaultLists(), email)
}

func DetectWith(lists *Lists, email *dto.InboundEmail) Detection {
	fromDomain := email.FromDomain()
	if fromDomain != "" {
		if _, ok := lists.Domains[fromDomain]; ok {
			return Detection{
				IsTender:     true,
				MatchedBy:    enum.MatchChannelDomain,
				MatchedValue: fromDomain,
			}
		}
	}

	fromEmail := email.FromEmail()
	for _, pattern := range lists.SenderPatterns {
		if pattern.MatchString(fromEmail) {
			return Detection{
				IsTender:     true,
				MatchedBy:    enum.MatchChannelEmailPattern,
				MatchedValue: pattern.String(),
			}
		}
	}

	subject := strings.ToLower(email.Subject)
	for _, keyword := range lists.SubjectKeywords {
		if strings.Contains(subject, keyword) {
			return Detection{
				IsTender:     true,
				MatchedBy:    enum.MatchChannelSubjectKeyword,
				MatchedValue: keyword,
			}
		}
	}

	return Detection{}
}
