package filter

import (
	"regexp"
	"strings"
)

// NAICS codes targeted for federal software procurement.
var TargetNAICSCodes = []string{
	"541511", // Custom Computer Programming Services
	"541512", // Computer Systems Design Services
	"513210", // Software Publishers
	"541519", // Other Computer Related Services
	"541513", // Computer Facilities Management Services
	"541330", // Engineering Services (defense IT)
	"518210", // Data Processing, Hosting, and Related Services
}

var TargetKeywords = []string{
	"psychometric",
	"assessment center",
	"recruitment services",
	"talent development",
	"CPV 79600000",
	"79600000",
	"79635000",
	"CPV 79635000",
	"AI interviewing",
	"Workforce development",
	"Leadership assessment",
}

// fallbackRegex matches any target NAICS code or keyword. Used only when the
// scoring model is unavailable.
var fallbackRegex = buildFallbackRegex()

func buildFallbackRegex() *regexp.Regexp {
	terms := make([]string, 0, len(TargetNAICSCodes)+len(TargetKeywords))
	for _, code := range TargetNAICSCodes {
		terms = append(terms, regexp.QuoteMeta(code))
	}
	for _, keyword := range TargetKeywords {
		terms = append(terms, regexp.QuoteMeta(keyword))
	}
	return regexp.MustCompile(`(?i)` + strings.Join(terms, "|"))
}
