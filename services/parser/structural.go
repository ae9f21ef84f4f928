package parser

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/testlify/tenderstack/dto"
	"github.com/testlify/tenderstack/internal/utils"
)

// Label synonyms used by the notification services we receive. Keys are normalized
// (lowercased, trailing colon removed).
var labelFields = map[string]string{
	"solicitation title":   "tenderTitle",
	"buying organization":  "issuingAuthority",
	"buying org":           "issuingAuthority",
	"issuing authority":    "issuingAuthority",
	"issued by":            "issuingAuthority",
	"description":          "description",
	"contract value":       "contractValue",
	"estimated value":      "contractValue",
	"total contract value": "contractValue",
	"contract amount":      "contractValue",
	"estimated budget":     "contractValue",
}

var (
	contractInlineRegex = regexp.MustCompile(`(?i)(?:Contract\s+Value|Estimated\s+Value|Total\s+Contract\s+Value|Contract\s+Amount|Estimated\s+Budget)[:\-\s]*([A-Za-z$€£]{0,3}\s*[0-9.,]+(?:\s*(?:USD|EUR|GBP))?)`)
	moneyTokenRegex     = regexp.MustCompile(`(?i)\b(?:USD|EUR|GBP|INR|AUD|CAD|SGD|AED|JPY|CNY)\s?\d+(?:[,.]\d{3})*(?:\.\d{2})?\b|[$€£₹]\s?\d+(?:[,.]\d{3})*(?:\.\d{2})?`)

	brTagRegex   = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTagRegex  = regexp.MustCompile(`</?[^>]+(>|$)`)
	hSpaceRegex  = regexp.MustCompile(`[ \t\r\f]+`)
	newlineRegex = regexp.MustCompile(`\s*\n\s*`)
)

// ParseStructural extracts tender fields from a table-based HTML body, the layout
// most tender notification services emit: label cells ("Solicitation Title:")
// followed by value cells. Returns nil only when markup is empty; it never errors,
// a body with no recognizable labels still yields links and deadline.
func ParseStructural(htmlBody string) *dto.TenderFields {
	if strings.TrimSpace(htmlBody) == "" {
		return nil
	}

	fields := &dto.TenderFields{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err == nil {
		doc.Find("td").Each(func(_ int, cell *goquery.Selection) {
			label := normalizeLabel(cell.Text())
			field, ok := labelFields[label]
			if !ok {
				return
			}

			valueCell := cell.Next()
			if valueCell.Length() == 0 {
				return
			}
			inner, err := valueCell.Html()
			if err != nil {
				return
			}
			value := stripMarkup(inner)
			if value == "" {
				return
			}

			switch field {
			case "tenderTitle":
				if fields.TenderTitle == nil {
					fields.TenderTitle = &value
				}
			case "issuingAuthority":
				if fields.IssuingAuthority == nil {
					fields.IssuingAuthority = &value
				}
			case "description":
				if fields.Description == nil {
					fields.Description = &value
				}
			case "contractValue":
				if fields.ContractValue == nil {
					fields.ContractValue = &value
				}
			}
		})
	}

	stripped := stripMarkup(htmlBody)

	// Contract value: table label first, then an inline "Estimated Value: $X"
	// phrase, then any money-like token anywhere in the text.
	if fields.ContractValue == nil {
		if m := contractInlineRegex.FindStringSubmatch(htmlBody); len(m) > 1 {
			fields.ContractValue = utils.StringPtr(strings.TrimSpace(m[1]))
		} else if m := moneyTokenRegex.FindString(stripped); m != "" {
			fields.ContractValue = utils.StringPtr(strings.TrimSpace(m))
		}
	}

	fields.ExtractedLinks = ExtractLinks(htmlBody)
	if len(fields.ExtractedLinks) == 0 {
		fields.ExtractedLinks = ExtractLinks(stripped)
	}

	deadline := ExtractDeadline(htmlBody)
	if deadline == "" {
		deadline = ExtractDeadline(stripped)
	}
	fields.Deadline = utils.StringPtr(deadline)

	return fields
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ":")
	s = hSpaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripMarkup renders an HTML fragment as plain text: <br> becomes a newline, all
// other tags are dropped, entities are decoded and whitespace runs collapse.
func stripMarkup(s string) string {
	s = brTagRegex.ReplaceAllString(s, "\n")
	s = anyTagRegex.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = hSpaceRegex.ReplaceAllString(s, " ")
	s = newlineRegex.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
