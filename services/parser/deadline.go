package parser

import "regexp"

const monthNames = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

// A date is only treated as a deadline when it directly follows a signal phrase;
// bare dates elsewhere in the body (publication dates, award dates) never match.
var deadlineRegex = regexp.MustCompile(
	`(?i)\b(?:deadline|due date|closing date|submission deadline|submit by|closing on|last date(?: for submission)?)` +
		`[\s:–—-]*` +
		`(` +
		// ISO, with optional time and zone
		`[0-9]{4}-[0-9]{2}-[0-9]{2}(?:[T\s][0-9]{2}:[0-9]{2}(?::[0-9]{2})?(?:Z|[+\-][0-9]{2}:?[0-9]{2})?)?` +
		`|` +
		// 15 January 2026 / 15th January, 2026
		`\d{1,2}(?:st|nd|rd|th)?\s+` + monthNames + `\s*,?\s*\d{4}` +
		`|` +
		// January 15, 2026
		monthNames + `\s+\d{1,2}(?:st|nd|rd|th)?\s*,?\s*\d{4}` +
		`|` +
		// 15/01/2026, 15-01-26, 15.1.2026
		`\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}` +
		`)`,
)

// ExtractDeadline returns the first deadline-like date found in body, verbatim as it
// appeared. The empty string means no deadline was found.
func ExtractDeadline(body string) string {
	if body == "" {
		return ""
	}
	match := deadlineRegex.FindStringSubmatch(body)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}
