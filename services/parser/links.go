package parser

import (
	"regexp"
	"strings"
)

// Tokens identifying asset and tracking URLs that carry no tender content
// (images, pixels, CDN assets, campaign links).
var noiseTokens = []string{
	"image",
	"img",
	"logo",
	"banner",
	"pixel",
	".png",
	".jpg",
	".jpeg",
	".gif",
	".svg",
	"cdn.",
	"/wf/open",
	"/wf/clk",
	"tracking",
	"utm_",
}

var (
	attrLinkRegex = regexp.MustCompile(`(?i)(?:href|src)\s*=\s*["'](https?://[^"'\s>]+)["']`)
	bareLinkRegex = regexp.MustCompile(`(?i)https?://[^\s"'<>()]+`)
)

// ExtractLinks collects absolute URLs from an HTML or plain-text body. href/src
// attribute values are scanned first, then bare https?:// tokens; duplicates are
// dropped while preserving first-seen order.
func ExtractLinks(body string) []string {
	if body == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var urls []string

	add := func(url string) {
		if url == "" {
			return
		}
		lower := strings.ToLower(url)
		for _, token := range noiseTokens {
			if strings.Contains(lower, token) {
				return
			}
		}
		if _, ok := seen[url]; ok {
			return
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}

	for _, m := range attrLinkRegex.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	for _, m := range bareLinkRegex.FindAllString(body, -1) {
		add(m)
	}

	return urls
}
