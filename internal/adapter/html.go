package adapter

import (
	"html"
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// stripTags removes markup from a scraped fragment and trims it.
func stripTags(fragment string) string {
	return strings.TrimSpace(htmlTagRegex.ReplaceAllString(fragment, ""))
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

// decodeEntities decodes the handful of entities career sites emit in
// listing markup. Other entities are left as-is.
func decodeEntities(text string) string {
	return entityReplacer.Replace(text)
}

// scrapedText strips tags then decodes entities.
func scrapedText(fragment string) string {
	return decodeEntities(stripTags(fragment))
}

// defaultLocale replaces locale placeholders in vendor URL templates.
const defaultLocale = "en-us"

var localeReplacer = strings.NewReplacer("{locale}", defaultLocale, "{lang}", defaultLocale)

// fillLocale substitutes the default locale for placeholder tokens.
func fillLocale(rawURL string) string {
	return localeReplacer.Replace(rawURL)
}

// absoluteURL joins href onto base unless href is already absolute.
func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimRight(base, "/") + href
}
