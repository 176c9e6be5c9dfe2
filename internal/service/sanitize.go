package service

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	htmlTagPattern     = regexp.MustCompile(`<[^>]*>`)
	directImagePattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp|gif|bmp|svg)(\?.*)?$`)
	slugInvalidPattern = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// SanitizeURL returns the normalized URL, or "" when it is not an absolute http(s) URL.
func SanitizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// SanitizeString trims and strips HTML tags and stray angle brackets.
func SanitizeString(s string) string {
	s = htmlTagPattern.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// FormatTags lowercases and trims each comma separated tag, dropping empties.
func FormatTags(raw string) string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}
	return strings.Join(tags, ",")
}

// Slugify derives a URL slug from a category name.
func Slugify(name string) string {
	s := slugInvalidPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
	s = whitespacePattern.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(s, "-")
}

// IsDirectImageURL reports whether the URL is an absolute http(s) link straight to an image file.
func IsDirectImageURL(raw string) bool {
	return SanitizeURL(raw) != "" && directImagePattern.MatchString(raw)
}
