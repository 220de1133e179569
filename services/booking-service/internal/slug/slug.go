package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaces     = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
	valid      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	pathSlug   = regexp.MustCompile(`^/([a-z0-9-]+)$`)
	leading    = regexp.MustCompile(`^/+`)
)

// Generate derives a link slug from a designer name: "Klívia Azevedo" -> "klivia-azevedo".
func Generate(name string) string {
	s := stripMarks(strings.ToLower(name))
	s = disallowed.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = spaces.ReplaceAllString(s, "-")
	return hyphens.ReplaceAllString(s, "-")
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func Valid(s string) bool {
	return valid.MatchString(s)
}

// FromPath extracts the slug from a personal link path such as "/ana", "/ana/" or "//ana".
func FromPath(path string) (string, bool) {
	clean := leading.ReplaceAllString(path, "/")
	clean = strings.TrimSuffix(clean, "/")
	m := pathSlug.FindStringSubmatch(clean)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func PersonalLink(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/" + slug
}
