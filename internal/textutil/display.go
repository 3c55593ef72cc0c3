package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameSeparators = strings.NewReplacer("-", " ", "_", " ")

// DisplayName title-cases a domain, split or class identifier for tables.
// Hyphens and underscores become spaces: "vegfru-test" -> "Vegfru Test".
func DisplayName(name string) string {
	name = strings.TrimSpace(nameSeparators.Replace(name))
	if name == "" {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(strings.Fields(name), " "))
}

// JoinNonEmpty joins the non-blank parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
