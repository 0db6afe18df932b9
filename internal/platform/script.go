package platform

import (
	"strings"

	"golang.org/x/text/language"
)

// IsLatinLanguage reports whether the languages advertised by a keyboard
// input source are written in Latin script. A list with no parseable tag
// counts as Latin: plain layouts such as "ABC" advertise nothing useful.
func IsLatinLanguage(tags []string) bool {
	parsed := 0
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		tag, err := language.Parse(t)
		if err != nil {
			continue
		}
		parsed++
		script, _ := tag.Script()
		if script.String() == "Latn" {
			return true
		}
	}
	return parsed == 0
}
