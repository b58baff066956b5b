package codeset

import (
	"strings"

	"github.com/mlavigne/client-management/internal"
)

// Culture selects which description a lookup returns. French is the primary
// language; English labels fall back to French when absent.
type Culture string

const (
	CultureFr Culture = "fr"
	CultureEn Culture = "en"
)

// ParseCulture accepts "fr"/"en" and regional variants ("fr-CA", "en_US").
// Empty input means French.
func ParseCulture(s string) (Culture, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	switch s {
	case "", "fr":
		return CultureFr, nil
	case "en":
		return CultureEn, nil
	}
	return "", internal.NewValidationError("unsupported culture: "+s, internal.ErrCodeInvalidCulture)
}

// Groups referenced by client records.
const (
	GroupProvince = "PROVINCE"
	GroupLanguage = "LANGUE"
)

// Option is one selectable entry of a code-set group, already localized.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}
