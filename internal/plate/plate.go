package plate

import (
	"regexp"
	"strings"
)

// pattern: exatamente 3 letras seguidas de 4 dígitos (padrão antigo de placa).
var pattern = regexp.MustCompile(`^[a-zA-Z]{3}[0-9]{4}$`)

// IsValid reports whether p is a well-formed plate (3 letters + 4 digits,
// full match, letters case-insensitive). Plates are stored and compared as
// given; validation never changes casing.
func IsValid(p string) bool {
	return pattern.MatchString(p)
}

// Normalize trims surrounding whitespace. The stored value keeps whatever
// casing the client sent.
func Normalize(p string) string {
	return strings.TrimSpace(p)
}
