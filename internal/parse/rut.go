package parse

import "strings"

var rutNoise = strings.NewReplacer(".", "", " ", "", "-", "", "\u00a0", "")

// RUT returns the canonical spelling of a Chilean national identifier:
// no thousands dots or spaces, upper-case check digit, one hyphen before it.
// "12.345.678-k" and "12345678K" both become "12345678-K". No check-digit
// validation is done; anything shorter than two characters is returned
// stripped but otherwise unchanged.
func RUT(raw string) string {
	s := strings.ToUpper(rutNoise.Replace(strings.TrimSpace(raw)))
	if len(s) < 2 {
		return s
	}
	return s[:len(s)-1] + "-" + s[len(s)-1:]
}
