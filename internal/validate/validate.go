// Package validate holds the stateless field normalizers shared by the
// fast and generative extraction paths.
package validate

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	phoneCleanup = regexp.MustCompile(`[^\d+\-()\s]`)

	// Extension patterns in priority order: keyword markers first, then a
	// trailing comma-separated digit group, then a bare trailing short number.
	extensionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:ext|extension|x|#)\.?\s*(\d+)`),
		regexp.MustCompile(`,\s*(\d+)$`),
		regexp.MustCompile(`\s+(\d{1,6})$`),
	}

	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	usZipPattern    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	caPostalPattern = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z]\s?\d[A-Za-z]\d$`)
	genericPostal   = regexp.MustCompile(`^[A-Za-z0-9\s-]{3,10}$`)
)

// NormalizePhone formats a phone number in international form, assuming
// the US when no country code is present. On parse failure it falls back
// to stripping everything except digits, "+", "-", parentheses and
// whitespace. It never fails; garbage in yields cleaned garbage out.
func NormalizePhone(raw string) string {
	parsed, err := phonenumbers.Parse(raw, "US")
	if err == nil && phonenumbers.IsValidNumber(parsed) {
		return phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
	}
	return strings.TrimSpace(phoneCleanup.ReplaceAllString(raw, ""))
}

// ExtractExtension splits a trailing extension from a phone string.
// The first pattern in priority order that matches wins. When nothing
// matches, the input is returned unchanged with an empty extension.
func ExtractExtension(phoneStr string) (string, string) {
	for _, pattern := range extensionPatterns {
		loc := pattern.FindStringSubmatchIndex(phoneStr)
		if loc == nil {
			continue
		}
		extension := phoneStr[loc[2]:loc[3]]
		phone := strings.TrimSpace(phoneStr[:loc[0]])
		return phone, extension
	}
	return phoneStr, ""
}

// ValidateEmail returns the normalized email (trimmed, domain lowercased)
// or an empty string when the input does not look like an address.
func ValidateEmail(raw string) string {
	email := strings.TrimSpace(raw)
	if !emailPattern.MatchString(email) {
		return ""
	}
	at := strings.LastIndex(email, "@")
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// ValidatePostalCode checks a postal code against the format of the given
// country: US ZIP (5 or 5+4), Canadian A#A #A# (uppercased), otherwise a
// generic alphanumeric check. Returns empty when no pattern matches.
func ValidatePostalCode(raw, country string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return ""
	}
	switch country {
	case "US":
		if usZipPattern.MatchString(code) {
			return code
		}
	case "CA":
		if caPostalPattern.MatchString(code) {
			return strings.ToUpper(code)
		}
	default:
		if genericPostal.MatchString(code) {
			return code
		}
	}
	return ""
}

// NormalizeState maps a full US state name to its two-letter abbreviation.
// Valid abbreviations pass through uppercased. Anything else is returned
// uppercased unchanged and treated as an opaque, possibly international,
// value.
func NormalizeState(raw string) string {
	state := strings.ToUpper(strings.TrimSpace(raw))
	if state == "" {
		return ""
	}
	if _, ok := USStates[state]; ok {
		return state
	}
	for abbr, name := range USStates {
		if strings.ToUpper(name) == state {
			return abbr
		}
	}
	return state
}
