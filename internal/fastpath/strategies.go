package fastpath

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agenthands/rolodex/internal/model"
	"github.com/agenthands/rolodex/internal/validate"
)

var (
	// Extension-bearing phones claim their spans before any bare-format
	// scan so their digits can never be re-tokenized as a second number.
	phoneWithExt = regexp.MustCompile(`(?i)(\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})\s*(?:ext|extension|x|#)\.?\s*(\d+)`)

	barePhonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
		regexp.MustCompile(`\b\d{10}\b`),
	}

	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	addressLabel = regexp.MustCompile(`(?i)\baddress\s*:\s*`)
	serviceLabel = regexp.MustCompile(`(?i)\bservice\s*:`)
	zipPattern   = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	cityStateZip = regexp.MustCompile(`\b([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*)\s*,\s*([A-Z]{2})\s+(\d{5})(?:-\d{4})?\b`)
	cityBefore   = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)[,\s]*$`)
	labeledStreet = regexp.MustCompile(`(\d+\s+[A-Za-z][A-Za-z0-9 .]*?)\s*,?\s*$`)
	streetPattern = regexp.MustCompile(`(?i)\b\d+\s+[A-Za-z\s]+?(?:St|Street|Ave|Avenue|Blvd|Boulevard|Rd|Road|Dr|Drive|Cir|Circle|Ln|Lane|Way|Court|Ct|Place|Pl)\b`)

	unitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:suite|ste|unit|apt|apartment)\.?\s*#?\s*[A-Za-z0-9-]+`),
		regexp.MustCompile(`#\s*[A-Za-z0-9-]+`),
	}

	customerLabel = regexp.MustCompile(`(?i)\b(?:customer|client)\s*:\s*`)
	anyLabel      = regexp.MustCompile(`(?i)\b[A-Za-z]+\s*:`)
	contactAt     = regexp.MustCompile(`\bContact\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+at\s+([A-Z][A-Za-z0-9&.]*(?:\s+[A-Z][A-Za-z0-9&.]*)*)`)

	stateNameRe   *regexp.Regexp
	stateAbbrevRe *regexp.Regexp
)

func init() {
	names := make([]string, 0, len(validate.USStates))
	abbrevs := make([]string, 0, len(validate.USStates))
	for abbr, name := range validate.USStates {
		abbrevs = append(abbrevs, abbr)
		names = append(names, name)
	}
	// Longest first so "West Virginia" beats "Virginia".
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	sort.Strings(abbrevs)
	stateNameRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join(names, "|") + `)\b`)
	// Abbreviations stay case-sensitive; (?i) would turn "in" and "or"
	// into state matches.
	stateAbbrevRe = regexp.MustCompile(`\b(?:` + strings.Join(abbrevs, "|") + `)\b`)
}

// findState locates the first full state name, falling back to the first
// two-letter abbreviation from the table. Returns the normalized value
// and the match location, or ok=false.
func findState(s string) (value string, start, end int, ok bool) {
	if loc := stateNameRe.FindStringIndex(s); loc != nil {
		return validate.NormalizeState(s[loc[0]:loc[1]]), loc[0], loc[1], true
	}
	if loc := stateAbbrevRe.FindStringIndex(s); loc != nil {
		return validate.NormalizeState(s[loc[0]:loc[1]]), loc[0], loc[1], true
	}
	return "", 0, 0, false
}

type phoneMatch struct {
	start     int
	number    string
	extension string
}

// collectPhones runs the phone strategies in priority order and returns
// numbers in order of appearance.
func collectPhones(c *claimSet) []model.PhoneNumber {
	var matches []phoneMatch

	for _, m := range phoneWithExt.FindAllStringSubmatchIndex(c.text, -1) {
		matches = append(matches, phoneMatch{
			start:     m[0],
			number:    c.text[m[2]:m[3]],
			extension: c.text[m[4]:m[5]],
		})
		c.claim(m[0], m[1])
	}

	for _, pattern := range barePhonePatterns {
		for _, loc := range pattern.FindAllStringIndex(c.text, -1) {
			if c.overlaps(loc[0], loc[1]) {
				continue
			}
			matches = append(matches, phoneMatch{start: loc[0], number: c.text[loc[0]:loc[1]]})
			c.claim(loc[0], loc[1])
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	phones := make([]model.PhoneNumber, 0, len(matches))
	for _, m := range matches {
		phone, err := model.NewPhoneNumber(m.number, m.extension, "primary")
		if err != nil {
			continue
		}
		phones = append(phones, phone)
	}
	return phones
}

func collectEmail(c *claimSet) string {
	loc := emailPattern.FindStringIndex(c.text)
	if loc == nil {
		return ""
	}
	c.claim(loc[0], loc[1])
	return c.text[loc[0]:loc[1]]
}

type addressStrategy struct {
	name string
	fn   func(c *claimSet) (model.Address, bool)
}

// Address strategies in priority order; the first one that yields any
// component wins.
var addressStrategies = []addressStrategy{
	{name: "labeled", fn: labeledAddress},
	{name: "inline", fn: inlineAddress},
	{name: "scatter", fn: scatteredAddress},
}

// labeledAddress parses the section after an "Address:" label, stopping
// at a following "Service:" label if present.
func labeledAddress(c *claimSet) (model.Address, bool) {
	label := addressLabel.FindStringIndex(c.text)
	if label == nil {
		return model.Address{}, false
	}
	base := label[1]
	scope := c.text[base:]
	if stop := serviceLabel.FindStringIndex(scope); stop != nil {
		scope = scope[:stop[0]]
	}

	var addr model.Address
	// Last 5-digit run in the section; the first one is often the house
	// number ("13567 Little Gem Cir, ... 33913").
	if locs := zipPattern.FindAllStringIndex(scope, -1); len(locs) > 0 {
		loc := locs[len(locs)-1]
		addr.PostalCode = scope[loc[0]:loc[1]]
		c.claim(base+loc[0], base+loc[1])
	}
	cityLimit := len(scope)
	if state, start, end, ok := findState(scope); ok {
		addr.State = state
		c.claim(base+start, base+end)
		cityLimit = start
		if loc := cityBefore.FindStringSubmatchIndex(scope[:cityLimit]); loc != nil {
			addr.City = scope[loc[2]:loc[3]]
			c.claim(base+loc[2], base+loc[3])
			cityLimit = loc[2]
		}
	}
	if addr.City != "" {
		prefix := strings.TrimRight(scope[:cityLimit], ", \t\n")
		if loc := labeledStreet.FindStringSubmatchIndex(prefix); loc != nil {
			addr.Street = strings.TrimSpace(prefix[loc[2]:loc[3]])
			c.claim(base+loc[2], base+loc[3])
		}
	}
	if addr.Street == "" {
		addr.Street = claimedStreet(c)
	}
	if addr.Street == "" && addr.City == "" && addr.State == "" && addr.PostalCode == "" {
		return model.Address{}, false
	}
	c.claim(label[0], label[1])
	return addr, true
}

// inlineAddress matches the common "City, ST 12345" form.
func inlineAddress(c *claimSet) (model.Address, bool) {
	m := cityStateZip.FindStringSubmatchIndex(c.text)
	if m == nil {
		return model.Address{}, false
	}
	addr := model.Address{
		City:       c.text[m[2]:m[3]],
		State:      validate.NormalizeState(c.text[m[4]:m[5]]),
		PostalCode: c.text[m[6]:m[7]],
	}
	c.claim(m[0], m[1])
	addr.Street = claimedStreet(c)
	return addr, true
}

// scatteredAddress pieces an address together from isolated signals: the
// last standalone ZIP, the first state mention, and the capitalized
// phrase right before it.
func scatteredAddress(c *claimSet) (model.Address, bool) {
	var addr model.Address
	zips := zipPattern.FindAllStringIndex(c.text, -1)
	for i := len(zips) - 1; i >= 0; i-- {
		if c.overlaps(zips[i][0], zips[i][1]) {
			continue
		}
		addr.PostalCode = c.text[zips[i][0]:zips[i][1]]
		c.claim(zips[i][0], zips[i][1])
		break
	}
	if state, start, end, ok := findState(c.text); ok && !c.overlaps(start, end) {
		addr.State = state
		c.claim(start, end)
		if loc := cityBefore.FindStringSubmatchIndex(c.text[:start]); loc != nil && !c.overlaps(loc[2], loc[3]) {
			addr.City = c.text[loc[2]:loc[3]]
			c.claim(loc[2], loc[3])
		}
	}
	addr.Street = claimedStreet(c)
	if addr.Street == "" && addr.City == "" && addr.State == "" && addr.PostalCode == "" {
		return model.Address{}, false
	}
	return addr, true
}

// claimedStreet applies the number-plus-suffix street pattern, skipping
// spans already attributed elsewhere.
func claimedStreet(c *claimSet) string {
	for _, loc := range streetPattern.FindAllStringIndex(c.text, -1) {
		if c.overlaps(loc[0], loc[1]) {
			continue
		}
		c.claim(loc[0], loc[1])
		return c.text[loc[0]:loc[1]]
	}
	return ""
}

// collectUnit detects suite/unit/apartment markers independently of the
// address branch taken.
func collectUnit(c *claimSet) string {
	for _, pattern := range unitPatterns {
		for _, loc := range pattern.FindAllStringIndex(c.text, -1) {
			if c.overlaps(loc[0], loc[1]) {
				continue
			}
			c.claim(loc[0], loc[1])
			return strings.TrimSpace(c.text[loc[0]:loc[1]])
		}
	}
	return ""
}

// collectName extracts client and company. A Customer:/Client: label has
// priority over the "Contact <Name> at <Company>" pattern.
func collectName(c *claimSet) (clientName, companyName string) {
	if label := customerLabel.FindStringIndex(c.text); label != nil {
		rest := c.text[label[1]:]
		end := len(rest)
		// The name runs until the next labeled field.
		if stop := anyLabel.FindStringIndex(rest); stop != nil {
			end = stop[0]
		}
		name := strings.Trim(strings.TrimSpace(rest[:end]), ",.;")
		if name != "" {
			c.claim(label[0], label[1]+end)
			return name, ""
		}
	}
	if m := contactAt.FindStringSubmatchIndex(c.text); m != nil {
		clientName = c.text[m[2]:m[3]]
		companyName = c.text[m[4]:m[5]]
		c.claim(m[0], m[1])
		return clientName, companyName
	}
	return "", ""
}
