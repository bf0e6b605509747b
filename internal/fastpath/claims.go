package fastpath

import (
	"regexp"
	"strings"
)

var (
	leadingLabel = regexp.MustCompile(`(?i)([A-Za-z]+\s*:\s*)$`)
	multiSpace   = regexp.MustCompile(`\s+`)
	doubleComma  = regexp.MustCompile(`,\s*,`)
	strayPunct   = regexp.MustCompile(`(^[\s,.;:-]+|[\s,.;:-]+$)`)
)

// claimSet tracks which byte ranges of the input have been attributed to
// a structured field. Whatever is left unclaimed becomes the notes.
type claimSet struct {
	text  string
	spans [][2]int
}

func newClaimSet(text string) *claimSet {
	return &claimSet{text: text}
}

// claim marks [start,end) as attributed. A field label immediately
// preceding the span ("Phone:", "Office:", ...) is absorbed into it so
// the label does not leak into notes.
func (c *claimSet) claim(start, end int) {
	if start < 0 || end > len(c.text) || start >= end {
		return
	}
	if loc := leadingLabel.FindStringIndex(c.text[:start]); loc != nil {
		start = loc[0]
	}
	c.spans = append(c.spans, [2]int{start, end})
}

// overlaps reports whether [start,end) intersects an existing claim.
func (c *claimSet) overlaps(start, end int) bool {
	for _, s := range c.spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

// residual returns the unclaimed text with whitespace and stray
// punctuation collapsed. Two characters or fewer count as nothing.
func (c *claimSet) residual() string {
	masked := []byte(c.text)
	for _, s := range c.spans {
		for i := s[0]; i < s[1]; i++ {
			masked[i] = ' '
		}
	}
	notes := multiSpace.ReplaceAllString(string(masked), " ")
	notes = doubleComma.ReplaceAllString(notes, ",")
	notes = strayPunct.ReplaceAllString(notes, "")
	notes = strings.TrimSpace(notes)
	if len(notes) <= 2 {
		return ""
	}
	return notes
}
