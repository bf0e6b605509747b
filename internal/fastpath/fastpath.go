// Package fastpath is the deterministic regex-based extractor used for
// latency-sensitive or simple inputs. Every heuristic is an ordered list
// of matcher strategies with first-match-wins tie-breaking.
package fastpath

import (
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/rolodex/internal/model"
)

// DefaultMaxLen is the eligibility length gate. Longer texts go straight
// to the generative path.
const DefaultMaxLen = 1200

var (
	digitRun    = regexp.MustCompile(`\d{3,}`)
	fieldMarker = regexp.MustCompile(`(?i)\b(?:phone|address|customer|client|contact|email)\s*:`)
)

// confidencePriors is a static prior per field, not a computed
// probability. Only the fast path attaches it.
var confidencePriors = map[string]float64{
	"client_name":   0.7,
	"company_name":  0.5,
	"phone_numbers": 0.9,
	"email":         0.9,
	"address":       0.8,
}

type Extractor struct {
	maxLen int
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{maxLen: DefaultMaxLen, logger: logger}
}

// CanExtract gates the fast path: the text must be short and contain
// either a phone-like digit run or a labeled field marker.
func (e *Extractor) CanExtract(text string) bool {
	if len(text) >= e.maxLen {
		return false
	}
	return digitRun.MatchString(text) || fieldMarker.MatchString(text)
}

// Extract runs the matcher strategies over the text and assembles a
// contact. It returns nil when nothing at all could be attributed, which
// callers must treat as "fast path inapplicable", not "no contact found".
// The extractor holds no state between calls; identical input yields
// identical output.
func (e *Extractor) Extract(text string) *model.ExtractedContact {
	if text == "" {
		return nil
	}
	c := newClaimSet(text)

	phones := collectPhones(c)
	email := collectEmail(c)

	var address *model.Address
	for _, strategy := range addressStrategies {
		if addr, ok := strategy.fn(c); ok {
			if addr.State != "" && addr.Country == "" {
				addr.Country = "USA"
			}
			address = &addr
			e.logger.Debug("fastpath address strategy matched", zap.String("strategy", strategy.name))
			break
		}
	}
	if unit := collectUnit(c); unit != "" {
		if address == nil {
			address = &model.Address{}
		}
		address.Unit = unit
	}
	// Only a located address is worth attaching.
	if address != nil && !address.AnyLocation() {
		address = nil
	}

	clientName, companyName := collectName(c)

	// Each record owns its score map; handing out the shared priors would
	// let one caller's mutation bleed into every other record.
	scores := make(map[string]float64, len(confidencePriors))
	for field, prior := range confidencePriors {
		scores[field] = prior
	}

	contact := &model.ExtractedContact{
		ClientName:       clientName,
		CompanyName:      companyName,
		PhoneNumbers:     phones,
		Email:            email,
		Address:          address,
		Notes:            c.residual(),
		RawText:          text,
		ExtractedAt:      time.Now(),
		ConfidenceScores: scores,
	}
	if !contact.HasData() {
		return nil
	}
	return contact
}
