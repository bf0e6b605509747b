// Package extraction is the decision engine: it chooses between the
// cheap deterministic fast path and the generative path, consults the
// similarity cache, repairs model output, and normalizes the result.
package extraction

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/rolodex/internal/cache"
	"github.com/agenthands/rolodex/internal/fastpath"
	"github.com/agenthands/rolodex/internal/llm"
	"github.com/agenthands/rolodex/internal/model"
)

var (
	// ErrModelUnavailable means the generative service could not be
	// reached and no fallback data existed.
	ErrModelUnavailable = errors.New("generative model service unavailable")

	// ErrNoExtraction means the mechanism ran but produced nothing
	// parseable, as opposed to a legitimate "no contact in this text".
	ErrNoExtraction = errors.New("no contact could be extracted")
)

// SimilarityCache is the slice of the cache store the orchestrator
// needs; substitutable in tests.
type SimilarityCache interface {
	Add(ctx context.Context, text string, contact *model.ExtractedContact) error
	FindNearest(ctx context.Context, text string) (*cache.Match, error)
}

// Result is the outcome of one extraction call.
type Result struct {
	Contact  *model.ExtractedContact
	CacheHit bool
}

// Params tune the orchestrator.
type Params struct {
	// FastMode enables the regex fast path for eligible texts.
	FastMode bool
	// MaxAttempts is the generative retry budget (default 3).
	MaxAttempts int
	// CacheThreshold is the nearest-neighbor distance below which a
	// cached record is returned as-is (default 0.1).
	CacheThreshold float64
}

// Extractor orchestrates one extraction call. All collaborators are
// injected at construction; there is no package-level state.
type Extractor struct {
	llm       llm.LLMClient
	generator *generativeClient
	fast      *fastpath.Extractor
	cache     SimilarityCache // nil disables caching entirely
	params    Params
	logger    *zap.Logger
}

func New(llmClient llm.LLMClient, fast *fastpath.Extractor, store SimilarityCache, params Params, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if params.CacheThreshold <= 0 {
		params.CacheThreshold = 0.1
	}
	return &Extractor{
		llm:       llmClient,
		generator: newGenerativeClient(llmClient, params.MaxAttempts, logger),
		fast:      fast,
		cache:     store,
		params:    params,
		logger:    logger,
	}
}

// ModelAvailable probes the generative service.
func (e *Extractor) ModelAvailable(ctx context.Context) bool {
	return e.llm.Available(ctx) == nil
}

// Extract runs the full decision sequence over one text. Calls are
// independent and safe to run concurrently; the only shared state is
// the add-only cache.
func (e *Extractor) Extract(ctx context.Context, text string, useCache bool) (Result, error) {
	// A fast-path record missing city or state is held for enhancement
	// rather than returned: the generative result is merged over it.
	var pending *model.ExtractedContact

	if e.params.FastMode && e.fast.CanExtract(text) {
		if fast := e.fast.Extract(text); fast != nil {
			if addressComplete(fast) {
				e.logger.Info("fast path extraction complete")
				e.persist(ctx, text, fast, useCache)
				return Result{Contact: fast}, nil
			}
			e.logger.Info("fast path result incomplete, pending enhancement")
			pending = fast
		}
	}

	if err := e.llm.Available(ctx); err != nil {
		e.logger.Error("generative model unreachable", zap.Error(err))
		// Fall back to the fast extractor even for texts the gate would
		// have rejected, but a notes-only residue is not worth returning.
		if pending == nil {
			if fast := e.fast.Extract(text); structuredData(fast) {
				pending = fast
			}
		}
		if pending != nil {
			return Result{Contact: pending}, nil
		}
		return Result{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	if useCache && e.cache != nil {
		match, err := e.cache.FindNearest(ctx, text)
		if err != nil {
			e.logger.Warn("cache lookup failed", zap.Error(err))
		} else if match != nil && match.Distance < e.params.CacheThreshold {
			e.logger.Info("cache hit", zap.Float64("distance", match.Distance))
			return Result{Contact: match.Contact, CacheHit: true}, nil
		}
	}

	raw, err := e.generator.extract(ctx, text)
	if err != nil {
		if pending != nil {
			e.logger.Warn("generative path failed, returning pending fast result", zap.Error(err))
			return Result{Contact: pending}, nil
		}
		return Result{}, fmt.Errorf("%w: %v", ErrNoExtraction, err)
	}

	contact := salvagePhones(parseContact(raw, text))
	if pending != nil {
		contact = mergeEnhanced(contact, pending)
	}

	e.persist(ctx, text, contact, useCache)
	return Result{Contact: contact}, nil
}

// persist stores the record best-effort; a failing cache write never
// fails the call.
func (e *Extractor) persist(ctx context.Context, text string, contact *model.ExtractedContact, useCache bool) {
	if !useCache || e.cache == nil {
		return
	}
	if err := e.cache.Add(ctx, text, contact); err != nil {
		e.logger.Warn("failed to store extraction", zap.Error(err))
	}
}

// addressComplete reports whether a fast-path record is good enough to
// return without enhancement: it must carry both city and state.
func addressComplete(contact *model.ExtractedContact) bool {
	return contact.Address != nil && contact.Address.City != "" && contact.Address.State != ""
}

// structuredData reports whether a record carries anything beyond
// leftover notes.
func structuredData(c *model.ExtractedContact) bool {
	if c == nil {
		return false
	}
	return c.ClientName != "" || c.CompanyName != "" || c.Email != "" ||
		len(c.PhoneNumbers) > 0 || c.Address.AnyLocation()
}

// mergeEnhanced lays the generative record over the pending fast-path
// one: the generative value wins per field, the fast record fills gaps,
// and phone lists are united by digit string.
func mergeEnhanced(gen, pending *model.ExtractedContact) *model.ExtractedContact {
	out := gen.Clone()
	if out.ClientName == "" {
		out.ClientName = pending.ClientName
	}
	if out.CompanyName == "" {
		out.CompanyName = pending.CompanyName
	}
	if out.Email == "" {
		out.Email = pending.Email
	}
	if out.Notes == "" {
		out.Notes = pending.Notes
	}
	if out.Address == nil {
		if pending.Address != nil {
			addr := *pending.Address
			out.Address = &addr
		}
	} else if pending.Address != nil {
		if out.Address.Unit == "" {
			out.Address.Unit = pending.Address.Unit
		}
		if out.Address.Street == "" {
			out.Address.Street = pending.Address.Street
		}
		if out.Address.City == "" {
			out.Address.City = pending.Address.City
		}
		if out.Address.State == "" {
			out.Address.State = pending.Address.State
		}
		if out.Address.PostalCode == "" {
			out.Address.PostalCode = pending.Address.PostalCode
		}
		if out.Address.Country == "" {
			out.Address.Country = pending.Address.Country
		}
	}
	seen := map[string]bool{}
	for _, phone := range out.PhoneNumbers {
		seen[phoneKey(phone.Number)] = true
	}
	for _, phone := range pending.PhoneNumbers {
		key := phoneKey(phone.Number)
		if !seen[key] {
			seen[key] = true
			out.PhoneNumbers = append(out.PhoneNumbers, phone)
		}
	}
	return out
}

// phoneKey canonicalizes a number to its trailing 10 digits so "+1"
// formatted and bare variants compare equal.
func phoneKey(number string) string {
	digits := nonDigit.ReplaceAllString(number, "")
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}
