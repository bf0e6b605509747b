package extraction

import (
	"context"
	"errors"
	"sync"

	"github.com/agenthands/rolodex/internal/cache"
	"github.com/agenthands/rolodex/internal/model"
)

// mockLLM scripts Generate responses in order and counts calls.
type mockLLM struct {
	mu             sync.Mutex
	responses      []string
	genErr         error
	availErr       error
	generateCalls  int
	availableCalls int
}

func (m *mockLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalls++
	if m.genErr != nil {
		return "", m.genErr
	}
	if len(m.responses) == 0 {
		return "", errors.New("mock: no scripted response")
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func (m *mockLLM) Available(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availableCalls++
	return m.availErr
}

type addedRecord struct {
	text    string
	contact *model.ExtractedContact
}

// mockSimCache records Add calls and serves a canned nearest match.
type mockSimCache struct {
	mu      sync.Mutex
	added   []addedRecord
	match   *cache.Match
	findErr error
	addErr  error
}

func (m *mockSimCache) Add(ctx context.Context, text string, contact *model.ExtractedContact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, addedRecord{text: text, contact: contact})
	return nil
}

func (m *mockSimCache) FindNearest(ctx context.Context, text string) (*cache.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.match, nil
}
