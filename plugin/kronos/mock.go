package kronos

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hrygo/kronos/plugin/kronos/finalize"
)

// MockDateService is a mock implementation of DateService for testing.
// It recognizes only the literal words "today" and "tomorrow".
type MockDateService struct {
	// FixedNow can be set to use a fixed "now" for testing.
	FixedNow *time.Time
	// Err, when set, is returned by every call.
	Err error

	mu    sync.Mutex
	calls []string
}

// NewMockDateService creates a new MockDateService.
func NewMockDateService() *MockDateService {
	return &MockDateService{}
}

// Parse implements DateService.
func (m *MockDateService) Parse(ctx context.Context, text string, opts Options) ([]Match, error) {
	m.record("Parse")
	pending, err := m.resolve(text)
	if err != nil {
		return nil, err
	}
	return m.render(pending, opts), nil
}

// Resolve implements DateService.
func (m *MockDateService) Resolve(ctx context.Context, text string) (*Pending, error) {
	m.record("Resolve")
	return m.resolve(text)
}

// Finalize implements DateService.
func (m *MockDateService) Finalize(pending *Pending, opts Options) ([]Match, error) {
	m.record("Finalize")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.render(pending, opts), nil
}

// Calls returns the names of the methods called so far.
func (m *MockDateService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockDateService) resolve(text string) (*Pending, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p := &Pending{Text: text, Reference: m.now()}
	runes := []rune(strings.ToLower(text))
	for _, word := range []string{"today", "tomorrow"} {
		w := []rune(word)
		for i := 0; i+len(w) <= len(runes); i++ {
			if string(runes[i:i+len(w)]) == word {
				p.Spans = append(p.Spans, Span{Text: string([]rune(text)[i : i+len(w)]), Start: i, End: i + len(w)})
			}
		}
	}
	return p, nil
}

func (m *MockDateService) render(p *Pending, _ Options) []Match {
	out := make([]Match, len(p.Spans))
	for i, span := range p.Spans {
		day := p.Reference
		if strings.EqualFold(span.Text, "tomorrow") {
			day = day.AddDate(0, 0, 1)
		}
		out[i] = Match{
			Text:   span.Text,
			Start:  span.Start,
			End:    span.End,
			Parsed: finalize.Output{Date: day.Format("2006-01-02")},
		}
	}
	return out
}

func (m *MockDateService) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *MockDateService) now() time.Time {
	if m.FixedNow != nil {
		return *m.FixedNow
	}
	return time.Now()
}

var _ DateService = (*MockDateService)(nil)
