package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/budgetsage/budgetsage/internal/model"
)

// DefaultHistoryLimit bounds the in-memory conversation window.
const DefaultHistoryLimit = 10

// Interaction is one answered question retained in the conversation window.
type Interaction struct {
	ID         string
	Question   model.Question
	AnswerText string
	Type       model.QuestionType
	TierUsed   model.Tier
	Confidence float64
}

// History is the bounded per-conversation window. It tracks the current
// focus (the period and category most recently mentioned explicitly) for
// pronoun resolution. Safe for concurrent use.
type History struct {
	entries []Interaction
	focus   model.Focus
	limit   int
	mu      sync.Mutex
}

// NewHistory creates a window holding at most limit interactions.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Record appends an answered interaction and advances the focus from any
// explicit entities. Pronoun-resolved entities do not advance focus, so a
// chain of "what about that?" questions keeps pointing at the original
// subject.
func (h *History) Record(in Interaction, entities model.Entities, explicit bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	h.entries = append(h.entries, in)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}

	if !explicit {
		return
	}
	if p, ok := entities.Primary(); ok {
		h.focus.Period = p
	}
	if len(entities.Categories) == 1 {
		h.focus.Category = entities.Categories[0]
	}
}

// Focus returns the conversation's current subject.
func (h *History) Focus() model.Focus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focus
}

// Recent returns up to n most recent interactions, newest last.
func (h *History) Recent(n int) []Interaction {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Interaction, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}

// Len returns the number of retained interactions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
