package exam

import (
	"strings"
	"sync"
)

// WholeValue replaces the entire stored value instead of a single blank slot.
const WholeValue = -1

// AnswerSheet holds the mutable questionID -> answer mapping of an active
// session. Single-value questions store a plain string; multi-blank questions
// store a comma-joined positional encoding; multi-select questions store a
// comma-joined letter set. Writes accept arbitrary text — validation happens
// at scoring time.
type AnswerSheet struct {
	mu     sync.Mutex
	values map[uint]string
}

func NewAnswerSheet() *AnswerSheet {
	return &AnswerSheet{values: make(map[uint]string)}
}

// Set records an answer. A negative position replaces the whole value; a
// non-negative position updates one slot of the comma-encoded value, padded
// out to the question's blank count so every slot keeps its place.
func (a *AnswerSheet) Set(questionID uint, position, blanks int, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if position < 0 {
		a.values[questionID] = value
		return
	}

	width := position + 1
	if blanks > width {
		width = blanks
	}
	parts := strings.Split(a.values[questionID], ",")
	for len(parts) < width {
		parts = append(parts, "")
	}
	parts[position] = value
	a.values[questionID] = strings.Join(parts, ",")
}

// Get returns the stored value for a question, if any.
func (a *AnswerSheet) Get(questionID uint) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.values[questionID]
	return v, ok
}

// Answered reports whether the question carries at least one non-empty slot.
// Used for the per-question completion indicator.
func (a *AnswerSheet) Answered(questionID uint) bool {
	a.mu.Lock()
	v := a.values[questionID]
	a.mu.Unlock()

	for _, p := range strings.Split(v, ",") {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// Snapshot copies the current mapping, e.g. for result persistence.
func (a *AnswerSheet) Snapshot() map[uint]string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[uint]string, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}
