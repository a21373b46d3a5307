package quiz

import (
	"math"
	"strings"
)

// Kind is the canonical question type.
type Kind string

const (
	KindSingle   Kind = "single"
	KindMultiple Kind = "multiple"
	KindOpen     Kind = "open"
)

// DefaultPrompt replaces a missing or blank prompt in stored data.
const DefaultPrompt = "Question"

// Option is a choice of a single/multiple question.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is the canonical form of an authored question.
// Options is set for choice kinds, ExpectedAnswer only for open questions.
type Question struct {
	Kind           Kind     `json:"kind"`
	Prompt         string   `json:"prompt"`
	Explanation    string   `json:"explanation,omitempty"`
	Options        []Option `json:"options,omitempty"`
	ExpectedAnswer string   `json:"expectedAnswer,omitempty"`
}

// HasExpectedAnswer reports whether an open question carries an answer key.
func (q Question) HasExpectedAnswer() bool {
	return strings.TrimSpace(q.ExpectedAnswer) != ""
}

// CorrectIndexes returns the ascending positions of correct options.
func (q Question) CorrectIndexes() []int {
	out := make([]int, 0, len(q.Options))
	for i, opt := range q.Options {
		if opt.IsCorrect {
			out = append(out, i)
		}
	}
	return out
}

// Scorable reports whether the question contributes to the score denominator.
func (q Question) Scorable() bool {
	if q.Kind == KindOpen {
		return q.HasExpectedAnswer()
	}
	return len(q.CorrectIndexes()) > 0
}

// MaxScore counts scorable questions. A test with nothing scorable falls back
// to its question count so the denominator stays meaningful.
func MaxScore(questions []Question) int {
	n := 0
	for _, q := range questions {
		if q.Scorable() {
			n++
		}
	}
	if n == 0 {
		return len(questions)
	}
	return n
}

// Percent is round(score/maxScore*100), zero when maxScore is zero.
func Percent(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}
