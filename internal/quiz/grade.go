package quiz

import (
	"sort"
	"strings"
)

// Answer is a learner's submission for one question, keyed by public id.
type Answer struct {
	QuestionID        string   `json:"questionId"`
	SelectedOptionIDs []string `json:"selectedOptionIds,omitempty"`
	TextAnswer        *string  `json:"textAnswer,omitempty"`
}

// Evaluation is the graded outcome for one question. Correct is nil when the
// question is ungraded (open question without an expected answer).
type Evaluation struct {
	QuestionID        string   `json:"questionId"`
	Correct           *bool    `json:"correct"`
	SelectedOptionIDs []string `json:"selectedOptionIds,omitempty"`
	CorrectOptionIDs  []string `json:"correctOptionIds,omitempty"`
	TextAnswer        *string  `json:"textAnswer,omitempty"`
	ExpectedAnswer    *string  `json:"expectedAnswer"`
	Explanation       *string  `json:"explanation,omitempty"`
}

// Result aggregates per-question evaluations.
type Result struct {
	Evaluations []Evaluation
	Score       int
}

// Grade evaluates answers against questions positionally. It never fails:
// answers for unknown questions are ignored and unparseable option ids are
// treated as noise. When a question is answered more than once the first
// answer wins.
func Grade(questions []Question, answers []Answer) Result {
	byIndex := make(map[int]Answer, len(answers))
	for _, a := range answers {
		i, ok := ParseQuestionID(a.QuestionID)
		if !ok || i >= len(questions) {
			continue
		}
		if _, dup := byIndex[i]; dup {
			continue
		}
		byIndex[i] = a
	}

	res := Result{Evaluations: make([]Evaluation, 0, len(questions))}
	for i, q := range questions {
		a, answered := byIndex[i]
		var ev Evaluation
		if q.Kind == KindOpen {
			ev = gradeOpen(i, q, a, answered)
		} else {
			ev = gradeChoice(i, q, a, answered)
		}
		if ev.Correct != nil && *ev.Correct {
			res.Score++
		}
		res.Evaluations = append(res.Evaluations, ev)
	}
	return res
}

func gradeOpen(i int, q Question, a Answer, answered bool) Evaluation {
	ev := Evaluation{QuestionID: QuestionID(i), Explanation: optional(q.Explanation)}
	var text string
	if answered && a.TextAnswer != nil {
		text = *a.TextAnswer
		ev.TextAnswer = &text
	}
	if !q.HasExpectedAnswer() {
		return ev
	}
	expected := q.ExpectedAnswer
	ev.ExpectedAnswer = &expected
	ok := strings.TrimSpace(text) != "" && foldAnswer(text) == foldAnswer(expected)
	ev.Correct = &ok
	return ev
}

func gradeChoice(i int, q Question, a Answer, answered bool) Evaluation {
	correct := q.CorrectIndexes()
	ev := Evaluation{
		QuestionID:       QuestionID(i),
		CorrectOptionIDs: optionIDs(i, correct),
		Explanation:      optional(q.Explanation),
	}

	var selected []int
	if answered {
		selected = selectedIndexes(i, len(q.Options), a.SelectedOptionIDs)
	}
	ev.SelectedOptionIDs = optionIDs(i, selected)

	ok := len(selected) > 0 && equalInts(selected, correct)
	ev.Correct = &ok
	return ev
}

// selectedIndexes maps option ids back to sorted, de-duplicated indexes of question i.
func selectedIndexes(i, optionCount int, ids []string) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		qi, oi, ok := ParseOptionID(id)
		if !ok || qi != i || oi >= optionCount {
			continue
		}
		if _, dup := seen[oi]; dup {
			continue
		}
		seen[oi] = struct{}{}
		out = append(out, oi)
	}
	sort.Ints(out)
	return out
}

func optionIDs(i int, indexes []int) []string {
	if len(indexes) == 0 {
		return nil
	}
	out := make([]string, len(indexes))
	for k, j := range indexes {
		out[k] = OptionID(i, j)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func foldAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
