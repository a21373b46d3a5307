package quiz

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Normalize parses stored question JSON into canonical questions.
// It never fails: invalid JSON yields no questions and malformed entries are dropped.
func Normalize(raw []byte) []Question {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return NormalizeValue(v)
}

// NormalizeValue is Normalize for an already decoded JSON value.
func NormalizeValue(v any) []Question {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Question, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if q, ok := normalizeQuestion(obj); ok {
			out = append(out, q)
		}
	}
	return out
}

func normalizeQuestion(obj map[string]any) (Question, bool) {
	q := Question{
		Prompt:      firstText(obj, "prompt", "question"),
		Explanation: stringField(obj, "explanation"),
		Kind:        detectKind(obj),
	}
	if q.Prompt == "" {
		q.Prompt = DefaultPrompt
	}

	if q.Kind == KindOpen {
		q.ExpectedAnswer = strings.TrimSpace(scalarText(obj["correctAnswer"]))
		if q.ExpectedAnswer == "" {
			q.ExpectedAnswer = stringField(obj, "answer")
		}
		return q, true
	}

	q.Options = normalizeOptions(obj)
	if len(q.Options) == 0 {
		return Question{}, false
	}
	if q.Kind == KindSingle && len(q.CorrectIndexes()) > 1 {
		q.Kind = KindMultiple
	}
	return q, true
}

func detectKind(obj map[string]any) Kind {
	if s, ok := obj["type"].(string); ok {
		switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
		case KindSingle, KindMultiple, KindOpen:
			return k
		}
	}
	if b, ok := obj["allowMultiple"].(bool); ok && b {
		return KindMultiple
	}
	return KindSingle
}

// normalizeOptions reads the current object form ({text,isCorrect}) when the
// options array holds any object, and the legacy form (scalar options plus
// an `answer` index or index list) otherwise.
func normalizeOptions(obj map[string]any) []Option {
	raw, ok := obj["options"].([]any)
	if !ok || len(raw) == 0 {
		return nil
	}

	if hasObject(raw) {
		out := make([]Option, 0, len(raw))
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			text := firstText(m, "text", "value")
			if text == "" {
				continue
			}
			out = append(out, Option{Text: text, IsCorrect: boolField(m, "isCorrect") || boolField(m, "correct")})
		}
		return out
	}

	correct := answerIndexes(obj["answer"])
	out := make([]Option, 0, len(raw))
	for i, item := range raw {
		text := strings.TrimSpace(scalarText(item))
		if text == "" {
			continue
		}
		_, isCorrect := correct[i]
		out = append(out, Option{Text: text, IsCorrect: isCorrect})
	}
	return out
}

func hasObject(items []any) bool {
	for _, item := range items {
		if _, ok := item.(map[string]any); ok {
			return true
		}
	}
	return false
}

func answerIndexes(v any) map[int]struct{} {
	out := map[int]struct{}{}
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if i, ok := toIndex(e); ok {
				out[i] = struct{}{}
			}
		}
	default:
		if i, ok := toIndex(t); ok {
			out[i] = struct{}{}
		}
	}
	return out
}

func toIndex(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = t
	case int:
		f = float64(t)
	default:
		return 0, false
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// firstText returns the first non-blank scalar among keys, trimmed.
func firstText(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(scalarText(obj[k])); s != "" {
			return s
		}
	}
	return ""
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func boolField(obj map[string]any, key string) bool {
	b, _ := obj[key].(bool)
	return b
}

// scalarText renders strings, numbers and booleans as text.
func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
