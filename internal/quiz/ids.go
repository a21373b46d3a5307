package quiz

import (
	"fmt"
	"strconv"
	"strings"
)

// Public identifiers are positional: "q-{i}" for questions and "q-{i}-opt-{j}"
// for options. They never encode correctness.

func QuestionID(i int) string {
	return "q-" + strconv.Itoa(i)
}

func OptionID(i, j int) string {
	return fmt.Sprintf("q-%d-opt-%d", i, j)
}

// ParseQuestionID returns the index encoded in a question id.
func ParseQuestionID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(id), "q-")
	if !ok {
		return 0, false
	}
	return parseIndex(rest)
}

// ParseOptionID returns the question and option indexes encoded in an option id.
func ParseOptionID(id string) (question, option int, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(id), "q-")
	if !found {
		return 0, 0, false
	}
	qPart, oPart, found := strings.Cut(rest, "-opt-")
	if !found {
		return 0, 0, false
	}
	if question, ok = parseIndex(qPart); !ok {
		return 0, 0, false
	}
	if option, ok = parseIndex(oPart); !ok {
		return 0, 0, false
	}
	return question, option, true
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
