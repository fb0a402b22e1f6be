package translate

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind is the closed set of image-selection verbs.
type ActionKind int

const (
	// Exact targets the image at one 1-based position.
	Exact ActionKind = iota
	// FirstN targets positions 1..N.
	FirstN
	// LastN targets the Nth position.
	LastN
	// Specific targets one listed position.
	Specific
	// SpecificAll scans every image and translates only the Chinese ones.
	SpecificAll
	// AutoDetectChinese is the explicit Chinese-detection alias of
	// SpecificAll.
	AutoDetectChinese
)

// Action is one parsed element of the action-value language.
type Action struct {
	Kind ActionKind
	N    int
}

// ParseActionValue parses the in-page DSL naming which images to process.
// Comma-separated values combine; a '/'-separated composite concatenates
// parsed sets.
func ParseActionValue(value string) ([]Action, error) {
	var actions []Action
	for _, part := range strings.Split(value, "/") {
		for _, token := range strings.Split(part, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			action, err := parseToken(token)
			if err != nil {
				return nil, err
			}
			actions = append(actions, action)
		}
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("empty action value %q", value)
	}
	return actions, nil
}

func parseToken(token string) (Action, error) {
	switch {
	case token == "auto_detect_chinese":
		return Action{Kind: AutoDetectChinese}, nil
	case token == "specific:all":
		return Action{Kind: SpecificAll}, nil
	case strings.HasPrefix(token, "first:"):
		n, err := parsePosition(strings.TrimPrefix(token, "first:"))
		if err != nil {
			return Action{}, fmt.Errorf("bad first token %q: %w", token, err)
		}
		return Action{Kind: FirstN, N: n}, nil
	case strings.HasPrefix(token, "last:"):
		n, err := parsePosition(strings.TrimPrefix(token, "last:"))
		if err != nil {
			return Action{}, fmt.Errorf("bad last token %q: %w", token, err)
		}
		return Action{Kind: LastN, N: n}, nil
	case strings.HasPrefix(token, "specific:"):
		n, err := parsePosition(strings.TrimPrefix(token, "specific:"))
		if err != nil {
			return Action{}, fmt.Errorf("bad specific token %q: %w", token, err)
		}
		return Action{Kind: Specific, N: n}, nil
	default:
		n, err := parsePosition(token)
		if err != nil {
			return Action{}, fmt.Errorf("bad position token %q: %w", token, err)
		}
		return Action{Kind: Exact, N: n}, nil
	}
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("position %d is not 1-based", n)
	}
	return n, nil
}

// SequentialAll reports whether the parsed actions ask for the
// scan-then-translate pass over every image.
func SequentialAll(actions []Action) bool {
	for _, a := range actions {
		if a.Kind == SpecificAll || a.Kind == AutoDetectChinese {
			return true
		}
	}
	return false
}

// Positions expands the actions into an ordered, deduplicated list of
// 1-based positions, clamped to total. Order is preserved from the DSL.
func Positions(actions []Action, total int) []int {
	seen := make(map[int]bool)
	var out []int
	add := func(p int) {
		if p >= 1 && p <= total && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, a := range actions {
		switch a.Kind {
		case Exact, Specific, LastN:
			add(a.N)
		case FirstN:
			for p := 1; p <= a.N; p++ {
				add(p)
			}
		}
	}
	return out
}
