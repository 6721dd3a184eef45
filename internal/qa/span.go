package qa

import (
	"fmt"
	"strings"
)

// SpanPolicy selects how start/end token positions are picked from model scores.
type SpanPolicy int

const (
	// Independent takes the argmax of start and end scores separately.
	// The end may precede the start, which yields an empty answer.
	Independent SpanPolicy = iota
	// Joint maximizes start+end score over spans with start <= end and a
	// bounded token length, skipping special tokens.
	Joint
)

func (p SpanPolicy) String() string {
	switch p {
	case Joint:
		return "joint"
	default:
		return "independent"
	}
}

// ParseSpanPolicy maps a configuration value to a SpanPolicy.
func ParseSpanPolicy(s string) (SpanPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "independent":
		return Independent, nil
	case "joint":
		return Joint, nil
	default:
		return Independent, fmt.Errorf("unknown span policy %q", s)
	}
}

// argmax returns the index of the first maximum, or -1 for an empty slice.
func argmax(xs []float32) int {
	if len(xs) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

// selectSpan returns the inclusive [start, end] token positions of the answer.
// ok is false when no span can be chosen.
func selectSpan(scores Scores, special []int, policy SpanPolicy, maxTokens int) (start, end int, ok bool) {
	if policy == Joint {
		return bestJointSpan(scores, special, maxTokens)
	}
	start, end = argmax(scores.Start), argmax(scores.End)
	return start, end, start >= 0 && end >= 0
}

func bestJointSpan(scores Scores, special []int, maxTokens int) (int, int, bool) {
	if maxTokens <= 0 {
		maxTokens = 1
	}
	isSpecial := func(i int) bool { return i < len(special) && special[i] == 1 }

	bestStart, bestEnd := -1, -1
	var best float32
	for i := range scores.Start {
		if isSpecial(i) {
			continue
		}
		for j := i; j < len(scores.End) && j-i < maxTokens; j++ {
			if isSpecial(j) {
				break
			}
			s := scores.Start[i] + scores.End[j]
			if bestStart < 0 || s > best {
				best, bestStart, bestEnd = s, i, j
			}
		}
	}
	return bestStart, bestEnd, bestStart >= 0
}
