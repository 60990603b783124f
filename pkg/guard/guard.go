// Package guard filters agent input and output: prompt-manipulation attempts
// are rejected before the agent runs, and advice-like answers get a fixed
// disclaimer appended exactly once.
package guard

import (
	"regexp"
	"strings"
)

// Disclaimer is the fixed block appended to advice-like responses.
const Disclaimer = "⚠️ **Disclaimer**: This analysis is for educational purposes only. " +
	"Not financial advice. Consult qualified advisors before investing."

// RejectReason is returned for blocked input.
const RejectReason = "System manipulation attempt detected"

// DefaultDenyList holds the manipulation phrasings blocked on input,
// matched case-insensitively as substrings.
func DefaultDenyList() []string {
	return []string{
		"ignore previous instructions",
		"act as if you are",
		"pretend to be",
	}
}

var advicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`you should (buy|sell|invest)`),
	regexp.MustCompile(`definitely (buy|sell|invest)`),
}

var investmentTerms = []string{"invest", "buy", "sell", "portfolio", "stock"}

// Guard is the safety filter. The zero value is not usable; use NewGuard.
type Guard struct {
	denyList []string
}

// NewGuard creates a filter with the given deny-list, falling back to the
// defaults when empty.
func NewGuard(denyList []string) *Guard {
	if len(denyList) == 0 {
		denyList = DefaultDenyList()
	}
	lowered := make([]string, len(denyList))
	for i, p := range denyList {
		lowered[i] = strings.ToLower(p)
	}
	return &Guard{denyList: lowered}
}

// CheckInput reports whether the input is allowed. Blocked input carries a
// fixed reason string.
func (g *Guard) CheckInput(input string) (bool, string) {
	lower := strings.ToLower(input)
	for _, phrase := range g.denyList {
		if strings.Contains(lower, phrase) {
			return false, RejectReason
		}
	}
	return true, ""
}

// CheckOutput always allows the response but appends the disclaimer when it
// reads like financial advice or mentions investment terms. Idempotent: a
// response already carrying a disclaimer is returned unchanged.
func (g *Guard) CheckOutput(response string) (string, []string) {
	lower := strings.ToLower(response)

	advice := false
	for _, p := range advicePatterns {
		if p.MatchString(lower) {
			advice = true
			break
		}
	}

	mentions := false
	for _, term := range investmentTerms {
		if strings.Contains(lower, term) {
			mentions = true
			break
		}
	}

	if !advice && !mentions {
		return response, nil
	}
	if strings.Contains(lower, "disclaimer") {
		return response, nil
	}
	return response + "\n\n" + Disclaimer, []string{"Financial disclaimer added"}
}
