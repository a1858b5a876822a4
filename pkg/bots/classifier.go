// package bots classifies commit authorship records as human or automated
// so CI systems and dependency bots stay out of contributor statistics.
package bots

import "strings"

// Rule is one ordered classification rule. The first rule whose Matches
// function returns true decides the verdict; Automated is that verdict.
// Matches always receives lowercased inputs.
type Rule struct {
	Name      string
	Automated bool
	Matches   func(name, email string) bool
}

// Classifier applies an ordered rule list to authorship records.
type Classifier struct {
	rules []Rule
}

// New returns a Classifier using DefaultRules.
func New() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// NewWithRules returns a Classifier with a caller-supplied rule order.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// IsAutomated reports whether the authorship record looks like a CI system
// or bot rather than a human. Matching is case-insensitive and the default
// verdict, when no rule matches, is human.
func (c *Classifier) IsAutomated(name, email string) bool {
	name = strings.ToLower(name)
	email = strings.ToLower(email)
	for _, r := range c.rules {
		if r.Matches(name, email) {
			return r.Automated
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func hasSuffixAny(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
