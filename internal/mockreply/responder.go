// Package mockreply selects canned agriculture replies for a message when no
// live model answer is available.
package mockreply

import "strings"

// Category names the topic a rule answers.
type Category string

const (
	Greeting   Category = "greeting"
	Crop       Category = "crop"
	Disease    Category = "disease"
	Fertilizer Category = "fertilizer"
	Irrigation Category = "irrigation"
	Schemes    Category = "schemes"
	Platform   Category = "platform"
	Default    Category = "default"
)

// Predicate reports whether a rule applies to lowercased input.
type Predicate func(lowered string) bool

// Rule pairs a predicate with a fixed reply.
type Rule struct {
	Category Category
	Match    Predicate
	Reply    string
}

// Responder evaluates rules in order; the first match wins.
type Responder struct {
	rules    []Rule
	fallback string
}

// New builds a responder from an ordered rule list and a default reply.
func New(rules []Rule, fallback string) *Responder {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Responder{rules: copied, fallback: fallback}
}

// Reply returns the canned reply for text. It never fails.
func (r *Responder) Reply(text string) string {
	if rule, ok := r.match(text); ok {
		return rule.Reply
	}
	return r.fallback
}

// Classify returns the category of the rule that answers text.
func (r *Responder) Classify(text string) Category {
	if rule, ok := r.match(text); ok {
		return rule.Category
	}
	return Default
}

func (r *Responder) match(text string) (Rule, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range r.rules {
		if rule.Match != nil && rule.Match(lowered) {
			return rule, true
		}
	}
	return Rule{}, false
}

// ContainsAny matches when any keyword occurs as a substring.
func ContainsAny(keywords ...string) Predicate {
	return func(lowered string) bool {
		return containsAny(lowered, keywords)
	}
}

// Without narrows p so that it does not match when any of the excluded
// keywords is present.
func Without(p Predicate, excluded ...string) Predicate {
	return func(lowered string) bool {
		return p(lowered) && !containsAny(lowered, excluded)
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
