// Package categories assigns spending categories to transaction
// descriptions. Two rule sources feed one resolver: a static keyword
// rulebook from configuration and per-user learned rules created when a
// user manually recategorizes a transaction. Learned rules win.
package categories

import (
	"strings"

	"github.com/dylanw/budget-tracker/internal/domain"
)

// KeywordRule maps one category to the substrings that select it.
type KeywordRule struct {
	Category string
	Keywords []string
}

// Resolver answers Categorize lookups. It holds no I/O and never mutates
// its rule sets, so a single instance can serve a whole parse pass.
type Resolver struct {
	rules   []KeywordRule
	learned map[string]string // trimmed description -> category
}

// NewResolver builds a resolver from the configured rulebook and a user's
// learned rules. The rulebook slice order is significant: when a
// description matches keywords from two categories, the category listed
// first wins. learned may be nil.
func NewResolver(rules []KeywordRule, learned map[string]string) *Resolver {
	r := &Resolver{
		rules:   rules,
		learned: make(map[string]string, len(learned)),
	}
	for desc, cat := range learned {
		r.learned[strings.TrimSpace(desc)] = cat
	}
	return r
}

// Categorize returns the category for a description.
//
// Precedence: exact learned-rule match on the trimmed description, then
// case-insensitive keyword substring match in configured order, then
// "Uncategorized".
func (r *Resolver) Categorize(description string) string {
	trimmed := strings.TrimSpace(description)
	if cat, ok := r.learned[trimmed]; ok {
		return cat
	}

	upper := strings.ToUpper(trimmed)
	for _, rule := range r.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(upper, strings.ToUpper(keyword)) {
				return rule.Category
			}
		}
	}

	return domain.Uncategorized
}

// Categories returns the category names of the rulebook in configured
// order, for settings screens and validation of manual assignments.
func (r *Resolver) Categories() []string {
	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Category)
	}
	return names
}
