package filter

import "strings"

// Category labels an insight by topic.
type Category string

const (
	CategoryAlgorithm    Category = "algorithm"
	CategoryGrowth       Category = "growth"
	CategoryIssue        Category = "issue"
	CategoryTips         Category = "tips"
	CategoryMonetization Category = "monetization"
	CategoryGeneral      Category = "general"
)

// Categories lists every label, general last.
var Categories = []Category{
	CategoryAlgorithm,
	CategoryGrowth,
	CategoryIssue,
	CategoryTips,
	CategoryMonetization,
	CategoryGeneral,
}

// categoryRules are evaluated in order; the first group with a hit wins.
// A title mentioning both "algorithm" and "tips" is therefore algorithm.
var categoryRules = []struct {
	category Category
	keywords []string
}{
	{CategoryAlgorithm, []string{"algorithm", "update", "change"}},
	{CategoryGrowth, []string{"growth", "increase", "boost"}},
	{CategoryIssue, []string{"problem", "issue", "help", "fix"}},
	{CategoryTips, []string{"tips", "advice", "how to", "guide"}},
	{CategoryMonetization, []string{"monetization", "money", "revenue"}},
}

// Categorize returns the category for a post title.
func Categorize(title string) Category {
	t := strings.ToLower(title)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

// ParseCategory maps s onto a known Category, falling back to general.
func ParseCategory(s string) Category {
	for _, c := range Categories {
		if string(c) == s {
			return c
		}
	}
	return CategoryGeneral
}
