// internal/story/series.go
package story

import (
	"sort"
	"strings"
)

// DefaultSeries is assigned when no rule matches.
const DefaultSeries = "Khác"

// SeriesRule assigns Label to any file name containing one of Match.
type SeriesRule struct {
	Label string   `yaml:"label"`
	Match []string `yaml:"match"`
}

// DefaultSeriesRules is the stock rule table, tested in order.
var DefaultSeriesRules = []SeriesRule{
	{Label: "Board Game", Match: []string{"boardgame"}},
	{Label: "Junna Series", Match: []string{"junna"}},
	{Label: "Noucome", Match: []string{"noucome", "vol"}},
	{Label: "Genben", Match: []string{"genben"}},
	{Label: "Kore wa Zombie", Match: []string{"korezom"}},
	{Label: "Daraku", Match: []string{"daraku"}},
	{Label: "Twin", Match: []string{"twin"}},
	{Label: "Chuunibyou", Match: []string{"chunni"}},
}

// Categorizer maps file names to series labels.
type Categorizer struct {
	Rules   []SeriesRule
	Default string
}

// DefaultCategorizer uses DefaultSeriesRules and DefaultSeries.
var DefaultCategorizer = Categorizer{Rules: DefaultSeriesRules, Default: DefaultSeries}

// Categorize returns the label of the first rule with a case-insensitive
// substring match in filename, or the default label.
func (c Categorizer) Categorize(filename string) string {
	lower := strings.ToLower(filename)
	for _, rule := range c.Rules {
		for _, pattern := range rule.Match {
			if pattern != "" && strings.Contains(lower, strings.ToLower(pattern)) {
				return rule.Label
			}
		}
	}
	if c.Default == "" {
		return DefaultSeries
	}
	return c.Default
}

// GroupBySeries buckets stories by their Series field. Each bucket is
// sorted by file name.
func GroupBySeries(stories []Story) map[string][]Story {
	groups := make(map[string][]Story)
	for _, s := range stories {
		groups[s.Series] = append(groups[s.Series], s)
	}
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].FileName < group[j].FileName
		})
	}
	return groups
}
