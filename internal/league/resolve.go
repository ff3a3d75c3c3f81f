package league

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// minSimilarity is the Levenshtein similarity a misspelled name needs to match
const minSimilarity = 0.6

// ResolveTeam maps user input onto a team name: exact match, then
// case-insensitive match, then the closest name containing the input's
// letters in order, then the closest name by edit distance.
func (l *League) ResolveTeam(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "`", "'"))
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownTeam)
	}
	if l.Has(name) {
		return name, nil
	}
	for _, team := range l.teams {
		if strings.EqualFold(team, name) {
			return team, nil
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(name, l.teams)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		if len(ranks) > 1 && ranks[0].Distance == ranks[1].Distance {
			return "", fmt.Errorf("%w: %q matches %q and %q", ErrAmbiguousTeam, name, ranks[0].Target, ranks[1].Target)
		}
		return ranks[0].Target, nil
	}

	best, bestSimilarity := "", 0.0
	for _, team := range l.teams {
		distance := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(team))
		maxLen := float64(max(len(name), len(team)))
		similarity := 1 - float64(distance)/maxLen
		if similarity > bestSimilarity {
			best, bestSimilarity = team, similarity
		}
	}
	if bestSimilarity >= minSimilarity {
		return best, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownTeam, name)
}
