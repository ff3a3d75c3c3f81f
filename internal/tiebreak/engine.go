package tiebreak

import (
	"sort"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/logger"
	"github.com/sirupsen/logrus"
)

// Engine orders tied teams for one snapshot. It holds no state beyond its
// inputs, so one Engine may be used for any number of orderings.
type Engine struct {
	table  Table
	logger logrus.FieldLogger
}

// New creates an engine over snap. Overrides may be nil.
func New(snap *league.Snapshot, overrides league.Overrides, log logrus.FieldLogger) *Engine {
	return &Engine{
		table:  Table{Snapshot: snap, Overrides: overrides},
		logger: logger.OrDiscard(log),
	}
}

// Snapshot returns the snapshot the engine scores against
func (e *Engine) Snapshot() *league.Snapshot {
	return e.table.Snapshot
}

// Order ranks group best to worst with chain. Two teams get a single pass
// through the rules. Larger groups repeatedly split off the subgroup that is
// strictly best on the first rule that separates anyone, order it
// recursively, and start over with the rest.
func (e *Engine) Order(chain Chain, group []string) []string {
	teams := append([]string(nil), group...)
	switch len(teams) {
	case 0, 1:
		return teams
	case 2:
		return e.orderPair(chain, teams[0], teams[1])
	}

	var result []string
	remaining := teams
	for len(remaining) > 1 {
		peeled := false
		for _, k := range chain {
			if k == Alphabetical {
				break
			}
			best := e.table.best(k, remaining)
			if len(best) == len(remaining) {
				continue
			}
			if len(best) > 1 && !k.peelsSubgroups() {
				break
			}
			if len(best) == 1 {
				result = append(result, best[0])
			} else {
				result = append(result, e.Order(chain, best)...)
			}
			remaining = without(remaining, best)
			peeled = true
			break
		}
		if !peeled {
			result = append(result, e.coinToss(remaining)...)
			remaining = nil
		}
	}
	return append(result, remaining...)
}

func (e *Engine) orderPair(chain Chain, a, b string) []string {
	pair := []string{a, b}
	for _, k := range chain {
		if k == Alphabetical {
			break
		}
		sa := e.table.Score(k, a, pair)
		sb := e.table.Score(k, b, pair)
		switch {
		case sa > sb+scoreEpsilon:
			return []string{a, b}
		case sb > sa+scoreEpsilon:
			return []string{b, a}
		}
	}
	return e.coinToss(pair)
}

// Best returns the single best team in group. Each rule narrows the
// candidates to those sharing its top score until one remains.
func (e *Engine) Best(chain Chain, group []string) string {
	remaining := append([]string(nil), group...)
	for _, k := range chain {
		if len(remaining) <= 1 {
			break
		}
		if k == Alphabetical {
			break
		}
		remaining = e.table.best(k, remaining)
	}
	if len(remaining) == 0 {
		return ""
	}
	if len(remaining) > 1 {
		return e.coinToss(remaining)[0]
	}
	return remaining[0]
}

// DivisionOrder ranks teams that belong to a single division
func (e *Engine) DivisionOrder(group []string) []string {
	return e.Order(DivisionChain, group)
}

// WildCardOrder ranks teams that may span divisions. Each division's share
// of the group is ordered with the division rules first; the heads of those
// lists are then compared across divisions, the winner is taken, and the
// process repeats. Each division's internal order is preserved.
func (e *Engine) WildCardOrder(group []string) []string {
	if len(group) <= 1 {
		return append([]string(nil), group...)
	}

	queues := e.byDivision(group)
	if len(queues) == 1 {
		return e.DivisionOrder(group)
	}
	for i := range queues {
		queues[i] = e.DivisionOrder(queues[i])
	}

	result := make([]string, 0, len(group))
	for len(result) < len(group) {
		var heads []string
		for _, q := range queues {
			if len(q) > 0 {
				heads = append(heads, q[0])
			}
		}

		next := heads[0]
		if len(heads) > 1 {
			next = e.Best(CrossDivisionChain, heads)
		}
		result = append(result, next)

		for i, q := range queues {
			if len(q) > 0 && q[0] == next {
				queues[i] = q[1:]
				break
			}
		}
	}
	return result
}

// Eliminate repeatedly removes the best team from group, compared across
// divisions, and returns the team left at the end.
func (e *Engine) Eliminate(group []string) string {
	remaining := append([]string(nil), group...)
	for len(remaining) > 1 {
		best := e.Best(CrossDivisionChain, remaining)
		remaining = without(remaining, []string{best})
	}
	if len(remaining) == 0 {
		return ""
	}
	return remaining[0]
}

// RankDivision orders every team in a division: by overall line first, then
// with the division rules inside each tied line.
func (e *Engine) RankDivision(div league.Division) []string {
	var ranking []string
	for _, tied := range GroupByLine(e.table.Snapshot, div.Teams) {
		ranking = append(ranking, e.DivisionOrder(tied)...)
	}
	return ranking
}

// GroupByLine groups teams sharing a (wins, losses, ties) line, best line
// first. Teams keep their input order inside a group.
func GroupByLine(snap *league.Snapshot, teams []string) [][]string {
	groups := make(map[league.Line][]string)
	var lines []league.Line
	for _, team := range teams {
		line := snap.Team(team).Line()
		if _, exists := groups[line]; !exists {
			lines = append(lines, line)
		}
		groups[line] = append(groups[line], team)
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Better(lines[j])
	})

	result := make([][]string, 0, len(lines))
	for _, line := range lines {
		result = append(result, groups[line])
	}
	return result
}

func (e *Engine) byDivision(group []string) [][]string {
	l := e.table.Snapshot.League()
	members := make(map[string][]string)
	for _, team := range group {
		div := l.DivisionOf(team)
		members[div] = append(members[div], team)
	}

	var queues [][]string
	for _, div := range l.Divisions() {
		if teams, ok := members[div.Name]; ok {
			queues = append(queues, teams)
			delete(members, div.Name)
		}
	}
	// teams outside the league share one trailing queue
	if rest, ok := members[""]; ok {
		queues = append(queues, rest)
	}
	return queues
}

// coinToss settles a tie no rule could break by sorting names
func (e *Engine) coinToss(teams []string) []string {
	sorted := append([]string(nil), teams...)
	sort.Strings(sorted)
	e.logger.WithField("teams", sorted).Debug("Tie survived every rule, using alphabetical order")
	return sorted
}

func without(teams, remove []string) []string {
	drop := make(map[string]bool, len(remove))
	for _, t := range remove {
		drop[t] = true
	}
	kept := make([]string, 0, len(teams))
	for _, t := range teams {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	return kept
}
