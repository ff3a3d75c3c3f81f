package tiebreak

import (
	"math"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
)

// Kind identifies one comparison rule in a tiebreak chain
type Kind string

const (
	HeadToHead         Kind = "head_to_head"
	DivisionRecord     Kind = "division_record"
	HeadToHeadPoints   Kind = "head_to_head_points"
	TotalPoints        Kind = "total_points"
	StrengthOfSchedule Kind = "strength_of_schedule"
	MatrixRank         Kind = "matrix_rank"
	Alphabetical       Kind = "alphabetical"
)

// Chain is an ordered list of rules. The last rule should be Alphabetical so
// every chain produces a total order.
type Chain []Kind

var (
	// DivisionChain orders teams within one division
	DivisionChain = Chain{HeadToHead, DivisionRecord, HeadToHeadPoints, TotalPoints, MatrixRank, Alphabetical}
	// CrossDivisionChain compares teams from different divisions
	CrossDivisionChain = Chain{HeadToHead, StrengthOfSchedule, TotalPoints, MatrixRank, Alphabetical}
)

// scoreEpsilon absorbs float noise in summed points and percentages
const scoreEpsilon = 1e-9

// peelsSubgroups reports whether a rule may split off a tied subgroup. Matrix
// rank only ever separates a single team; a tie on it goes straight to the
// alphabetical fallback.
func (k Kind) peelsSubgroups() bool {
	return k != MatrixRank
}

// Table scores teams for each rule. Higher scores are better.
type Table struct {
	Snapshot  *league.Snapshot
	Overrides league.Overrides
}

// Score returns team's value for rule k, measured against the other members
// of group where the rule is group-relative.
func (t Table) Score(k Kind, team string, group []string) float64 {
	rec := t.Snapshot.Team(team)
	switch k {
	case HeadToHead:
		return t.Snapshot.HeadToHeadVsGroup(team, group).WinPct()
	case DivisionRecord:
		return rec.DivisionPct()
	case HeadToHeadPoints:
		return t.headToHeadPoints(team, group)
	case TotalPoints:
		return rec.PointsFor
	case StrengthOfSchedule:
		return t.Snapshot.StrengthOfSchedule(team)
	case MatrixRank:
		return -float64(rec.MatrixRank)
	}
	return 0
}

// headToHeadPoints sums the points team scored against the rest of group,
// substituting override values for any pair that has one.
func (t Table) headToHeadPoints(team string, group []string) float64 {
	var total float64
	for _, opp := range group {
		if opp == team {
			continue
		}
		if value, _, ok := t.Overrides.Lookup(string(HeadToHeadPoints), team, opp); ok {
			total += value
			continue
		}
		total += t.Snapshot.HeadToHead(team, opp).PointsFor
	}
	return total
}

// best returns the members of group that share the top score for rule k
func (t Table) best(k Kind, group []string) []string {
	scores := make([]float64, len(group))
	top := math.Inf(-1)
	for i, team := range group {
		scores[i] = t.Score(k, team, group)
		if scores[i] > top {
			top = scores[i]
		}
	}

	var winners []string
	for i, team := range group {
		if scores[i] >= top-scoreEpsilon {
			winners = append(winners, team)
		}
	}
	return winners
}
