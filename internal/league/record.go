package league

import "fmt"

// Record is a win/loss/tie line with points. It is used both for a team's
// season totals and for its head-to-head sub-record against one opponent.
type Record struct {
	Wins          int     `json:"wins" yaml:"wins"`
	Losses        int     `json:"losses" yaml:"losses"`
	Ties          int     `json:"ties" yaml:"ties"`
	PointsFor     float64 `json:"points_for" yaml:"points_for"`
	PointsAgainst float64 `json:"points_against" yaml:"points_against"`
}

// Games returns the number of games in the record
func (r Record) Games() int {
	return r.Wins + r.Losses + r.Ties
}

// WinPct returns the record's winning percentage, ties counting as half a win
func (r Record) WinPct() float64 {
	return WinPct(r.Wins, r.Losses, r.Ties)
}

// Add returns the sum of two records
func (r Record) Add(o Record) Record {
	return Record{
		Wins:          r.Wins + o.Wins,
		Losses:        r.Losses + o.Losses,
		Ties:          r.Ties + o.Ties,
		PointsFor:     r.PointsFor + o.PointsFor,
		PointsAgainst: r.PointsAgainst + o.PointsAgainst,
	}
}

// WinPct calculates a winning percentage. A team with no games has a
// percentage of 0, which callers treat as "no data".
func WinPct(wins, losses, ties int) float64 {
	total := wins + losses + ties
	if total == 0 {
		return 0
	}
	return (float64(wins) + 0.5*float64(ties)) / float64(total)
}

// Line is the (wins, losses, ties) triple teams are grouped by before any
// tiebreaker applies.
type Line struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// Better reports whether l ranks ahead of o: more wins, then fewer losses,
// then fewer ties.
func (l Line) Better(o Line) bool {
	if l.Wins != o.Wins {
		return l.Wins > o.Wins
	}
	if l.Losses != o.Losses {
		return l.Losses < o.Losses
	}
	return l.Ties < o.Ties
}

func (l Line) String() string {
	if l.Ties > 0 {
		return fmt.Sprintf("%d-%d-%d", l.Wins, l.Losses, l.Ties)
	}
	return fmt.Sprintf("%d-%d", l.Wins, l.Losses)
}

// TeamRecord is everything the tiebreakers know about one team.
type TeamRecord struct {
	Record         `yaml:",inline"`
	DivisionWins   int               `json:"division_wins" yaml:"division_wins"`
	DivisionLosses int               `json:"division_losses" yaml:"division_losses"`
	DivisionTies   int               `json:"division_ties" yaml:"division_ties"`
	MatrixRank     int               `json:"matrix_rank" yaml:"matrix_rank"`
	HeadToHead     map[string]Record `json:"h2h,omitempty" yaml:"h2h,omitempty"`
}

// Line returns the team's overall (wins, losses, ties)
func (t *TeamRecord) Line() Line {
	return Line{Wins: t.Wins, Losses: t.Losses, Ties: t.Ties}
}

// DivisionPct returns the team's winning percentage in division games
func (t *TeamRecord) DivisionPct() float64 {
	return WinPct(t.DivisionWins, t.DivisionLosses, t.DivisionTies)
}

func (t *TeamRecord) clone() *TeamRecord {
	c := *t
	c.HeadToHead = make(map[string]Record, len(t.HeadToHead))
	for opp, rec := range t.HeadToHead {
		c.HeadToHead[opp] = rec
	}
	return &c
}
