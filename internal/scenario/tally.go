package scenario

import (
	"math"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/qualify"
)

// Status summarises a team's position across all scenarios
type Status string

const (
	ClinchedPlayoffs   Status = "clinched_playoffs"
	ClinchedRelegation Status = "clinched_relegation"
	Safe               Status = "safe"
	PlayoffContender   Status = "playoff_contender"
	RelegationDanger   Status = "relegation_danger"
)

// clinchThreshold is the percentage at which an outcome counts as certain
const clinchThreshold = 99.9

type counts struct {
	championship    float64
	bye             float64
	divisionWinner  float64
	relegation      float64
	safe            float64
	seeds           map[int]float64
	relegationSeeds map[int]float64
}

// Tally accumulates weighted qualification results at full precision. A
// tally belongs to one goroutine; tallies from parallel workers are merged
// once they finish.
type Tally struct {
	teams     map[string]*counts
	total     float64
	scenarios int
}

func newTally(l *league.League) *Tally {
	t := &Tally{teams: make(map[string]*counts, len(l.Teams()))}
	for _, team := range l.Teams() {
		t.teams[team] = &counts{
			seeds:           make(map[int]float64),
			relegationSeeds: make(map[int]float64),
		}
	}
	return t
}

// Add folds one scenario result in with the given weight
func (t *Tally) Add(r *qualify.Result, weight float64) {
	t.total += weight
	t.scenarios++

	placed := make(map[string]bool, len(r.Championship)+len(r.Relegation))
	for _, s := range r.Championship {
		c := t.teams[s.Team]
		c.championship += weight
		c.seeds[s.Seed] += weight
		if s.Bye {
			c.bye += weight
		}
		if s.DivisionWinner {
			c.divisionWinner += weight
		}
		placed[s.Team] = true
	}
	for _, s := range r.Relegation {
		c := t.teams[s.Team]
		c.relegation += weight
		c.relegationSeeds[s.Seed] += weight
		placed[s.Team] = true
	}
	for team, c := range t.teams {
		if !placed[team] {
			c.safe += weight
		}
	}
}

// Merge adds another tally's totals into t
func (t *Tally) Merge(o *Tally) {
	if o == nil {
		return
	}
	t.total += o.total
	t.scenarios += o.scenarios
	for team, oc := range o.teams {
		c := t.teams[team]
		c.championship += oc.championship
		c.bye += oc.bye
		c.divisionWinner += oc.divisionWinner
		c.relegation += oc.relegation
		c.safe += oc.safe
		for seed, w := range oc.seeds {
			c.seeds[seed] += w
		}
		for seed, w := range oc.relegationSeeds {
			c.relegationSeeds[seed] += w
		}
	}
}

// TeamOdds is one team's share of all scenarios, in percent
type TeamOdds struct {
	Team            string          `json:"team"`
	Division        string          `json:"division"`
	Record          string          `json:"current_record"`
	Championship    float64         `json:"championship_pct"`
	Bye             float64         `json:"bye_pct"`
	DivisionWinner  float64         `json:"division_winner_pct"`
	Relegation      float64         `json:"relegation_pct"`
	Safe            float64         `json:"safe_pct"`
	Seeds           map[int]float64 `json:"seed_pct,omitempty"`
	RelegationSeeds map[int]float64 `json:"relegation_seed_pct,omitempty"`
	Status          Status          `json:"status"`
}

// Summary is the result of a strategy run
type Summary struct {
	RunID       string     `json:"run_id"`
	League      string     `json:"league"`
	Strategy    string     `json:"strategy"`
	Games       int        `json:"games"`
	Scenarios   int        `json:"scenarios"`
	Seed        *uint64    `json:"seed,omitempty"`
	TotalWeight float64    `json:"total_weight"`
	Teams       []TeamOdds `json:"teams"`
}

// Team returns the odds for one team, or nil
func (s *Summary) Team(name string) *TeamOdds {
	for i := range s.Teams {
		if s.Teams[i].Team == name {
			return &s.Teams[i]
		}
	}
	return nil
}

// summarize normalizes the tally into percentages. Rounding to one decimal
// happens here and nowhere earlier.
func (t *Tally) summarize(snap *league.Snapshot) (*Summary, error) {
	if t.total <= 0 || math.IsNaN(t.total) {
		return nil, ErrZeroWeight
	}

	l := snap.League()
	s := &Summary{
		League:      l.Name(),
		Scenarios:   t.scenarios,
		TotalWeight: t.total,
	}
	for _, team := range l.Teams() {
		c := t.teams[team]
		odds := TeamOdds{
			Team:            team,
			Division:        l.DivisionOf(team),
			Record:          snap.Team(team).Line().String(),
			Championship:    t.percent(c.championship),
			Bye:             t.percent(c.bye),
			DivisionWinner:  t.percent(c.divisionWinner),
			Relegation:      t.percent(c.relegation),
			Safe:            t.percent(c.safe),
			Seeds:           t.percents(c.seeds),
			RelegationSeeds: t.percents(c.relegationSeeds),
		}
		odds.Status = statusOf(odds)
		s.Teams = append(s.Teams, odds)
	}
	return s, nil
}

func (t *Tally) percent(w float64) float64 {
	return math.Round(w/t.total*1000) / 10
}

func (t *Tally) percents(weights map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(weights))
	for seed, w := range weights {
		if w > 0 {
			out[seed] = t.percent(w)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func statusOf(o TeamOdds) Status {
	switch {
	case o.Championship >= clinchThreshold:
		return ClinchedPlayoffs
	case o.Relegation >= clinchThreshold:
		return ClinchedRelegation
	case o.Safe >= clinchThreshold:
		return Safe
	case o.Championship > 0:
		return PlayoffContender
	case o.Relegation > 0:
		return RelegationDanger
	}
	return Safe
}
