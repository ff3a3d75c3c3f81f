package league

import "sort"

// Override substitutes the values a tiebreak stage would compute for one
// ordered team pair. It models cases such as a margin-of-victory rule that
// changes recorded head-to-head points without changing who won.
type Override struct {
	Stage         string  `json:"stage"`
	Team          string  `json:"team"`
	Opponent      string  `json:"opponent"`
	TeamValue     float64 `json:"team_value"`
	OpponentValue float64 `json:"opponent_value"`
}

type overrideKey struct {
	stage, team, opponent string
}

// Overrides is the set of overrides active for one scenario evaluation
type Overrides map[overrideKey]Override

// Set adds or replaces the override for its stage and pair
func (o *Overrides) Set(ov Override) {
	if *o == nil {
		*o = make(Overrides)
	}
	(*o)[overrideKey{ov.Stage, ov.Team, ov.Opponent}] = ov
}

// Lookup returns the substituted values for team and opponent at stage. An
// override registered for the reversed pair is mirrored.
func (o Overrides) Lookup(stage, team, opponent string) (teamValue, opponentValue float64, ok bool) {
	if ov, found := o[overrideKey{stage, team, opponent}]; found {
		return ov.TeamValue, ov.OpponentValue, true
	}
	if ov, found := o[overrideKey{stage, opponent, team}]; found {
		return ov.OpponentValue, ov.TeamValue, true
	}
	return 0, 0, false
}

// Len returns the number of overrides in the set
func (o Overrides) Len() int {
	return len(o)
}

// List returns the overrides ordered by stage, team and opponent
func (o Overrides) List() []Override {
	list := make([]Override, 0, len(o))
	for _, ov := range o {
		list = append(list, ov)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		return a.Opponent < b.Opponent
	})
	return list
}

// OverrideRule is a scripted special case: when Winner wins the Away at Home
// game by at least MinMargin points, Stage uses AwayValue and HomeValue for
// that pair instead of the recorded values.
type OverrideRule struct {
	Away      string  `json:"away_team" yaml:"away_team"`
	Home      string  `json:"home_team" yaml:"home_team"`
	Winner    Side    `json:"winner" yaml:"winner"`
	MinMargin float64 `json:"min_margin" yaml:"min_margin"`
	Stage     string  `json:"stage" yaml:"stage"`
	AwayValue float64 `json:"away_value" yaml:"away_value"`
	HomeValue float64 `json:"home_value" yaml:"home_value"`
	Note      string  `json:"note,omitempty" yaml:"note,omitempty"`
}

// Triggered reports whether the game result activates the rule
func (r OverrideRule) Triggered(g GameResult) bool {
	return g.Away == r.Away && g.Home == r.Home && g.Winner == r.Winner && g.Margin >= r.MinMargin
}

// Override returns the override the rule installs
func (r OverrideRule) Override() Override {
	return Override{
		Stage:         r.Stage,
		Team:          r.Away,
		Opponent:      r.Home,
		TeamValue:     r.AwayValue,
		OpponentValue: r.HomeValue,
	}
}

// ActiveOverrides collects the overrides installed by rules the results trigger
func ActiveOverrides(rules []OverrideRule, results []GameResult) Overrides {
	var active Overrides
	for _, rule := range rules {
		for _, g := range results {
			if rule.Triggered(g) {
				active.Set(rule.Override())
			}
		}
	}
	return active
}
