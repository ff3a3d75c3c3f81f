package league

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTeam is returned when a team name does not belong to the league
	ErrUnknownTeam = errors.New("unknown team")
	// ErrAmbiguousTeam is returned when a partial team name matches more than one team
	ErrAmbiguousTeam = errors.New("ambiguous team name")
)

// Division is a named, ordered group of teams
type Division struct {
	Name  string   `json:"name" yaml:"name"`
	Teams []string `json:"teams" yaml:"teams"`
}

// League describes who plays in which division. It is immutable once built
// and safe to share between goroutines.
type League struct {
	name       string
	divisions  []Division
	teams      []string
	divisionOf map[string]string
}

// New validates the division layout and builds a League. Every team must
// appear in exactly one division.
func New(name string, divisions []Division) (*League, error) {
	if len(divisions) == 0 {
		return nil, fmt.Errorf("league %q has no divisions", name)
	}

	l := &League{
		name:       name,
		divisionOf: make(map[string]string),
	}

	seenDivisions := make(map[string]bool)
	for _, div := range divisions {
		if div.Name == "" {
			return nil, fmt.Errorf("league %q has a division without a name", name)
		}
		if seenDivisions[div.Name] {
			return nil, fmt.Errorf("league %q: duplicate division %q", name, div.Name)
		}
		seenDivisions[div.Name] = true

		if len(div.Teams) == 0 {
			return nil, fmt.Errorf("league %q: division %q has no teams", name, div.Name)
		}

		members := make([]string, len(div.Teams))
		copy(members, div.Teams)
		for _, team := range members {
			if team == "" {
				return nil, fmt.Errorf("league %q: division %q has an empty team name", name, div.Name)
			}
			if other, exists := l.divisionOf[team]; exists {
				return nil, fmt.Errorf("league %q: team %q is in divisions %q and %q", name, team, other, div.Name)
			}
			l.divisionOf[team] = div.Name
			l.teams = append(l.teams, team)
		}
		l.divisions = append(l.divisions, Division{Name: div.Name, Teams: members})
	}

	return l, nil
}

// Name returns the league name
func (l *League) Name() string {
	return l.name
}

// Divisions returns the divisions in their configured order. Callers must not
// modify the returned slices.
func (l *League) Divisions() []Division {
	return l.divisions
}

// Teams returns every team, division by division. Callers must not modify
// the returned slice.
func (l *League) Teams() []string {
	return l.teams
}

// DivisionOf returns the team's division name, or "" for unknown teams
func (l *League) DivisionOf(team string) string {
	return l.divisionOf[team]
}

// Has reports whether the team belongs to the league
func (l *League) Has(team string) bool {
	_, ok := l.divisionOf[team]
	return ok
}

// SameDivision reports whether two teams share a division
func (l *League) SameDivision(a, b string) bool {
	da, ok := l.divisionOf[a]
	return ok && da == l.divisionOf[b]
}
