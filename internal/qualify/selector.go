package qualify

import (
	"errors"
	"fmt"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/logger"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/tiebreak"
	"github.com/sirupsen/logrus"
)

// ErrConfig is returned when the bracket cannot be filled from the league
var ErrConfig = errors.New("invalid bracket configuration")

// Config sizes the championship and relegation brackets
type Config struct {
	BracketSize     int  `json:"bracket_size" yaml:"size"`
	ByeCount        int  `json:"bye_count" yaml:"byes"`
	RelegationCount int  `json:"relegation_count" yaml:"relegation_slots"`
	Relegation      bool `json:"relegation" yaml:"relegation"`
}

// DefaultConfig is a six-team bracket with two byes and four relegation slots
func DefaultConfig() Config {
	return Config{
		BracketSize:     6,
		ByeCount:        2,
		RelegationCount: 4,
		Relegation:      true,
	}
}

// Validate checks the configuration against a league
func (c Config) Validate(l *league.League) error {
	divisions := len(l.Divisions())
	teams := len(l.Teams())

	if c.BracketSize < divisions {
		return fmt.Errorf("%w: bracket size %d is smaller than the %d division winners", ErrConfig, c.BracketSize, divisions)
	}
	if c.BracketSize > teams {
		return fmt.Errorf("%w: bracket size %d exceeds the league's %d teams", ErrConfig, c.BracketSize, teams)
	}
	if c.ByeCount < 0 || c.ByeCount > c.BracketSize {
		return fmt.Errorf("%w: %d byes for a %d-team bracket", ErrConfig, c.ByeCount, c.BracketSize)
	}
	if c.Relegation {
		if c.RelegationCount <= 0 {
			return fmt.Errorf("%w: relegation enabled with %d slots", ErrConfig, c.RelegationCount)
		}
		if left := teams - c.BracketSize; c.RelegationCount > left {
			return fmt.Errorf("%w: %d relegation slots but only %d teams miss the bracket", ErrConfig, c.RelegationCount, left)
		}
	}
	return nil
}

// Seed is one bracket position
type Seed struct {
	Seed           int         `json:"seed"`
	Team           string      `json:"team"`
	Division       string      `json:"division"`
	DivisionWinner bool        `json:"division_winner,omitempty"`
	Bye            bool        `json:"bye,omitempty"`
	Record         league.Line `json:"record"`
}

// DivisionStanding is a division ranked best to worst
type DivisionStanding struct {
	Division string   `json:"division"`
	Teams    []string `json:"teams"`
}

// Result is the outcome of one qualification run
type Result struct {
	Championship []Seed             `json:"championship"`
	Relegation   []Seed             `json:"relegation,omitempty"`
	Safe         []string           `json:"safe"`
	LastPlace    string             `json:"last_place,omitempty"`
	Divisions    []DivisionStanding `json:"divisions"`
}

// InChampionship reports whether team holds a championship seed
func (r *Result) InChampionship(team string) bool {
	return findSeed(r.Championship, team) != nil
}

// InRelegation reports whether team holds a relegation seed
func (r *Result) InRelegation(team string) bool {
	return findSeed(r.Relegation, team) != nil
}

// ChampionshipSeed returns the team's championship seed, or nil
func (r *Result) ChampionshipSeed(team string) *Seed {
	return findSeed(r.Championship, team)
}

// RelegationSeed returns the team's relegation seed, or nil
func (r *Result) RelegationSeed(team string) *Seed {
	return findSeed(r.Relegation, team)
}

func findSeed(seeds []Seed, team string) *Seed {
	for i := range seeds {
		if seeds[i].Team == team {
			return &seeds[i]
		}
	}
	return nil
}

// Selector picks the championship and relegation brackets from a snapshot.
// It keeps no state between calls.
type Selector struct {
	config Config
	logger logrus.FieldLogger
}

// NewSelector creates a selector. A nil logger discards output.
func NewSelector(cfg Config, log logrus.FieldLogger) *Selector {
	return &Selector{config: cfg, logger: logger.OrDiscard(log)}
}

// Config returns the selector's bracket configuration
func (s *Selector) Config() Config {
	return s.config
}

// Select ranks the divisions, fills and seeds the championship bracket and,
// when enabled, selects and seeds the relegation bracket.
func (s *Selector) Select(snap *league.Snapshot, overrides league.Overrides) (*Result, error) {
	l := snap.League()
	if err := s.config.Validate(l); err != nil {
		return nil, err
	}
	e := tiebreak.New(snap, overrides, s.logger)

	result := &Result{}
	var winners []string
	for _, div := range l.Divisions() {
		ranking := e.RankDivision(div)
		result.Divisions = append(result.Divisions, DivisionStanding{Division: div.Name, Teams: ranking})
		winners = append(winners, ranking[0])
	}

	isWinner := make(map[string]bool, len(winners))
	for _, team := range winners {
		isWinner[team] = true
	}
	var contenders []string
	for _, team := range l.Teams() {
		if !isWinner[team] {
			contenders = append(contenders, team)
		}
	}

	wildCards := fillBestFirst(e, contenders, s.config.BracketSize-len(winners))

	seeded := append(seedBestFirst(e, winners), seedBestFirst(e, wildCards)...)
	inBracket := make(map[string]bool, len(seeded))
	for i, team := range seeded {
		inBracket[team] = true
		result.Championship = append(result.Championship, Seed{
			Seed:           i + 1,
			Team:           team,
			Division:       l.DivisionOf(team),
			DivisionWinner: isWinner[team],
			Bye:            i < s.config.ByeCount,
			Record:         snap.Team(team).Line(),
		})
	}

	var outside []string
	for _, team := range l.Teams() {
		if !inBracket[team] {
			outside = append(outside, team)
		}
	}

	relegated := make(map[string]bool)
	if s.config.Relegation {
		for i, team := range seedWorstFirst(e, fillWorstFirst(e, outside, s.config.RelegationCount)) {
			relegated[team] = true
			result.Relegation = append(result.Relegation, Seed{
				Seed:     i + 1,
				Team:     team,
				Division: l.DivisionOf(team),
				Record:   snap.Team(team).Line(),
			})
		}
	}

	for _, team := range outside {
		if !relegated[team] {
			result.Safe = append(result.Safe, team)
		}
	}

	if groups := tiebreak.GroupByLine(snap, l.Teams()); len(groups) > 0 {
		result.LastPlace = e.Eliminate(groups[len(groups)-1])
	}

	return result, nil
}

// fillBestFirst takes up to slots teams, best line first. A line group that
// does not fit is cut down with the wild-card order.
func fillBestFirst(e *tiebreak.Engine, teams []string, slots int) []string {
	var picked []string
	for _, group := range tiebreak.GroupByLine(e.Snapshot(), teams) {
		left := slots - len(picked)
		if left <= 0 {
			break
		}
		if len(group) <= left {
			picked = append(picked, group...)
			continue
		}
		picked = append(picked, e.WildCardOrder(group)[:left]...)
	}
	return picked
}

// fillWorstFirst takes up to slots teams, worst line first. When a line
// group does not fit, the teams that lose the wild-card order are taken.
func fillWorstFirst(e *tiebreak.Engine, teams []string, slots int) []string {
	groups := tiebreak.GroupByLine(e.Snapshot(), teams)
	var picked []string
	for i := len(groups) - 1; i >= 0; i-- {
		left := slots - len(picked)
		if left <= 0 {
			break
		}
		group := groups[i]
		if len(group) <= left {
			picked = append(picked, group...)
			continue
		}
		ordered := e.WildCardOrder(group)
		picked = append(picked, ordered[len(ordered)-left:]...)
	}
	return picked
}

// seedBestFirst orders teams by line, best first, breaking ties with the
// wild-card order.
func seedBestFirst(e *tiebreak.Engine, teams []string) []string {
	var seeded []string
	for _, group := range tiebreak.GroupByLine(e.Snapshot(), teams) {
		seeded = append(seeded, e.WildCardOrder(group)...)
	}
	return seeded
}

// seedWorstFirst orders teams by line, worst first. Within a tied line the
// wild-card order is reversed so the team that loses the tiebreak is seeded
// first.
func seedWorstFirst(e *tiebreak.Engine, teams []string) []string {
	groups := tiebreak.GroupByLine(e.Snapshot(), teams)
	var seeded []string
	for i := len(groups) - 1; i >= 0; i-- {
		ordered := e.WildCardOrder(groups[i])
		for j := len(ordered) - 1; j >= 0; j-- {
			seeded = append(seeded, ordered[j])
		}
	}
	return seeded
}
