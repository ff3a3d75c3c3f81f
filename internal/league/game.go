package league

import (
	"fmt"
	"math"
)

// Side identifies which team in a matchup won
type Side string

const (
	Away Side = "away"
	Home Side = "home"
	Tie  Side = "tie"
)

// ParseSide converts user input into a Side
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Away, Home, Tie:
		return Side(s), nil
	}
	return "", fmt.Errorf("invalid winner %q: must be away, home or tie", s)
}

// DefaultAwayProbability is used for matchups with no probability data
const DefaultAwayProbability = 0.5

// Matchup is a game that has not been played yet
type Matchup struct {
	Away         string   `json:"away_team" yaml:"away_team"`
	Home         string   `json:"home_team" yaml:"home_team"`
	DivisionGame bool     `json:"is_division_game" yaml:"is_division_game"`
	AwayWinProb  *float64 `json:"away_win_pct,omitempty" yaml:"away_win_pct,omitempty"`
}

// ID returns a stable identifier for the matchup
func (m Matchup) ID() string {
	return m.Away + " at " + m.Home
}

// AwayProbability returns the away side's win probability, clamped to [0, 1]
func (m Matchup) AwayProbability() float64 {
	if m.AwayWinProb == nil || math.IsNaN(*m.AwayWinProb) {
		return DefaultAwayProbability
	}
	return math.Min(1, math.Max(0, *m.AwayWinProb))
}

// HasProbability reports whether the matchup carries an explicit probability
func (m Matchup) HasProbability() bool {
	return m.AwayWinProb != nil
}

// WithProbability returns a copy of the matchup with the away-win probability set
func (m Matchup) WithProbability(p float64) Matchup {
	m.AwayWinProb = &p
	return m
}

// Result builds the outcome of the matchup
func (m Matchup) Result(winner Side, awayScore, homeScore, margin float64) GameResult {
	return GameResult{
		Matchup:   m,
		Winner:    winner,
		AwayScore: awayScore,
		HomeScore: homeScore,
		Margin:    margin,
	}
}

// PlayedGame is a completed game from the season history
type PlayedGame struct {
	Week         int     `json:"week,omitempty" yaml:"week,omitempty"`
	Away         string  `json:"away_team" yaml:"away_team"`
	Home         string  `json:"home_team" yaml:"home_team"`
	AwayScore    float64 `json:"away_score" yaml:"away_score"`
	HomeScore    float64 `json:"home_score" yaml:"home_score"`
	DivisionGame bool    `json:"is_division_game,omitempty" yaml:"is_division_game,omitempty"`
}

// Result converts the played game into a GameResult
func (g PlayedGame) Result() GameResult {
	winner := Tie
	switch {
	case g.AwayScore > g.HomeScore:
		winner = Away
	case g.HomeScore > g.AwayScore:
		winner = Home
	}
	return GameResult{
		Matchup:   Matchup{Away: g.Away, Home: g.Home, DivisionGame: g.DivisionGame},
		Winner:    winner,
		AwayScore: g.AwayScore,
		HomeScore: g.HomeScore,
		Margin:    math.Abs(g.AwayScore - g.HomeScore),
	}
}

// GameResult is a decided game. Scores are zero when only the winner is
// known; Margin is still set so margin-dependent rules can fire.
type GameResult struct {
	Matchup
	Winner    Side    `json:"winner"`
	AwayScore float64 `json:"away_score,omitempty"`
	HomeScore float64 `json:"home_score,omitempty"`
	Margin    float64 `json:"margin"`
}
