package performance

import (
	"fmt"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
)

// Pair is an ordered (team, opponent) key
type Pair struct {
	Team     string
	Opponent string
}

// MatrixRecord is one row of a power matrix: how a team would have fared
// against an opponent over the season
type MatrixRecord struct {
	Team     string `json:"team" yaml:"team"`
	Opponent string `json:"opponent" yaml:"opponent"`
	Wins     int    `json:"wins" yaml:"wins"`
	Losses   int    `json:"losses" yaml:"losses"`
	Ties     int    `json:"ties" yaml:"ties"`
}

// Matrix maps a team pair to the team's matrix record against the opponent
type Matrix map[Pair]league.Line

// NewMatrix builds a matrix from explicit rows
func NewMatrix(l *league.League, rows []MatrixRecord) (Matrix, error) {
	m := make(Matrix, len(rows))
	for _, r := range rows {
		if !l.Has(r.Team) || !l.Has(r.Opponent) {
			return nil, fmt.Errorf("%w: matrix row %s vs %s", league.ErrUnknownTeam, r.Team, r.Opponent)
		}
		m[Pair{r.Team, r.Opponent}] = league.Line{Wins: r.Wins, Losses: r.Losses, Ties: r.Ties}
	}
	return m, nil
}

// AllPlayMatrix compares every team's weekly score with every other team's
// score that week, as if everyone played everyone each week.
func AllPlayMatrix(games []league.PlayedGame) Matrix {
	weekly := make(map[int]map[string]float64)
	for _, g := range games {
		scores, ok := weekly[g.Week]
		if !ok {
			scores = make(map[string]float64)
			weekly[g.Week] = scores
		}
		scores[g.Away] = g.AwayScore
		scores[g.Home] = g.HomeScore
	}

	m := make(Matrix)
	for _, scores := range weekly {
		for team, score := range scores {
			for opp, oppScore := range scores {
				if team == opp {
					continue
				}
				key := Pair{team, opp}
				line := m[key]
				switch {
				case score > oppScore:
					line.Wins++
				case score < oppScore:
					line.Losses++
				default:
					line.Ties++
				}
				m[key] = line
			}
		}
	}
	return m
}

// AwayWinProbability estimates the away team's chance of beating the home
// team. It uses the home team's matrix record against the away team, or the
// away team's record against the home team, and 0.5 when neither exists.
func (m Matrix) AwayWinProbability(away, home string) float64 {
	if rec, ok := m[Pair{home, away}]; ok {
		if total := rec.Wins + rec.Losses + rec.Ties; total > 0 {
			return (float64(rec.Losses) + 0.5*float64(rec.Ties)) / float64(total)
		}
	}
	if rec, ok := m[Pair{away, home}]; ok {
		if total := rec.Wins + rec.Losses + rec.Ties; total > 0 {
			return (float64(rec.Wins) + 0.5*float64(rec.Ties)) / float64(total)
		}
	}
	return league.DefaultAwayProbability
}

// FillProbabilities returns a copy of matchups where every matchup without an
// explicit probability takes one from the matrix
func (m Matrix) FillProbabilities(matchups []league.Matchup) []league.Matchup {
	filled := make([]league.Matchup, len(matchups))
	for i, mu := range matchups {
		if !mu.HasProbability() && len(m) > 0 {
			mu = mu.WithProbability(m.AwayWinProbability(mu.Away, mu.Home))
		}
		filled[i] = mu
	}
	return filled
}
