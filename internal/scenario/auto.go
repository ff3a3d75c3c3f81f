package scenario

import (
	"context"
	"errors"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
)

// Auto picks exhaustive enumeration when it is small enough and every game
// has a probability (or there is no model to sample from), and Monte Carlo
// otherwise.
type Auto struct {
	Exhaustive *Exhaustive
	MonteCarlo *MonteCarlo
}

// Name identifies the strategy
func (a *Auto) Name() string {
	return "auto"
}

// Choose returns the strategy Run would use for in
func (a *Auto) Choose(in Input) (Strategy, error) {
	if a.Exhaustive == nil && a.MonteCarlo == nil {
		return nil, errors.New("auto strategy has nothing to choose from")
	}
	if a.Exhaustive == nil {
		return a.MonteCarlo, nil
	}
	maxGames := a.Exhaustive.MaxGames
	if maxGames <= 0 {
		maxGames = DefaultMaxGames
	}
	fits := len(in.Matchups) <= min(maxGames, MaxGamesLimit)
	if a.MonteCarlo == nil || a.MonteCarlo.Model == nil {
		return a.Exhaustive, nil
	}
	if fits && allHaveProbability(in.Matchups) {
		return a.Exhaustive, nil
	}
	return a.MonteCarlo, nil
}

// Run delegates to the chosen strategy
func (a *Auto) Run(ctx context.Context, in Input) (*Summary, error) {
	s, err := a.Choose(in)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, in)
}

func allHaveProbability(matchups []league.Matchup) bool {
	for _, m := range matchups {
		if !m.HasProbability() {
			return false
		}
	}
	return true
}
