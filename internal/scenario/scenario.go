package scenario

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/qualify"
)

var (
	// ErrZeroWeight is returned when every scenario has zero probability
	ErrZeroWeight = errors.New("scenario weights sum to zero")
	// ErrTooManyGames is returned when exhaustive enumeration is asked to
	// cover more games than it is configured for
	ErrTooManyGames = errors.New("too many unplayed games to enumerate")
	// ErrUnknownMatchup is returned when a selection names no unplayed matchup
	ErrUnknownMatchup = errors.New("no such unplayed matchup")
)

// Input is everything a strategy needs for one run. The snapshot is never
// modified.
type Input struct {
	Snapshot *league.Snapshot
	Matchups []league.Matchup
	Rules    []league.OverrideRule
}

// Strategy turns unplayed matchups into qualification probabilities
type Strategy interface {
	Name() string
	Run(ctx context.Context, in Input) (*Summary, error)
}

// evaluate applies every result to a fresh copy of the base snapshot, then
// runs qualification on the complete copy.
func evaluate(selector *qualify.Selector, in Input, results []league.GameResult) (*qualify.Result, error) {
	snap := in.Snapshot.Apply(results)
	return selector.Select(snap, league.ActiveOverrides(in.Rules, results))
}

func workerCount(requested, units int) int {
	n := requested
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > units {
		n = units
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Selection picks the winner of one unplayed matchup for a deterministic
// evaluation. A nil Margin uses the evaluation's default margin.
type Selection struct {
	Away   string      `json:"away_team"`
	Home   string      `json:"home_team"`
	Winner league.Side `json:"winner"`
	Margin *float64    `json:"margin,omitempty"`
}

// Outcome is a single deterministic evaluation
type Outcome struct {
	Games     []league.GameResult `json:"games"`
	Overrides []league.Override   `json:"overrides,omitempty"`
	Result    *qualify.Result     `json:"result"`
}

// Evaluate decides every matchup, using selections where given and a home
// win by defaultMargin otherwise, and returns the resulting qualification.
func Evaluate(selector *qualify.Selector, in Input, selections []Selection, defaultMargin float64) (*Outcome, error) {
	chosen := make(map[string]Selection, len(selections))
	for _, s := range selections {
		id := league.Matchup{Away: s.Away, Home: s.Home}.ID()
		if _, dup := chosen[id]; dup {
			return nil, fmt.Errorf("matchup %s selected more than once", id)
		}
		chosen[id] = s
	}

	results := make([]league.GameResult, 0, len(in.Matchups))
	for _, m := range in.Matchups {
		winner, margin := league.Home, defaultMargin
		if s, ok := chosen[m.ID()]; ok {
			if s.Winner != "" {
				winner = s.Winner
			}
			if s.Margin != nil {
				margin = *s.Margin
			}
			delete(chosen, m.ID())
		}
		if winner == league.Tie {
			margin = 0
		}
		results = append(results, m.Result(winner, 0, 0, margin))
	}
	if len(chosen) > 0 {
		unknown := make([]string, 0, len(chosen))
		for id := range chosen {
			unknown = append(unknown, id)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownMatchup, strings.Join(unknown, ", "))
	}

	result, err := evaluate(selector, in, results)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Games:     results,
		Overrides: league.ActiveOverrides(in.Rules, results).List(),
		Result:    result,
	}, nil
}
