package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/logger"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/qualify"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxGames bounds exhaustive enumeration to 2^16 scenarios
	DefaultMaxGames = 16
	// MaxGamesLimit is the largest MaxGames honoured; larger values are capped
	MaxGamesLimit = 24
	// DefaultAssumedMargin is the winning margin exhaustive scenarios assume
	// when checking margin-dependent override rules
	DefaultAssumedMargin = 5.0
)

// Exhaustive enumerates every home/away combination of the unplayed games and
// weights each scenario by the product of its game probabilities.
//
// AssumedMargin is the margin every scenario's winner is credited with when
// override rules are checked. Nil means DefaultAssumedMargin; zero only
// satisfies rules without a minimum margin.
type Exhaustive struct {
	Selector      *qualify.Selector
	MaxGames      int
	AssumedMargin *float64
	Workers       int
	Logger        logrus.FieldLogger
}

// Name identifies the strategy
func (x *Exhaustive) Name() string {
	return "exhaustive"
}

// Run enumerates all 2^k scenarios. Workers own contiguous ranges of the
// scenario space and their tallies are merged after all of them finish.
func (x *Exhaustive) Run(ctx context.Context, in Input) (*Summary, error) {
	log := logger.OrDiscard(x.Logger)
	maxGames := x.MaxGames
	if maxGames <= 0 {
		maxGames = DefaultMaxGames
	}
	maxGames = min(maxGames, MaxGamesLimit)
	k := len(in.Matchups)
	if k > maxGames {
		return nil, fmt.Errorf("%w: %d games, limit %d", ErrTooManyGames, k, maxGames)
	}

	runID := uuid.NewString()
	start := time.Now()
	total := 1 << k
	workers := workerCount(x.Workers, total)
	chunk := (total + workers - 1) / workers

	margin := x.margin()
	probs := make([]float64, k)
	for i, m := range in.Matchups {
		probs[i] = m.AwayProbability()
	}

	tallies := make([]*Tally, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, min((w+1)*chunk, total)
		g.Go(func() error {
			t := newTally(in.Snapshot.League())
			results := make([]league.GameResult, k)
			for mask := lo; mask < hi; mask++ {
				if mask&0xff == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				weight := 1.0
				for i, m := range in.Matchups {
					if mask&(1<<i) != 0 {
						weight *= probs[i]
						results[i] = m.Result(league.Away, 0, 0, margin)
					} else {
						weight *= 1 - probs[i]
						results[i] = m.Result(league.Home, 0, 0, margin)
					}
				}
				if weight == 0 {
					continue
				}
				r, err := evaluate(x.Selector, in, results)
				if err != nil {
					return err
				}
				t.Add(r, weight)
			}
			tallies[w] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := newTally(in.Snapshot.League())
	for _, t := range tallies {
		merged.Merge(t)
	}
	summary, err := merged.summarize(in.Snapshot)
	if err != nil {
		return nil, err
	}
	summary.RunID = runID
	summary.Strategy = x.Name()
	summary.Games = k

	log.WithFields(logrus.Fields{
		"run_id":    runID,
		"strategy":  summary.Strategy,
		"games":     k,
		"scenarios": summary.Scenarios,
		"workers":   workers,
		"duration":  time.Since(start).String(),
	}).Info("Scenario run complete")

	return summary, nil
}

func (x *Exhaustive) margin() float64 {
	if x.AssumedMargin != nil {
		return max(*x.AssumedMargin, 0)
	}
	return DefaultAssumedMargin
}
