package scenario

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/logger"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/performance"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/qualify"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultSimulations is the Monte Carlo sample count
	DefaultSimulations = 10000
	// DefaultSeed seeds the generator when none is given
	DefaultSeed uint64 = 42
	// batchSize is the number of samples drawn from one seeded source
	batchSize = 500
)

// MonteCarlo samples every unplayed game's score from the performance model
// and weights each sample equally.
type MonteCarlo struct {
	Selector    *qualify.Selector
	Model       *performance.Model
	Simulations int
	Seed        uint64
	Workers     int
	Logger      logrus.FieldLogger
}

// Name identifies the strategy
func (mc *MonteCarlo) Name() string {
	return "monte_carlo"
}

// Run draws the configured number of samples. Samples are split into fixed
// batches, batch b drawing from a source seeded with Seed+b, so the result
// depends only on the seed and sample count, not on the worker count.
func (mc *MonteCarlo) Run(ctx context.Context, in Input) (*Summary, error) {
	if mc.Model == nil {
		return nil, errors.New("monte carlo needs a performance model")
	}
	log := logger.OrDiscard(mc.Logger)

	n := mc.Simulations
	if n <= 0 {
		n = DefaultSimulations
	}
	if len(in.Matchups) == 0 {
		n = 1
	}

	runID := uuid.NewString()
	start := time.Now()
	batches := (n + batchSize - 1) / batchSize
	workers := workerCount(mc.Workers, batches)

	tallies := make([]*Tally, batches)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for b := 0; b < batches; b++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src := rand.NewSource(mc.Seed + uint64(b))
			t := newTally(in.Snapshot.League())
			results := make([]league.GameResult, len(in.Matchups))
			for i := b * batchSize; i < min((b+1)*batchSize, n); i++ {
				for j, m := range in.Matchups {
					results[j] = mc.simulate(src, m)
				}
				r, err := evaluate(mc.Selector, in, results)
				if err != nil {
					return err
				}
				t.Add(r, 1)
			}
			tallies[b] = t
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
	seed := mc.Seed
	summary.RunID = runID
	summary.Strategy = mc.Name()
	summary.Games = len(in.Matchups)
	summary.Seed = &seed

	log.WithFields(logrus.Fields{
		"run_id":      runID,
		"strategy":    summary.Strategy,
		"games":       summary.Games,
		"simulations": n,
		"seed":        seed,
		"workers":     workers,
		"duration":    time.Since(start).String(),
	}).Info("Scenario run complete")

	return summary, nil
}

// simulate draws neutral-site scores for both teams, converts them to home
// and away scores and rounds to a tenth of a point. Equal scores go to the
// home team.
func (mc *MonteCarlo) simulate(src rand.Source, m league.Matchup) league.GameResult {
	awayDist := mc.Model.Distribution(m.Away)
	homeDist := mc.Model.Distribution(m.Home)

	awayNeutral := distuv.Normal{Mu: awayDist.Mean, Sigma: awayDist.Sigma, Src: src}.Rand()
	homeNeutral := distuv.Normal{Mu: homeDist.Mean, Sigma: homeDist.Sigma, Src: src}.Rand()

	away := roundTenth(mc.Model.AwayScore(awayNeutral))
	home := roundTenth(mc.Model.HomeScore(homeNeutral))

	winner := league.Home
	if away > home {
		winner = league.Away
	}
	return m.Result(winner, away, home, math.Abs(away-home))
}

func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}
