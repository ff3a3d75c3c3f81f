package performance

import (
	"math"
	"sort"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"gonum.org/v1/gonum/stat"
)

// DefaultSigma is the scoring spread assumed for a team with fewer than two games
const DefaultSigma = 10.0

// Adjustments converts scores between home, away and neutral sites
type Adjustments struct {
	HomeAverage    float64 `json:"home_avg"`
	AwayAverage    float64 `json:"away_avg"`
	NeutralAverage float64 `json:"neutral_avg"`
	HomeToNeutral  float64 `json:"home_to_neutral"`
	AwayToNeutral  float64 `json:"away_to_neutral"`
	NeutralToHome  float64 `json:"neutral_to_home"`
	NeutralToAway  float64 `json:"neutral_to_away"`
}

// Distribution is a team's neutral-site scoring distribution
type Distribution struct {
	Mean  float64 `json:"mean"`
	Sigma float64 `json:"sigma"`
	Games int     `json:"games"`
}

// Model holds everything needed to sample scores for a league
type Model struct {
	Adjustments Adjustments             `json:"adjustments"`
	Teams       map[string]Distribution `json:"teams"`
}

// Build derives a model from played games. Teams with fewer than two games
// fall back to the league neutral average and DefaultSigma.
func Build(l *league.League, games []league.PlayedGame) *Model {
	adj := adjustments(games)

	scores := make(map[string][]float64, len(l.Teams()))
	for _, g := range games {
		scores[g.Home] = append(scores[g.Home], g.HomeScore*adj.HomeToNeutral)
		scores[g.Away] = append(scores[g.Away], g.AwayScore*adj.AwayToNeutral)
	}

	m := &Model{
		Adjustments: adj,
		Teams:       make(map[string]Distribution, len(l.Teams())),
	}
	for _, team := range l.Teams() {
		neutral := scores[team]
		if len(neutral) < 2 {
			m.Teams[team] = Distribution{Mean: adj.NeutralAverage, Sigma: DefaultSigma, Games: len(neutral)}
			continue
		}
		mean, sigma := stat.MeanStdDev(neutral, nil)
		m.Teams[team] = Distribution{Mean: mean, Sigma: sigma, Games: len(neutral)}
	}
	return m
}

func adjustments(games []league.PlayedGame) Adjustments {
	home := make([]float64, 0, len(games))
	away := make([]float64, 0, len(games))
	for _, g := range games {
		home = append(home, g.HomeScore)
		away = append(away, g.AwayScore)
	}

	var adj Adjustments
	if len(games) > 0 {
		adj.HomeAverage = stat.Mean(home, nil)
		adj.AwayAverage = stat.Mean(away, nil)
	}
	adj.NeutralAverage = (adj.HomeAverage + adj.AwayAverage) / 2
	adj.HomeToNeutral = ratio(adj.NeutralAverage, adj.HomeAverage)
	adj.AwayToNeutral = ratio(adj.NeutralAverage, adj.AwayAverage)
	adj.NeutralToHome = ratio(1, adj.HomeToNeutral)
	adj.NeutralToAway = ratio(1, adj.AwayToNeutral)
	return adj
}

// ratio divides, returning 1 when the denominator is not positive
func ratio(num, den float64) float64 {
	if den <= 0 || math.IsNaN(den) {
		return 1
	}
	return num / den
}

// Distribution returns the team's distribution, falling back to the league
// neutral average for teams the model has not seen.
func (m *Model) Distribution(team string) Distribution {
	if d, ok := m.Teams[team]; ok {
		return d
	}
	return Distribution{Mean: m.Adjustments.NeutralAverage, Sigma: DefaultSigma}
}

// HomeScore converts a neutral-site score into a home score
func (m *Model) HomeScore(neutral float64) float64 {
	return math.Max(0, neutral) * m.Adjustments.NeutralToHome
}

// AwayScore converts a neutral-site score into an away score
func (m *Model) AwayScore(neutral float64) float64 {
	return math.Max(0, neutral) * m.Adjustments.NeutralToAway
}

// TeamNames returns the modelled teams sorted by name
func (m *Model) TeamNames() []string {
	names := make([]string, 0, len(m.Teams))
	for name := range m.Teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
