package qualify

import (
	"testing"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	wins, losses int
	points       float64
}

func twelveTeamLeague(t *testing.T) *league.League {
	t.Helper()
	l, err := league.New("Twelve", []league.Division{
		{Name: "North", Teams: []string{"N1", "N2", "N3", "N4"}},
		{Name: "South", Teams: []string{"S1", "S2", "S3", "S4"}},
		{Name: "West", Teams: []string{"W1", "W2", "W3", "W4"}},
	})
	require.NoError(t, err)
	return l
}

func snapshotWith(t *testing.T, lines map[string]line, tweak func(map[string]league.TeamRecord)) *league.Snapshot {
	t.Helper()
	records := make(map[string]league.TeamRecord, len(lines))
	for team, ln := range lines {
		records[team] = league.TeamRecord{
			Record: league.Record{Wins: ln.wins, Losses: ln.losses, PointsFor: ln.points},
		}
	}
	if tweak != nil {
		tweak(records)
	}
	snap, err := league.NewSnapshot(twelveTeamLeague(t), records)
	require.NoError(t, err)
	return snap
}

func baseLines() map[string]line {
	return map[string]line{
		"N1": {11, 3, 1500}, "N2": {9, 5, 1400}, "N3": {5, 9, 1200}, "N4": {3, 11, 900},
		"S1": {10, 4, 1450}, "S2": {8, 6, 1350}, "S3": {6, 8, 1250}, "S4": {4, 10, 1000},
		"W1": {12, 2, 1600}, "W2": {7, 7, 1300}, "W3": {6, 8, 1100}, "W4": {2, 12, 800},
	}
}

func teams(seeds []Seed) []string {
	var names []string
	for _, s := range seeds {
		names = append(names, s.Team)
	}
	return names
}

func TestSelect_Brackets(t *testing.T) {
	snap := snapshotWith(t, baseLines(), nil)
	result, err := NewSelector(DefaultConfig(), nil).Select(snap, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"W1", "N1", "S1", "N2", "S2", "W2"}, teams(result.Championship))
	for i, seed := range result.Championship {
		assert.Equal(t, i+1, seed.Seed)
		assert.Equal(t, i < 3, seed.DivisionWinner, seed.Team)
		assert.Equal(t, i < 2, seed.Bye, seed.Team)
	}
	assert.Equal(t, league.Line{Wins: 12, Losses: 2}, result.Championship[0].Record)
	assert.Equal(t, "West", result.Championship[0].Division)

	assert.Equal(t, []string{"W4", "N4", "S4", "N3"}, teams(result.Relegation))
	assert.Equal(t, []string{"S3", "W3"}, result.Safe)
	assert.Equal(t, "W4", result.LastPlace)

	require.Len(t, result.Divisions, 3)
	assert.Equal(t, DivisionStanding{Division: "North", Teams: []string{"N1", "N2", "N3", "N4"}}, result.Divisions[0])
}

func TestSelect_EveryTeamLandsOnce(t *testing.T) {
	snap := snapshotWith(t, baseLines(), nil)
	result, err := NewSelector(DefaultConfig(), nil).Select(snap, nil)
	require.NoError(t, err)

	for _, team := range snap.League().Teams() {
		count := 0
		if result.InChampionship(team) {
			count++
		}
		if result.InRelegation(team) {
			count++
		}
		for _, safe := range result.Safe {
			if safe == team {
				count++
			}
		}
		assert.Equal(t, 1, count, team)
	}
}

func TestSelect_Idempotent(t *testing.T) {
	snap := snapshotWith(t, baseLines(), nil)
	selector := NewSelector(DefaultConfig(), nil)

	first, err := selector.Select(snap, nil)
	require.NoError(t, err)
	second, err := selector.Select(snap, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSelect_WildCardCutKeepsDivisionOrder(t *testing.T) {
	lines := baseLines()
	lines["S2"] = line{8, 6, 1200}
	lines["W2"] = line{8, 6, 1300}
	lines["S3"] = line{8, 6, 1400}
	snap := snapshotWith(t, lines, func(records map[string]league.TeamRecord) {
		s2, s3 := records["S2"], records["S3"]
		s2.DivisionWins, s2.DivisionLosses = 4, 2
		s3.DivisionWins, s3.DivisionLosses = 2, 4
		records["S2"], records["S3"] = s2, s3
	})

	result, err := NewSelector(DefaultConfig(), nil).Select(snap, nil)
	require.NoError(t, err)

	// S3 outscored both but trails S2 on division record, so S2 takes the last spot
	assert.Equal(t, []string{"W1", "N1", "S1", "N2", "W2", "S2"}, teams(result.Championship))
	assert.False(t, result.InChampionship("S3"))
}

func TestSelect_RelegationTiebreakWinnerStaysSafe(t *testing.T) {
	lines := baseLines()
	lines["N3"] = line{6, 8, 1200}
	lines["S3"] = line{6, 8, 1100}
	lines["W3"] = line{6, 8, 1000}
	lines["S4"] = line{3, 11, 800}
	snap := snapshotWith(t, lines, nil)

	result, err := NewSelector(DefaultConfig(), nil).Select(snap, nil)
	require.NoError(t, err)

	// N4 and S4 tie at 3-11; S4 loses the tiebreak on points and is seeded worse
	assert.Equal(t, []string{"W4", "S4", "N4", "W3"}, teams(result.Relegation))
	assert.Equal(t, []string{"N3", "S3"}, result.Safe)
}

func TestSelect_RelegationDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relegation = false
	snap := snapshotWith(t, baseLines(), nil)

	result, err := NewSelector(cfg, nil).Select(snap, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Relegation)
	assert.Len(t, result.Safe, 6)
}

func TestSelect_NoGamesPlayed(t *testing.T) {
	snap, err := league.NewSnapshot(twelveTeamLeague(t), nil)
	require.NoError(t, err)

	result, err := NewSelector(DefaultConfig(), nil).Select(snap, nil)
	require.NoError(t, err)

	assert.Len(t, result.Championship, 6)
	assert.Len(t, result.Relegation, 4)
	assert.Len(t, result.Safe, 2)
	assert.Equal(t, []string{"N1", "S1", "W1"}, teams(result.Championship[:3]))
}

func TestConfig_Validate(t *testing.T) {
	l := twelveTeamLeague(t)

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"bracket smaller than division count", Config{BracketSize: 2, Relegation: false}, true},
		{"bracket larger than league", Config{BracketSize: 13}, true},
		{"too many byes", Config{BracketSize: 6, ByeCount: 7}, true},
		{"too many relegation slots", Config{BracketSize: 6, RelegationCount: 7, Relegation: true}, true},
		{"relegation with no slots", Config{BracketSize: 6, Relegation: true}, true},
		{"every team in a bracket", Config{BracketSize: 8, RelegationCount: 4, Relegation: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate(l)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSelect_ReportsConfigError(t *testing.T) {
	snap := snapshotWith(t, baseLines(), nil)

	_, err := NewSelector(Config{BracketSize: 20}, nil).Select(snap, nil)
	assert.ErrorIs(t, err, ErrConfig)
}
