package tiebreak

import (
	"testing"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshot(t *testing.T, divisions []league.Division, records map[string]league.TeamRecord) *league.Snapshot {
	t.Helper()
	l, err := league.New("Test League", divisions)
	require.NoError(t, err)
	snap, err := league.NewSnapshot(l, records)
	require.NoError(t, err)
	return snap
}

func headToHeadPointsSnapshot(t *testing.T) *league.Snapshot {
	return newSnapshot(t,
		[]league.Division{{Name: "North", Teams: []string{"Team A", "Team B"}}},
		map[string]league.TeamRecord{
			"Team A": {
				Record:       league.Record{Wins: 9, Losses: 5, PointsFor: 1500},
				DivisionWins: 3, DivisionLosses: 2,
				MatrixRank: 2,
				HeadToHead: map[string]league.Record{"Team B": {Wins: 1, Losses: 1, PointsFor: 120, PointsAgainst: 115}},
			},
			"Team B": {
				Record:       league.Record{Wins: 9, Losses: 5, PointsFor: 1500},
				DivisionWins: 3, DivisionLosses: 2,
				MatrixRank: 1,
				HeadToHead: map[string]league.Record{"Team A": {Wins: 1, Losses: 1, PointsFor: 115, PointsAgainst: 120}},
			},
		})
}

func TestDivisionOrder_HeadToHeadPointsDecide(t *testing.T) {
	e := New(headToHeadPointsSnapshot(t), nil, nil)

	assert.Equal(t, []string{"Team A", "Team B"}, e.DivisionOrder([]string{"Team A", "Team B"}))
	assert.Equal(t, []string{"Team A", "Team B"}, e.DivisionOrder([]string{"Team B", "Team A"}))
}

func TestDivisionOrder_OverrideReplacesHeadToHeadPoints(t *testing.T) {
	var overrides league.Overrides
	overrides.Set(league.Override{
		Stage:         string(HeadToHeadPoints),
		Team:          "Team B",
		Opponent:      "Team A",
		TeamValue:     130,
		OpponentValue: 100,
	})
	e := New(headToHeadPointsSnapshot(t), overrides, nil)

	assert.Equal(t, []string{"Team B", "Team A"}, e.DivisionOrder([]string{"Team A", "Team B"}))
}

func TestDivisionOrder_AlphabeticalFallback(t *testing.T) {
	identical := league.TeamRecord{
		Record:     league.Record{Wins: 7, Losses: 7, PointsFor: 1400},
		MatrixRank: 5,
	}
	snap := newSnapshot(t,
		[]league.Division{{Name: "South", Teams: []string{"Zebras", "Aardvarks"}}},
		map[string]league.TeamRecord{"Zebras": identical, "Aardvarks": identical})
	e := New(snap, nil, nil)

	assert.Equal(t, []string{"Aardvarks", "Zebras"}, e.DivisionOrder([]string{"Zebras", "Aardvarks"}))
}

func TestDivisionOrder_ThreeTeamsPeelHeadToHeadLeader(t *testing.T) {
	snap := newSnapshot(t,
		[]league.Division{{Name: "East", Teams: []string{"A", "B", "C"}}},
		map[string]league.TeamRecord{
			"A": {
				Record:     league.Record{Wins: 8, Losses: 6},
				HeadToHead: map[string]league.Record{"B": {Wins: 1}, "C": {Wins: 1}},
			},
			"B": {
				Record:       league.Record{Wins: 8, Losses: 6},
				DivisionWins: 4, DivisionLosses: 2,
				HeadToHead: map[string]league.Record{"A": {Losses: 1}, "C": {Wins: 1, Losses: 1}},
			},
			"C": {
				Record:       league.Record{Wins: 8, Losses: 6},
				DivisionWins: 3, DivisionLosses: 3,
				HeadToHead: map[string]league.Record{"A": {Losses: 1}, "B": {Wins: 1, Losses: 1}},
			},
		})
	e := New(snap, nil, nil)

	assert.Equal(t, []string{"A", "B", "C"}, e.DivisionOrder([]string{"C", "B", "A"}))
}

func TestDivisionOrder_SharedMatrixRankFallsToAlphabetical(t *testing.T) {
	rec := func(rank int) league.TeamRecord {
		return league.TeamRecord{Record: league.Record{Wins: 6, Losses: 8, PointsFor: 1200}, MatrixRank: rank}
	}
	snap := newSnapshot(t,
		[]league.Division{{Name: "West", Teams: []string{"D", "C", "B", "A"}}},
		map[string]league.TeamRecord{"D": rec(1), "C": rec(1), "B": rec(3), "A": rec(4)})
	e := New(snap, nil, nil)

	assert.Equal(t, []string{"A", "B", "C", "D"}, e.DivisionOrder([]string{"D", "C", "B", "A"}))
}

func TestDivisionOrder_UniqueMatrixRankPeels(t *testing.T) {
	rec := func(rank int) league.TeamRecord {
		return league.TeamRecord{Record: league.Record{Wins: 6, Losses: 8, PointsFor: 1200}, MatrixRank: rank}
	}
	snap := newSnapshot(t,
		[]league.Division{{Name: "West", Teams: []string{"D", "C", "B"}}},
		map[string]league.TeamRecord{"D": rec(1), "C": rec(2), "B": rec(3)})
	e := New(snap, nil, nil)

	assert.Equal(t, []string{"D", "C", "B"}, e.DivisionOrder([]string{"B", "C", "D"}))
}

func crossDivisionSnapshot(t *testing.T) *league.Snapshot {
	return newSnapshot(t,
		[]league.Division{
			{Name: "East", Teams: []string{"E1", "E2"}},
			{Name: "West", Teams: []string{"W1"}},
		},
		map[string]league.TeamRecord{
			"E1": {
				Record:     league.Record{Wins: 10, Losses: 4, PointsFor: 1500},
				HeadToHead: map[string]league.Record{"E2": {Wins: 1}},
			},
			"E2": {
				Record:     league.Record{Wins: 10, Losses: 4, PointsFor: 1700},
				HeadToHead: map[string]league.Record{"E1": {Losses: 1}, "W1": {Wins: 1}},
			},
			"W1": {
				Record:     league.Record{Wins: 10, Losses: 4, PointsFor: 1600},
				HeadToHead: map[string]league.Record{"E2": {Losses: 1}},
			},
		})
}

func TestWildCardOrder_PreservesDivisionOrder(t *testing.T) {
	e := New(crossDivisionSnapshot(t), nil, nil)

	// E2 has the most points but lost to E1, so it cannot jump ahead of E1
	assert.Equal(t, []string{"W1", "E1", "E2"}, e.WildCardOrder([]string{"E2", "W1", "E1"}))
}

func TestWildCardOrder_SingleDivisionDelegates(t *testing.T) {
	e := New(crossDivisionSnapshot(t), nil, nil)

	assert.Equal(t, []string{"E1", "E2"}, e.WildCardOrder([]string{"E2", "E1"}))
}

func TestEliminate(t *testing.T) {
	e := New(crossDivisionSnapshot(t), nil, nil)

	assert.Equal(t, "W1", e.Eliminate([]string{"E1", "E2", "W1"}))
	assert.Equal(t, "", e.Eliminate(nil))
}

func TestOrder_AntiSymmetric(t *testing.T) {
	snaps := map[string]*league.Snapshot{
		"head to head points": headToHeadPointsSnapshot(t),
		"cross division":      crossDivisionSnapshot(t),
	}

	for name, snap := range snaps {
		t.Run(name, func(t *testing.T) {
			e := New(snap, nil, nil)
			teams := snap.League().Teams()
			for _, a := range teams {
				for _, b := range teams {
					if a == b {
						continue
					}
					forward := e.WildCardOrder([]string{a, b})
					backward := e.WildCardOrder([]string{b, a})
					assert.Equal(t, forward, backward, "%s vs %s", a, b)
					assert.Len(t, forward, 2)
					assert.NotEqual(t, forward[0], forward[1])
				}
			}
		})
	}
}

func TestRankDivision(t *testing.T) {
	snap := newSnapshot(t,
		[]league.Division{{Name: "North", Teams: []string{"Low", "Team B", "High", "Team A"}}},
		map[string]league.TeamRecord{
			"Low":  {Record: league.Record{Wins: 3, Losses: 11}},
			"High": {Record: league.Record{Wins: 12, Losses: 2}},
			"Team A": {
				Record:       league.Record{Wins: 9, Losses: 5, PointsFor: 1500},
				DivisionWins: 3, DivisionLosses: 2,
				HeadToHead: map[string]league.Record{"Team B": {Wins: 1, Losses: 1, PointsFor: 120}},
			},
			"Team B": {
				Record:       league.Record{Wins: 9, Losses: 5, PointsFor: 1500},
				DivisionWins: 3, DivisionLosses: 2,
				HeadToHead: map[string]league.Record{"Team A": {Wins: 1, Losses: 1, PointsFor: 115}},
			},
		})
	e := New(snap, nil, nil)

	ranking := e.RankDivision(snap.League().Divisions()[0])
	assert.Equal(t, []string{"High", "Team A", "Team B", "Low"}, ranking)
}

func TestGroupByLine(t *testing.T) {
	snap := newSnapshot(t,
		[]league.Division{{Name: "Only", Teams: []string{"A", "B", "C", "D"}}},
		map[string]league.TeamRecord{
			"A": {Record: league.Record{Wins: 7, Losses: 7}},
			"B": {Record: league.Record{Wins: 9, Losses: 5}},
			"C": {Record: league.Record{Wins: 7, Losses: 6, Ties: 1}},
			"D": {Record: league.Record{Wins: 7, Losses: 7}},
		})

	groups := GroupByLine(snap, []string{"A", "B", "C", "D"})
	assert.Equal(t, [][]string{{"B"}, {"C"}, {"A", "D"}}, groups)
}
