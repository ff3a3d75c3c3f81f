package league

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLeague(t *testing.T) *League {
	t.Helper()
	l, err := New("Test League", []Division{
		{Name: "Coast", Teams: []string{"Seahawks", "Ravens"}},
		{Name: "Woods", Teams: []string{"Blackhawks", "Bears"}},
	})
	require.NoError(t, err)
	return l
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		divisions []Division
	}{
		{name: "no divisions"},
		{name: "unnamed division", divisions: []Division{{Teams: []string{"A"}}}},
		{name: "empty division", divisions: []Division{{Name: "One"}}},
		{name: "duplicate division", divisions: []Division{{Name: "One", Teams: []string{"A"}}, {Name: "One", Teams: []string{"B"}}}},
		{name: "team in two divisions", divisions: []Division{{Name: "One", Teams: []string{"A"}}, {Name: "Two", Teams: []string{"A"}}}},
		{name: "blank team", divisions: []Division{{Name: "One", Teams: []string{""}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("Broken", tt.divisions)
			assert.Error(t, err)
		})
	}
}

func TestLeague_Lookups(t *testing.T) {
	l := testLeague(t)

	assert.Equal(t, []string{"Seahawks", "Ravens", "Blackhawks", "Bears"}, l.Teams())
	assert.Equal(t, "Woods", l.DivisionOf("Bears"))
	assert.True(t, l.SameDivision("Seahawks", "Ravens"))
	assert.False(t, l.SameDivision("Seahawks", "Bears"))
	assert.False(t, l.SameDivision("Nobody", "Nobody Else"))
}

func TestWinPct(t *testing.T) {
	tests := []struct {
		name               string
		wins, losses, ties int
		expected           float64
	}{
		{"no games", 0, 0, 0, 0},
		{"undefeated", 5, 0, 0, 1},
		{"tie counts half", 1, 0, 1, 0.75},
		{"even", 7, 7, 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WinPct(tt.wins, tt.losses, tt.ties), 1e-12)
		})
	}
}

func TestLine_Better(t *testing.T) {
	assert.True(t, Line{Wins: 9, Losses: 5}.Better(Line{Wins: 8, Losses: 6}))
	assert.True(t, Line{Wins: 8, Losses: 5, Ties: 1}.Better(Line{Wins: 8, Losses: 6}))
	assert.False(t, Line{Wins: 8, Losses: 6}.Better(Line{Wins: 8, Losses: 6}))
	assert.Equal(t, "9-5", Line{Wins: 9, Losses: 5}.String())
	assert.Equal(t, "8-5-1", Line{Wins: 8, Losses: 5, Ties: 1}.String())
}

func TestSnapshot_ApplyIsSymmetricAndCopies(t *testing.T) {
	l := testLeague(t)
	base, err := NewSnapshot(l, nil)
	require.NoError(t, err)

	results := []GameResult{
		Matchup{Away: "Seahawks", Home: "Ravens", DivisionGame: true}.Result(Away, 110, 100, 10),
		Matchup{Away: "Bears", Home: "Blackhawks", DivisionGame: true}.Result(Tie, 90, 90, 0),
		Matchup{Away: "Ravens", Home: "Bears"}.Result(Home, 80, 95, 15),
	}
	next := base.Apply(results)

	seahawks := next.Team("Seahawks")
	ravens := next.Team("Ravens")
	assert.Equal(t, 1, seahawks.Wins)
	assert.Equal(t, 1, seahawks.DivisionWins)
	assert.Equal(t, 2, ravens.Losses)
	assert.Equal(t, 1, ravens.DivisionLosses)
	assert.Equal(t, 1, next.Team("Bears").Ties)
	assert.Equal(t, 1, next.Team("Blackhawks").DivisionTies)

	assert.Equal(t, Record{Wins: 1, PointsFor: 110, PointsAgainst: 100}, next.HeadToHead("Seahawks", "Ravens"))
	assert.Equal(t, Record{Losses: 1, PointsFor: 100, PointsAgainst: 110}, next.HeadToHead("Ravens", "Seahawks"))

	var wins, losses, ties int
	for _, team := range l.Teams() {
		rec := next.Team(team)
		wins += rec.Wins
		losses += rec.Losses
		ties += rec.Ties
	}
	assert.Equal(t, wins, losses)
	assert.Equal(t, 2, ties)

	for _, team := range l.Teams() {
		assert.Zero(t, base.Team(team).Games(), "base snapshot for %s changed", team)
	}
}

func TestSnapshotFromGames(t *testing.T) {
	l := testLeague(t)
	games := []PlayedGame{
		{Week: 1, Away: "Seahawks", Home: "Ravens", AwayScore: 120.5, HomeScore: 101.2},
		{Week: 1, Away: "Bears", Home: "Blackhawks", AwayScore: 88, HomeScore: 97},
		{Week: 2, Away: "Ravens", Home: "Bears", AwayScore: 105, HomeScore: 105},
	}

	snap, err := SnapshotFromGames(l, games, map[string]int{"Ravens": 1, "Seahawks": 2})
	require.NoError(t, err)

	seahawks := snap.Team("Seahawks")
	assert.Equal(t, 1, seahawks.Wins)
	assert.Equal(t, 1, seahawks.DivisionWins)
	assert.Equal(t, 2, seahawks.MatrixRank)
	assert.InDelta(t, 120.5, seahawks.PointsFor, 1e-9)

	ravens := snap.Team("Ravens")
	assert.Equal(t, Line{Losses: 1, Ties: 1}, ravens.Line())
	assert.Zero(t, ravens.DivisionTies, "Ravens at Bears is not a division game")

	_, err = SnapshotFromGames(l, []PlayedGame{{Away: "Ghosts", Home: "Ravens"}}, nil)
	assert.ErrorIs(t, err, ErrUnknownTeam)
	_, err = SnapshotFromGames(l, nil, map[string]int{"Ghosts": 1})
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

func TestNewSnapshot_RejectsUnknownTeams(t *testing.T) {
	l := testLeague(t)

	_, err := NewSnapshot(l, map[string]TeamRecord{"Ghosts": {}})
	assert.ErrorIs(t, err, ErrUnknownTeam)

	_, err = NewSnapshot(l, map[string]TeamRecord{
		"Ravens": {HeadToHead: map[string]Record{"Ghosts": {Wins: 1}}},
	})
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

func TestSnapshot_MissingDataIsZero(t *testing.T) {
	snap, err := NewSnapshot(testLeague(t), nil)
	require.NoError(t, err)

	assert.Equal(t, Record{}, snap.HeadToHead("Ravens", "Bears"))
	assert.Equal(t, Record{}, snap.HeadToHead("Ghosts", "Bears"))
	assert.Zero(t, snap.StrengthOfSchedule("Ravens"))
}

func TestSnapshot_StrengthOfScheduleWeightsByGames(t *testing.T) {
	snap, err := NewSnapshot(testLeague(t), map[string]TeamRecord{
		"Seahawks": {
			Record:     Record{Wins: 3},
			HeadToHead: map[string]Record{"Ravens": {Wins: 2}, "Bears": {Wins: 1}},
		},
		"Ravens":     {Record: Record{Wins: 1, Losses: 3}},
		"Bears":      {Record: Record{Wins: 3, Losses: 1}},
		"Blackhawks": {Record: Record{Wins: 4}},
	})
	require.NoError(t, err)

	// Ravens twice (2-6 weighted), Bears once (3-1), Blackhawks never
	assert.InDelta(t, 5.0/12.0, snap.StrengthOfSchedule("Seahawks"), 1e-12)
}

func TestHeadToHeadVsGroup(t *testing.T) {
	snap, err := NewSnapshot(testLeague(t), map[string]TeamRecord{
		"Ravens": {HeadToHead: map[string]Record{
			"Seahawks":   {Wins: 1, PointsFor: 100},
			"Bears":      {Losses: 1, PointsFor: 90},
			"Blackhawks": {Wins: 1, PointsFor: 80},
		}},
	})
	require.NoError(t, err)

	got := snap.HeadToHeadVsGroup("Ravens", []string{"Ravens", "Seahawks", "Bears"})
	assert.Equal(t, Record{Wins: 1, Losses: 1, PointsFor: 190}, got)
}

func TestMatchup_AwayProbability(t *testing.T) {
	m := Matchup{Away: "Bears", Home: "Ravens"}
	assert.Equal(t, DefaultAwayProbability, m.AwayProbability())
	assert.False(t, m.HasProbability())

	assert.Equal(t, 0.7, m.WithProbability(0.7).AwayProbability())
	assert.Equal(t, 1.0, m.WithProbability(1.4).AwayProbability())
	assert.Equal(t, 0.0, m.WithProbability(-0.2).AwayProbability())
	assert.Equal(t, "Bears at Ravens", m.ID())
}

func TestPlayedGame_Result(t *testing.T) {
	tests := []struct {
		name   string
		game   PlayedGame
		winner Side
		margin float64
	}{
		{"away win", PlayedGame{AwayScore: 110, HomeScore: 100}, Away, 10},
		{"home win", PlayedGame{AwayScore: 95.5, HomeScore: 100}, Home, 4.5},
		{"tie", PlayedGame{AwayScore: 100, HomeScore: 100}, Tie, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.game.Result()
			assert.Equal(t, tt.winner, r.Winner)
			assert.InDelta(t, tt.margin, r.Margin, 1e-9)
		})
	}
}

func TestParseSide(t *testing.T) {
	side, err := ParseSide("away")
	require.NoError(t, err)
	assert.Equal(t, Away, side)

	_, err = ParseSide("visitor")
	assert.Error(t, err)
}

func TestActiveOverrides(t *testing.T) {
	rule := OverrideRule{
		Away:      "Bears",
		Home:      "Ravens",
		Winner:    Away,
		MinMargin: 3,
		Stage:     "head_to_head_points",
		AwayValue: 250,
		HomeValue: 240,
	}
	m := Matchup{Away: "Bears", Home: "Ravens"}

	tests := []struct {
		name   string
		result GameResult
		active bool
	}{
		{"wins by enough", m.Result(Away, 0, 0, 3), true},
		{"wins by too little", m.Result(Away, 0, 0, 2.9), false},
		{"loses", m.Result(Home, 0, 0, 10), false},
		{"other game", Matchup{Away: "Ravens", Home: "Bears"}.Result(Away, 0, 0, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			active := ActiveOverrides([]OverrideRule{rule}, []GameResult{tt.result})
			team, opp, ok := active.Lookup("head_to_head_points", "Ravens", "Bears")
			assert.Equal(t, tt.active, ok)
			if tt.active {
				assert.Equal(t, 240.0, team)
				assert.Equal(t, 250.0, opp)
				assert.Equal(t, 1, active.Len())
			}
		})
	}
}

func TestResolveTeam(t *testing.T) {
	l := testLeague(t)

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{"exact", "Ravens", "Ravens", nil},
		{"case insensitive", "bEARS", "Bears", nil},
		{"partial", "seahaw", "Seahawks", nil},
		{"closest partial", "hawks", "Seahawks", nil},
		{"misspelled", "Ravnes", "Ravens", nil},
		{"unknown", "xyz", "", ErrUnknownTeam},
		{"empty", "  ", "", ErrUnknownTeam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.ResolveTeam(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveTeam_Ambiguous(t *testing.T) {
	l, err := New("Twins", []Division{{Name: "One", Teams: []string{"Team Alpha", "Team Bravo"}}})
	require.NoError(t, err)

	_, err = l.ResolveTeam("team")
	assert.ErrorIs(t, err, ErrAmbiguousTeam)
}
