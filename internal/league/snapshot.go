package league

import "fmt"

// Snapshot is the state of every team's record at one point in the season.
// A snapshot is never modified after it is built; Apply returns a fresh copy
// so concurrent scenarios can share one base snapshot.
type Snapshot struct {
	league *League
	teams  map[string]*TeamRecord
}

var zeroRecord = &TeamRecord{}

// NewSnapshot builds a snapshot from explicit team records. Teams missing
// from records start with an empty record; records for unknown teams are an
// error.
func NewSnapshot(l *League, records map[string]TeamRecord) (*Snapshot, error) {
	s := &Snapshot{
		league: l,
		teams:  make(map[string]*TeamRecord, len(l.Teams())),
	}
	for name, rec := range records {
		if !l.Has(name) {
			return nil, fmt.Errorf("%w: %q has a record but no division", ErrUnknownTeam, name)
		}
		for opp := range rec.HeadToHead {
			if !l.Has(opp) {
				return nil, fmt.Errorf("%w: %q has a head-to-head record against %q", ErrUnknownTeam, name, opp)
			}
		}
		s.teams[name] = rec.clone()
	}
	for _, name := range l.Teams() {
		if _, ok := s.teams[name]; !ok {
			s.teams[name] = &TeamRecord{HeadToHead: make(map[string]Record)}
		}
	}
	return s, nil
}

// SnapshotFromGames derives every record from the season's played games so
// that overall, division and head-to-head lines agree by construction.
func SnapshotFromGames(l *League, games []PlayedGame, matrixRanks map[string]int) (*Snapshot, error) {
	s, err := NewSnapshot(l, nil)
	if err != nil {
		return nil, err
	}
	for name, rank := range matrixRanks {
		if !l.Has(name) {
			return nil, fmt.Errorf("%w: matrix rank for %q", ErrUnknownTeam, name)
		}
		s.teams[name].MatrixRank = rank
	}
	for _, g := range games {
		if !l.Has(g.Away) || !l.Has(g.Home) {
			return nil, fmt.Errorf("%w: week %d game %s at %s", ErrUnknownTeam, g.Week, g.Away, g.Home)
		}
		result := g.Result()
		result.DivisionGame = g.DivisionGame || l.SameDivision(g.Away, g.Home)
		s.apply(result)
	}
	return s, nil
}

// League returns the league the snapshot belongs to
func (s *Snapshot) League() *League {
	return s.league
}

// Team returns the team's record. Unknown teams get a shared zero record,
// which callers must not modify.
func (s *Snapshot) Team(name string) *TeamRecord {
	if rec, ok := s.teams[name]; ok {
		return rec
	}
	return zeroRecord
}

// Apply returns a new snapshot with every result applied. The receiver is
// left untouched.
func (s *Snapshot) Apply(results []GameResult) *Snapshot {
	next := s.clone()
	for _, r := range results {
		next.apply(r)
	}
	return next
}

func (s *Snapshot) clone() *Snapshot {
	c := &Snapshot{
		league: s.league,
		teams:  make(map[string]*TeamRecord, len(s.teams)),
	}
	for name, rec := range s.teams {
		c.teams[name] = rec.clone()
	}
	return c
}

// apply records one game on both teams. Every win is mirrored by a loss
// (or a tie by a tie) on the opponent, in the overall, division and
// head-to-head lines alike.
func (s *Snapshot) apply(g GameResult) {
	away := s.mutable(g.Away)
	home := s.mutable(g.Home)
	awayH2H := away.HeadToHead[g.Home]
	homeH2H := home.HeadToHead[g.Away]

	switch g.Winner {
	case Away:
		away.Wins++
		home.Losses++
		awayH2H.Wins++
		homeH2H.Losses++
		if g.DivisionGame {
			away.DivisionWins++
			home.DivisionLosses++
		}
	case Home:
		home.Wins++
		away.Losses++
		homeH2H.Wins++
		awayH2H.Losses++
		if g.DivisionGame {
			home.DivisionWins++
			away.DivisionLosses++
		}
	default:
		away.Ties++
		home.Ties++
		awayH2H.Ties++
		homeH2H.Ties++
		if g.DivisionGame {
			away.DivisionTies++
			home.DivisionTies++
		}
	}

	away.PointsFor += g.AwayScore
	away.PointsAgainst += g.HomeScore
	home.PointsFor += g.HomeScore
	home.PointsAgainst += g.AwayScore
	awayH2H.PointsFor += g.AwayScore
	awayH2H.PointsAgainst += g.HomeScore
	homeH2H.PointsFor += g.HomeScore
	homeH2H.PointsAgainst += g.AwayScore

	away.HeadToHead[g.Home] = awayH2H
	home.HeadToHead[g.Away] = homeH2H
}

func (s *Snapshot) mutable(name string) *TeamRecord {
	rec, ok := s.teams[name]
	if !ok {
		rec = &TeamRecord{}
		s.teams[name] = rec
	}
	if rec.HeadToHead == nil {
		rec.HeadToHead = make(map[string]Record)
	}
	return rec
}

// HeadToHead returns team's record against opponent; teams that have not met
// get a zero record.
func (s *Snapshot) HeadToHead(team, opponent string) Record {
	return s.Team(team).HeadToHead[opponent]
}

// HeadToHeadVsGroup sums team's head-to-head records against every other
// member of group.
func (s *Snapshot) HeadToHeadVsGroup(team string, group []string) Record {
	var total Record
	for _, opp := range group {
		if opp == team {
			continue
		}
		total = total.Add(s.HeadToHead(team, opp))
	}
	return total
}

// StrengthOfSchedule is the combined winning percentage of every opponent the
// team has faced, each opponent weighted by the number of games played
// against it. Opponents never played carry no weight.
func (s *Snapshot) StrengthOfSchedule(team string) float64 {
	var wins, losses, ties int
	for _, opp := range s.league.Teams() {
		if opp == team {
			continue
		}
		games := s.HeadToHead(team, opp).Games()
		if games == 0 {
			continue
		}
		rec := s.Team(opp)
		wins += rec.Wins * games
		losses += rec.Losses * games
		ties += rec.Ties * games
	}
	return WinPct(wins, losses, ties)
}
