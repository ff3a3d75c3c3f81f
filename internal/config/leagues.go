package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/performance"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/qualify"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownLeague is returned when a league name is not in the league file
	ErrUnknownLeague = errors.New("unknown league")
	// ErrInvalidLeague is returned for league data the engines cannot use
	ErrInvalidLeague = errors.New("invalid league data")
)

// LeagueFile is the on-disk league file, JSON or YAML
type LeagueFile struct {
	Instructions string                    `json:"_instructions,omitempty" yaml:"_instructions,omitempty"`
	Leagues      map[string]LeagueSettings `json:"leagues" yaml:"leagues"`
}

// LeagueSettings describes one league's season
type LeagueSettings struct {
	Description   string                       `json:"description,omitempty" yaml:"description,omitempty"`
	HasRelegation *bool                        `json:"has_relegation,omitempty" yaml:"has_relegation,omitempty"`
	Bracket       *BracketSettings             `json:"bracket,omitempty" yaml:"bracket,omitempty"`
	Divisions     []league.Division            `json:"divisions" yaml:"divisions"`
	Stats         map[string]league.TeamRecord `json:"stats,omitempty" yaml:"stats,omitempty"`
	MatrixRanks   map[string]int               `json:"matrix_ranks,omitempty" yaml:"matrix_ranks,omitempty"`
	PlayedGames   []league.PlayedGame          `json:"played_games,omitempty" yaml:"played_games,omitempty"`
	Matchups      []league.Matchup             `json:"matchups,omitempty" yaml:"matchups,omitempty"`
	MatrixRecords []performance.MatrixRecord   `json:"matrix_records,omitempty" yaml:"matrix_records,omitempty"`
	Overrides     []league.OverrideRule        `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// BracketSettings overrides the default bracket for one league. Zero sizes
// keep the default.
type BracketSettings struct {
	Size            int  `json:"size,omitempty" yaml:"size,omitempty"`
	Byes            *int `json:"byes,omitempty" yaml:"byes,omitempty"`
	RelegationSlots int  `json:"relegation_slots,omitempty" yaml:"relegation_slots,omitempty"`
}

// LeagueData is a fully loaded league ready for the scenario engines
type LeagueData struct {
	Name        string
	Description string
	League      *league.League
	Snapshot    *league.Snapshot
	Played      []league.PlayedGame
	Unplayed    []league.Matchup
	Rules       []league.OverrideRule
	Matrix      performance.Matrix
	Model       *performance.Model
	Qualify     qualify.Config
}

// Leagues is the set of leagues loaded from one file
type Leagues struct {
	path   string
	byName map[string]*LeagueData
	names  []string
}

// Path returns the file the leagues were loaded from
func (ls *Leagues) Path() string {
	return ls.path
}

// Names returns the league names in sorted order
func (ls *Leagues) Names() []string {
	return ls.names
}

// Get returns a league by name, ignoring case
func (ls *Leagues) Get(name string) (*LeagueData, error) {
	if ld, ok := ls.byName[name]; ok {
		return ld, nil
	}
	for _, n := range ls.names {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return ls.byName[n], nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownLeague, name, strings.Join(ls.names, ", "))
}

var leagueFilePaths = []string{
	"configs/leagues.json",
	"../configs/leagues.json",
	"../../configs/leagues.json",
}

// LoadLeagues reads the league file at path. An empty path searches the
// usual configs/ locations relative to the working directory.
func LoadLeagues(path string, defaults qualify.Config) (*Leagues, error) {
	if path == "" {
		for _, p := range leagueFilePaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
		if path == "" {
			return nil, fmt.Errorf("no league file found in %s", strings.Join(leagueFilePaths, ", "))
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read league file: %w", err)
	}

	ls, err := ParseLeagues(data, formatOf(path), defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load leagues from %s: %w", path, err)
	}
	ls.path = path
	return ls, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

// ParseLeagues decodes a league file in the given format ("json" or "yaml")
// and builds every league in it.
func ParseLeagues(data []byte, format string, defaults qualify.Config) (*Leagues, error) {
	var file LeagueFile
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported league file format %q", format)
	}
	if len(file.Leagues) == 0 {
		return nil, errors.New("league file defines no leagues")
	}

	ls := &Leagues{byName: make(map[string]*LeagueData, len(file.Leagues))}
	for name, settings := range file.Leagues {
		ld, err := settings.Build(name, defaults)
		if err != nil {
			return nil, err
		}
		ls.byName[name] = ld
		ls.names = append(ls.names, name)
	}
	sort.Strings(ls.names)
	return ls, nil
}

// Build validates the settings and derives everything the engines need
func (s LeagueSettings) Build(name string, defaults qualify.Config) (*LeagueData, error) {
	l, err := league.New(name, s.Divisions)
	if err != nil {
		return nil, err
	}
	for _, g := range s.PlayedGames {
		if !l.Has(g.Away) || !l.Has(g.Home) {
			return nil, fmt.Errorf("league %q: %w: week %d game %s at %s", name, league.ErrUnknownTeam, g.Week, g.Away, g.Home)
		}
	}

	snap, err := s.snapshot(l)
	if err != nil {
		return nil, fmt.Errorf("league %q: %w", name, err)
	}

	cfg := s.bracket(defaults)
	if err := cfg.Validate(l); err != nil {
		return nil, fmt.Errorf("league %q: %w", name, err)
	}

	var matrix performance.Matrix
	if len(s.MatrixRecords) > 0 {
		matrix, err = performance.NewMatrix(l, s.MatrixRecords)
	} else {
		matrix, err = s.allPlayMatrix()
	}
	if err != nil {
		return nil, fmt.Errorf("league %q: %w", name, err)
	}

	unplayed := make([]league.Matchup, len(s.Matchups))
	for i, m := range s.Matchups {
		if !l.Has(m.Away) || !l.Has(m.Home) {
			return nil, fmt.Errorf("league %q: %w: matchup %s", name, league.ErrUnknownTeam, m.ID())
		}
		if m.Away == m.Home {
			return nil, fmt.Errorf("league %q: %s plays itself", name, m.Away)
		}
		m.DivisionGame = m.DivisionGame || l.SameDivision(m.Away, m.Home)
		unplayed[i] = m
	}

	for _, r := range s.Overrides {
		if !l.Has(r.Away) || !l.Has(r.Home) {
			return nil, fmt.Errorf("league %q: %w: override for %s at %s", name, league.ErrUnknownTeam, r.Away, r.Home)
		}
		if _, err := league.ParseSide(string(r.Winner)); err != nil {
			return nil, fmt.Errorf("league %q: override for %s at %s: %w", name, r.Away, r.Home, err)
		}
	}

	return &LeagueData{
		Name:        name,
		Description: s.Description,
		League:      l,
		Snapshot:    snap,
		Played:      s.PlayedGames,
		Unplayed:    matrix.FillProbabilities(unplayed),
		Rules:       s.Overrides,
		Matrix:      matrix,
		Model:       performance.Build(l, s.PlayedGames),
		Qualify:     cfg,
	}, nil
}

// snapshot uses explicit stats when the file has them and otherwise derives
// every record from the played games.
func (s LeagueSettings) snapshot(l *league.League) (*league.Snapshot, error) {
	if len(s.Stats) == 0 {
		return league.SnapshotFromGames(l, s.PlayedGames, s.MatrixRanks)
	}
	records := make(map[string]league.TeamRecord, len(s.Stats))
	for team, rec := range s.Stats {
		records[team] = rec
	}
	for team, rank := range s.MatrixRanks {
		rec := records[team]
		rec.MatrixRank = rank
		records[team] = rec
	}
	return league.NewSnapshot(l, records)
}

func (s LeagueSettings) bracket(defaults qualify.Config) qualify.Config {
	cfg := defaults
	if b := s.Bracket; b != nil {
		if b.Size > 0 {
			cfg.BracketSize = b.Size
		}
		if b.Byes != nil {
			cfg.ByeCount = *b.Byes
		}
		if b.RelegationSlots > 0 {
			cfg.RelegationCount = b.RelegationSlots
		}
	}
	if s.HasRelegation != nil {
		cfg.Relegation = *s.HasRelegation
	}
	return cfg
}

// allPlayMatrix derives the matrix from weekly scores. Every played game needs
// a week and a team may only play once per week.
func (s LeagueSettings) allPlayMatrix() (performance.Matrix, error) {
	seen := make(map[int]map[string]bool)
	for _, g := range s.PlayedGames {
		if g.Week <= 0 {
			return nil, fmt.Errorf("%w: game %s at %s has no week; set week or give matrix_records", ErrInvalidLeague, g.Away, g.Home)
		}
		teams, ok := seen[g.Week]
		if !ok {
			teams = make(map[string]bool)
			seen[g.Week] = teams
		}
		for _, team := range []string{g.Away, g.Home} {
			if teams[team] {
				return nil, fmt.Errorf("%w: %s plays twice in week %d", ErrInvalidLeague, team, g.Week)
			}
			teams[team] = true
		}
	}
	return performance.AllPlayMatrix(s.PlayedGames), nil
}
