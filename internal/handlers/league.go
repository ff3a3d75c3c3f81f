package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/config"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/performance"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/qualify"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/tiebreak"
	"github.com/sirupsen/logrus"
)

// LeagueSummary describes one available league
type LeagueSummary struct {
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Divisions      []string       `json:"divisions"`
	Teams          int            `json:"teams"`
	PlayedGames    int            `json:"played_games"`
	RemainingGames int            `json:"remaining_games"`
	Overrides      int            `json:"override_rules,omitempty"`
	Bracket        qualify.Config `json:"bracket"`
}

// StandingEntry represents a team's place in its division
type StandingEntry struct {
	Rank               int     `json:"rank"`
	Team               string  `json:"team"`
	Record             string  `json:"record"`
	WinPct             float64 `json:"win_pct"`
	DivisionRecord     string  `json:"division_record"`
	PointsFor          float64 `json:"points_for"`
	PointsAgainst      float64 `json:"points_against"`
	StrengthOfSchedule float64 `json:"strength_of_schedule"`
	MatrixRank         int     `json:"matrix_rank,omitempty"`
}

// DivisionTable is one division's standings, best first
type DivisionTable struct {
	Division string          `json:"division"`
	Teams    []StandingEntry `json:"teams"`
}

// Standings is the current table and the bracket if the season ended today
type Standings struct {
	League       string           `json:"league"`
	Divisions    []DivisionTable  `json:"divisions"`
	IfEndedToday *qualify.Result  `json:"if_season_ended_today"`
	Remaining    []league.Matchup `json:"remaining_games"`
}

// MatchupOdds is an unplayed game with the model's view of it
type MatchupOdds struct {
	Away           string  `json:"away_team"`
	Home           string  `json:"home_team"`
	DivisionGame   bool    `json:"is_division_game"`
	AwayWinPct     float64 `json:"away_win_pct"`
	AwayProjected  float64 `json:"away_projected"`
	HomeProjected  float64 `json:"home_projected"`
	HasProbability bool    `json:"has_probability"`
}

// PerformanceReport is the scoring model used by Monte Carlo runs
type PerformanceReport struct {
	Adjustments performance.Adjustments `json:"adjustments"`
	Teams       []TeamDistribution      `json:"teams"`
	Matchups    []MatchupOdds           `json:"matchups"`
}

// TeamDistribution is one team's neutral-site scoring distribution
type TeamDistribution struct {
	Team string `json:"team"`
	performance.Distribution
}

// LeagueHandler handles league-related MCP tools
type LeagueHandler struct {
	leagues LeagueSource
	logger  *logrus.Logger
}

// NewLeagueHandler creates a new league handler
func NewLeagueHandler(leagues LeagueSource, logger *logrus.Logger) *LeagueHandler {
	return &LeagueHandler{
		leagues: leagues,
		logger:  logger,
	}
}

// ListLeaguesTool returns the MCP tool definition for list_leagues
func (h *LeagueHandler) ListLeaguesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_leagues",
		Description: "List the leagues available for scenario analysis with team counts, bracket settings and remaining games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// HandleListLeagues handles the list_leagues tool call
func (h *LeagueHandler) HandleListLeagues(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling list_leagues")

	var summaries []LeagueSummary
	for _, name := range h.leagues.Names() {
		ld, err := h.leagues.Get(name)
		if err != nil {
			h.logger.WithError(err).Error("Failed to load league")
			return errorResult("Failed to list leagues", err), nil
		}
		var divisions []string
		for _, d := range ld.League.Divisions() {
			divisions = append(divisions, d.Name)
		}
		summaries = append(summaries, LeagueSummary{
			Name:           ld.Name,
			Description:    ld.Description,
			Divisions:      divisions,
			Teams:          len(ld.League.Teams()),
			PlayedGames:    len(ld.Played),
			RemainingGames: len(ld.Unplayed),
			Overrides:      len(ld.Rules),
			Bracket:        ld.Qualify,
		})
	}

	return jsonResult(APIResponse{
		Success:  true,
		Data:     summaries,
		Summary:  fmt.Sprintf("%d leagues available: %s", len(summaries), strings.Join(h.leagues.Names(), ", ")),
		Metadata: newMetadata(""),
	}), nil
}

// GetStandingsTool returns the MCP tool definition for get_standings
func (h *LeagueHandler) GetStandingsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_standings",
		Description: "Get current division standings with tiebreakers applied, plus the championship and relegation brackets if the season ended today",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league": map[string]interface{}{
					"type":        "string",
					"description": "League name (see list_leagues)",
					"required":    true,
				},
			},
		},
	}
}

// HandleGetStandings handles the get_standings tool call
func (h *LeagueHandler) HandleGetStandings(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_standings")

	name, err := requiredString(args, "league")
	if err != nil {
		return nil, err
	}

	ld, err := h.leagues.Get(name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to find league")
		return errorResult("Failed to get standings", err), nil
	}

	standings, err := buildStandings(ld, h.logger)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute standings")
		return errorResult("Failed to get standings", err), nil
	}

	return jsonResult(APIResponse{
		Success:  true,
		Data:     standings,
		Summary:  standingsSummary(standings),
		Metadata: newMetadata(ld.Name),
	}), nil
}

func buildStandings(ld *config.LeagueData, logger logrus.FieldLogger) (*Standings, error) {
	snap := ld.Snapshot
	engine := tiebreak.New(snap, nil, logger)

	standings := &Standings{
		League:    ld.Name,
		Remaining: ld.Unplayed,
	}
	for _, div := range ld.League.Divisions() {
		table := DivisionTable{Division: div.Name}
		for i, team := range engine.RankDivision(div) {
			rec := snap.Team(team)
			table.Teams = append(table.Teams, StandingEntry{
				Rank:               i + 1,
				Team:               team,
				Record:             rec.Line().String(),
				WinPct:             rec.WinPct(),
				DivisionRecord:     league.Line{Wins: rec.DivisionWins, Losses: rec.DivisionLosses, Ties: rec.DivisionTies}.String(),
				PointsFor:          rec.PointsFor,
				PointsAgainst:      rec.PointsAgainst,
				StrengthOfSchedule: snap.StrengthOfSchedule(team),
				MatrixRank:         rec.MatrixRank,
			})
		}
		standings.Divisions = append(standings.Divisions, table)
	}

	result, err := qualify.NewSelector(ld.Qualify, logger).Select(snap, nil)
	if err != nil {
		return nil, err
	}
	standings.IfEndedToday = result
	return standings, nil
}

func standingsSummary(s *Standings) string {
	var seeds []string
	for _, seed := range s.IfEndedToday.Championship {
		seeds = append(seeds, fmt.Sprintf("%d. %s", seed.Seed, seed.Team))
	}
	summary := fmt.Sprintf("League '%s' - %d games remaining. If the season ended today: %s",
		s.League, len(s.Remaining), strings.Join(seeds, ", "))
	if len(s.IfEndedToday.Relegation) > 0 {
		var relegated []string
		for _, seed := range s.IfEndedToday.Relegation {
			relegated = append(relegated, seed.Team)
		}
		summary += fmt.Sprintf("; relegation: %s", strings.Join(relegated, ", "))
	}
	return summary
}

// GetPerformanceModelTool returns the MCP tool definition for get_performance_model
func (h *LeagueHandler) GetPerformanceModelTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_performance_model",
		Description: "Get the scoring model used for simulations: home/away multipliers, each team's scoring mean and spread, and projected odds for every remaining game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league": map[string]interface{}{
					"type":        "string",
					"description": "League name (see list_leagues)",
					"required":    true,
				},
			},
		},
	}
}

// HandleGetPerformanceModel handles the get_performance_model tool call
func (h *LeagueHandler) HandleGetPerformanceModel(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_performance_model")

	name, err := requiredString(args, "league")
	if err != nil {
		return nil, err
	}

	ld, err := h.leagues.Get(name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to find league")
		return errorResult("Failed to get performance model", err), nil
	}

	report := buildPerformanceReport(ld)

	return jsonResult(APIResponse{
		Success: true,
		Data:    report,
		Summary: fmt.Sprintf("League '%s' - home multiplier %.3f, away multiplier %.3f, %d teams modelled from %d games",
			ld.Name, report.Adjustments.NeutralToHome, report.Adjustments.NeutralToAway, len(report.Teams), len(ld.Played)),
		Metadata: newMetadata(ld.Name),
	}), nil
}

func buildPerformanceReport(ld *config.LeagueData) PerformanceReport {
	model := ld.Model
	report := PerformanceReport{Adjustments: model.Adjustments}

	for _, team := range model.TeamNames() {
		report.Teams = append(report.Teams, TeamDistribution{Team: team, Distribution: model.Distribution(team)})
	}
	sort.SliceStable(report.Teams, func(i, j int) bool {
		return report.Teams[i].Mean > report.Teams[j].Mean
	})

	for _, m := range ld.Unplayed {
		report.Matchups = append(report.Matchups, MatchupOdds{
			Away:           m.Away,
			Home:           m.Home,
			DivisionGame:   m.DivisionGame,
			AwayWinPct:     m.AwayProbability(),
			AwayProjected:  model.AwayScore(model.Distribution(m.Away).Mean),
			HomeProjected:  model.HomeScore(model.Distribution(m.Home).Mean),
			HasProbability: m.HasProbability(),
		})
	}
	return report
}
