package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/config"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/league"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/qualify"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/scenario"
	"github.com/sirupsen/logrus"
)

// maxSimulations caps a single simulate_playoff_odds request
const maxSimulations = 1000000

// ScenarioHandler handles the what-if and odds MCP tools
type ScenarioHandler struct {
	leagues LeagueSource
	sim     config.Simulation
	logger  *logrus.Logger
}

// NewScenarioHandler creates a new scenario handler
func NewScenarioHandler(leagues LeagueSource, sim config.Simulation, logger *logrus.Logger) *ScenarioHandler {
	return &ScenarioHandler{
		leagues: leagues,
		sim:     sim,
		logger:  logger,
	}
}

// EvaluateScenarioTool returns the MCP tool definition for evaluate_scenario
func (h *ScenarioHandler) EvaluateScenarioTool() mcp.Tool {
	return mcp.Tool{
		Name:        "evaluate_scenario",
		Description: "Decide the remaining games and return the resulting championship, relegation and safe teams. Games without a selection default to a home win.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league": map[string]interface{}{
					"type":        "string",
					"description": "League name (see list_leagues)",
					"required":    true,
				},
				"selections": map[string]interface{}{
					"type":        "array",
					"description": "Winners for remaining games. Each item names the away_team and home_team and a winner of 'away', 'home', 'tie' or a team name, with an optional winning margin in points.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"away_team": map[string]interface{}{"type": "string"},
							"home_team": map[string]interface{}{"type": "string"},
							"winner":    map[string]interface{}{"type": "string"},
							"margin":    map[string]interface{}{"type": "number"},
						},
					},
					"required": false,
				},
				"default_margin": map[string]interface{}{
					"type":        "number",
					"description": "Winning margin assumed for games without an explicit margin",
					"required":    false,
				},
			},
		},
	}
}

// HandleEvaluateScenario handles the evaluate_scenario tool call
func (h *ScenarioHandler) HandleEvaluateScenario(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling evaluate_scenario")

	name, err := requiredString(args, "league")
	if err != nil {
		return nil, err
	}
	margin := h.sim.AssumedMargin
	if m, ok, err := optionalNumber(args, "default_margin"); err != nil {
		return nil, err
	} else if ok {
		if m < 0 {
			return nil, errors.New("default_margin must not be negative")
		}
		margin = m
	}

	ld, err := h.leagues.Get(name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to find league")
		return errorResult("Failed to evaluate scenario", err), nil
	}

	selections, err := parseSelections(ld.League, args["selections"])
	if err != nil {
		h.logger.WithError(err).Warn("Invalid selections")
		return errorResult("Invalid selections", err), nil
	}

	selector := qualify.NewSelector(ld.Qualify, h.logger)
	outcome, err := scenario.Evaluate(selector, inputFor(ld), selections, margin)
	if err != nil {
		h.logger.WithError(err).Error("Failed to evaluate scenario")
		return errorResult("Failed to evaluate scenario", err), nil
	}

	return jsonResult(APIResponse{
		Success:  true,
		Data:     outcome,
		Summary:  outcomeSummary(ld.Name, len(selections), outcome),
		Metadata: newMetadata(ld.Name),
	}), nil
}

// parseSelections converts the raw selections argument, resolving loosely
// typed team names against the league.
func parseSelections(l *league.League, raw interface{}) ([]scenario.Selection, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, errors.New("selections must be an array")
	}

	selections := make([]scenario.Selection, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("selection %d must be an object", i+1)
		}
		awayArg, err := requiredString(obj, "away_team")
		if err != nil {
			return nil, fmt.Errorf("selection %d: %w", i+1, err)
		}
		homeArg, err := requiredString(obj, "home_team")
		if err != nil {
			return nil, fmt.Errorf("selection %d: %w", i+1, err)
		}
		away, err := l.ResolveTeam(awayArg)
		if err != nil {
			return nil, fmt.Errorf("selection %d: %w", i+1, err)
		}
		home, err := l.ResolveTeam(homeArg)
		if err != nil {
			return nil, fmt.Errorf("selection %d: %w", i+1, err)
		}

		sel := scenario.Selection{Away: away, Home: home}
		winnerArg, err := optionalString(obj, "winner")
		if err != nil {
			return nil, fmt.Errorf("selection %d: %w", i+1, err)
		}
		if winnerArg != "" {
			sel.Winner, err = parseWinner(l, winnerArg, away, home)
			if err != nil {
				return nil, fmt.Errorf("selection %d: %w", i+1, err)
			}
		}
		if m, ok, err := optionalNumber(obj, "margin"); err != nil {
			return nil, fmt.Errorf("selection %d: %w", i+1, err)
		} else if ok {
			if m < 0 {
				return nil, fmt.Errorf("selection %d: margin must not be negative", i+1)
			}
			sel.Margin = &m
		}
		selections = append(selections, sel)
	}
	return selections, nil
}

// parseWinner accepts a side keyword or the name of either team
func parseWinner(l *league.League, arg, away, home string) (league.Side, error) {
	if side, err := league.ParseSide(strings.ToLower(strings.TrimSpace(arg))); err == nil {
		return side, nil
	}
	team, err := l.ResolveTeam(arg)
	if err != nil {
		return "", fmt.Errorf("winner %q: %w", arg, err)
	}
	switch team {
	case away:
		return league.Away, nil
	case home:
		return league.Home, nil
	}
	return "", fmt.Errorf("winner %s does not play in %s at %s", team, away, home)
}

func outcomeSummary(leagueName string, selected int, o *scenario.Outcome) string {
	var seeds []string
	for _, seed := range o.Result.Championship {
		seeds = append(seeds, fmt.Sprintf("%d. %s", seed.Seed, seed.Team))
	}
	summary := fmt.Sprintf("League '%s' - %d of %d games selected. Championship: %s",
		leagueName, selected, len(o.Games), strings.Join(seeds, ", "))
	if len(o.Result.Relegation) > 0 {
		var relegated []string
		for _, seed := range o.Result.Relegation {
			relegated = append(relegated, seed.Team)
		}
		summary += fmt.Sprintf("; relegation: %s", strings.Join(relegated, ", "))
	}
	if len(o.Overrides) > 0 {
		summary += fmt.Sprintf("; %d override rules triggered", len(o.Overrides))
	}
	return summary
}

// GetPlayoffOddsTool returns the MCP tool definition for get_playoff_odds
func (h *ScenarioHandler) GetPlayoffOddsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_playoff_odds",
		Description: "Compute every team's championship, bye, division, relegation and safe probabilities by enumerating all outcomes of the remaining games, weighted by each game's win probability",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league": map[string]interface{}{
					"type":        "string",
					"description": "League name (see list_leagues)",
					"required":    true,
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"description": "exhaustive (default), auto (exhaustive when small enough, otherwise simulation) or monte_carlo",
					"required":    false,
				},
				"team": map[string]interface{}{
					"type":        "string",
					"description": "Only return odds for this team",
					"required":    false,
				},
			},
		},
	}
}

// HandleGetPlayoffOdds handles the get_playoff_odds tool call
func (h *ScenarioHandler) HandleGetPlayoffOdds(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling get_playoff_odds")

	name, err := requiredString(args, "league")
	if err != nil {
		return nil, err
	}
	strategyArg, err := optionalString(args, "strategy")
	if err != nil {
		return nil, err
	}
	teamArg, err := optionalString(args, "team")
	if err != nil {
		return nil, err
	}

	ld, err := h.leagues.Get(name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to find league")
		return errorResult("Failed to get playoff odds", err), nil
	}

	var strategy scenario.Strategy
	switch strings.ToLower(strategyArg) {
	case "", "exhaustive":
		strategy = h.exhaustive(ld)
	case "auto":
		strategy = &scenario.Auto{Exhaustive: h.exhaustive(ld), MonteCarlo: h.monteCarlo(ld, 0, h.sim.Seed)}
	case "monte_carlo", "montecarlo", "simulation":
		strategy = h.monteCarlo(ld, 0, h.sim.Seed)
	default:
		return nil, fmt.Errorf("strategy must be exhaustive, auto or monte_carlo, got %q", strategyArg)
	}

	return h.runOdds(ctx, ld, strategy, teamArg), nil
}

// SimulatePlayoffOddsTool returns the MCP tool definition for simulate_playoff_odds
func (h *ScenarioHandler) SimulatePlayoffOddsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "simulate_playoff_odds",
		Description: "Estimate every team's qualification probabilities by simulating the remaining games from each team's scoring distribution (Monte Carlo). Results are reproducible for a given seed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"league": map[string]interface{}{
					"type":        "string",
					"description": "League name (see list_leagues)",
					"required":    true,
				},
				"simulations": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Number of simulated seasons (default %d, max %d)", scenario.DefaultSimulations, maxSimulations),
					"required":    false,
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for reproducible results",
					"required":    false,
				},
				"team": map[string]interface{}{
					"type":        "string",
					"description": "Only return odds for this team",
					"required":    false,
				},
			},
		},
	}
}

// HandleSimulatePlayoffOdds handles the simulate_playoff_odds tool call
func (h *ScenarioHandler) HandleSimulatePlayoffOdds(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	h.logger.WithField("args", args).Info("Handling simulate_playoff_odds")

	name, err := requiredString(args, "league")
	if err != nil {
		return nil, err
	}
	simulations, ok, err := optionalInt(args, "simulations")
	if err != nil {
		return nil, err
	}
	if ok && (simulations < 1 || simulations > maxSimulations) {
		return nil, fmt.Errorf("simulations must be between 1 and %d", maxSimulations)
	}
	seed := h.sim.Seed
	if s, ok, err := optionalInt(args, "seed"); err != nil {
		return nil, err
	} else if ok {
		if s < 0 {
			return nil, errors.New("seed must not be negative")
		}
		seed = uint64(s)
	}
	teamArg, err := optionalString(args, "team")
	if err != nil {
		return nil, err
	}

	ld, err := h.leagues.Get(name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to find league")
		return errorResult("Failed to simulate playoff odds", err), nil
	}

	return h.runOdds(ctx, ld, h.monteCarlo(ld, simulations, seed), teamArg), nil
}

func (h *ScenarioHandler) exhaustive(ld *config.LeagueData) *scenario.Exhaustive {
	margin := h.sim.AssumedMargin
	return &scenario.Exhaustive{
		Selector:      qualify.NewSelector(ld.Qualify, h.logger),
		MaxGames:      h.sim.MaxExhaustiveGames,
		AssumedMargin: &margin,
		Workers:       h.sim.Workers,
		Logger:        h.logger,
	}
}

func (h *ScenarioHandler) monteCarlo(ld *config.LeagueData, simulations int, seed uint64) *scenario.MonteCarlo {
	if simulations <= 0 {
		simulations = h.sim.Simulations
	}
	return &scenario.MonteCarlo{
		Selector:    qualify.NewSelector(ld.Qualify, h.logger),
		Model:       ld.Model,
		Simulations: simulations,
		Seed:        seed,
		Workers:     h.sim.Workers,
		Logger:      h.logger,
	}
}

func inputFor(ld *config.LeagueData) scenario.Input {
	return scenario.Input{
		Snapshot: ld.Snapshot,
		Matchups: ld.Unplayed,
		Rules:    ld.Rules,
	}
}

// runOdds runs a strategy and formats the summary, optionally narrowed to
// one team
func (h *ScenarioHandler) runOdds(ctx context.Context, ld *config.LeagueData, strategy scenario.Strategy, teamArg string) *mcp.CallToolResult {
	team := ""
	if teamArg != "" {
		resolved, err := ld.League.ResolveTeam(teamArg)
		if err != nil {
			h.logger.WithError(err).Warn("Failed to resolve team")
			return errorResult("Failed to resolve team", err)
		}
		team = resolved
	}

	start := time.Now()
	summary, err := strategy.Run(ctx, inputFor(ld))
	if err != nil {
		h.logger.WithError(err).WithField("strategy", strategy.Name()).Error("Scenario run failed")
		if errors.Is(err, scenario.ErrTooManyGames) {
			return errorResult("Failed to compute playoff odds (try strategy auto or simulate_playoff_odds)", err)
		}
		return errorResult("Failed to compute playoff odds", err)
	}

	text := oddsSummary(summary)
	if team != "" {
		odds := summary.Team(team)
		narrowed := *summary
		narrowed.Teams = []scenario.TeamOdds{*odds}
		summary = &narrowed
		text = fmt.Sprintf("%s (%s, %s): championship %.1f%%, bye %.1f%%, division %.1f%%, relegation %.1f%%, safe %.1f%% - %s",
			odds.Team, odds.Division, odds.Record, odds.Championship, odds.Bye, odds.DivisionWinner,
			odds.Relegation, odds.Safe, odds.Status)
	}

	meta := newMetadata(ld.Name)
	meta.RunID = summary.RunID
	meta.Strategy = summary.Strategy
	meta.Duration = time.Since(start).String()

	return jsonResult(APIResponse{
		Success:  true,
		Data:     summary,
		Summary:  text,
		Metadata: meta,
	})
}

func oddsSummary(s *scenario.Summary) string {
	teams := make([]scenario.TeamOdds, len(s.Teams))
	copy(teams, s.Teams)
	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Championship > teams[j].Championship
	})

	var contenders, clinched, relegated []string
	for _, t := range teams {
		switch t.Status {
		case scenario.ClinchedPlayoffs:
			clinched = append(clinched, t.Team)
		case scenario.ClinchedRelegation:
			relegated = append(relegated, t.Team)
		}
		if t.Championship > 0 && t.Status != scenario.ClinchedPlayoffs {
			contenders = append(contenders, fmt.Sprintf("%s %.1f%%", t.Team, t.Championship))
		}
	}

	summary := fmt.Sprintf("League '%s' - %s over %d games (%d scenarios)", s.League, s.Strategy, s.Games, s.Scenarios)
	if len(clinched) > 0 {
		summary += fmt.Sprintf("; clinched: %s", strings.Join(clinched, ", "))
	}
	if len(contenders) > 0 {
		summary += fmt.Sprintf("; in the hunt: %s", strings.Join(contenders, ", "))
	}
	if len(relegated) > 0 {
		summary += fmt.Sprintf("; locked into relegation: %s", strings.Join(relegated, ", "))
	}
	return summary
}
