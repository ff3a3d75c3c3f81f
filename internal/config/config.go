package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/qualify"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/scenario"
)

// Config is the process configuration read from the environment
type Config struct {
	LeagueFile string `envconfig:"LEAGUE_FILE"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`
	Simulation Simulation
	Bracket    Bracket
}

// Simulation tunes the scenario engines. MaxExhaustiveGames may not exceed
// scenario.MaxGamesLimit. AssumedMargin of 0 is allowed and only satisfies
// override rules without a minimum margin.
type Simulation struct {
	Simulations        int     `envconfig:"SIMULATIONS" default:"10000"`
	Seed               uint64  `envconfig:"SIMULATION_SEED" default:"42"`
	Workers            int     `envconfig:"WORKERS" default:"0"`
	MaxExhaustiveGames int     `envconfig:"MAX_EXHAUSTIVE_GAMES" default:"16"`
	AssumedMargin      float64 `envconfig:"ASSUMED_MARGIN" default:"5"`
}

// Bracket is the default bracket for leagues that do not set their own
type Bracket struct {
	Size            int `envconfig:"BRACKET_SIZE" default:"6"`
	Byes            int `envconfig:"BYE_COUNT" default:"2"`
	RelegationSlots int `envconfig:"RELEGATION_COUNT" default:"4"`
}

// New reads the configuration from the environment
func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.Simulation.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s Simulation) validate() error {
	if s.MaxExhaustiveGames > scenario.MaxGamesLimit {
		return fmt.Errorf("MAX_EXHAUSTIVE_GAMES %d exceeds the limit of %d", s.MaxExhaustiveGames, scenario.MaxGamesLimit)
	}
	if s.AssumedMargin < 0 {
		return fmt.Errorf("ASSUMED_MARGIN must not be negative, got %g", s.AssumedMargin)
	}
	return nil
}

// Qualify returns the default bracket as a qualification config.
// Relegation is on whenever any relegation slots are configured.
func (b Bracket) Qualify() qualify.Config {
	return qualify.Config{
		BracketSize:     b.Size,
		ByeCount:        b.Byes,
		RelegationCount: b.RelegationSlots,
		Relegation:      b.RelegationSlots > 0,
	}
}
