package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/config"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/logger"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/mcp"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log := logger.New("info", "json")
		log.WithError(err).Fatal("Failed to read configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Debug("No .env file loaded, using the process environment")
	}

	leagues, err := config.LoadLeagues(cfg.LeagueFile, cfg.Bracket.Qualify())
	if err != nil {
		log.WithError(err).Fatal("Failed to load leagues")
	}
	log.WithField("path", leagues.Path()).WithField("leagues", leagues.Names()).Info("Leagues loaded")

	mcpServer := mcp.NewScenarioMCPServer(log, leagues, cfg.Simulation)
	if mcpServer == nil {
		log.Fatal("Failed to create MCP server")
	}

	log.Info("Starting Playoff Scenarios MCP Server...")

	if err := server.ServeStdio(mcpServer.Server()); err != nil {
		log.WithError(err).Fatal("Server failed to start")
		os.Exit(1)
	}
}
