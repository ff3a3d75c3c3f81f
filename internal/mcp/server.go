package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/config"
	"github.com/sam-maryland/playoff-scenarios-mcp-server/internal/handlers"
	"github.com/sirupsen/logrus"
)

// toolHandler is the signature shared by every tool's call handler
type toolHandler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// ScenarioMCPServer wires the league and scenario tools into an MCP server
type ScenarioMCPServer struct {
	server          *server.DefaultServer
	logger          *logrus.Logger
	leagueHandler   *handlers.LeagueHandler
	scenarioHandler *handlers.ScenarioHandler
	tools           []mcp.Tool
	routes          map[string]toolHandler
}

// NewScenarioMCPServer creates the MCP server for the loaded leagues
func NewScenarioMCPServer(logger *logrus.Logger, leagues handlers.LeagueSource, sim config.Simulation) *ScenarioMCPServer {
	leagueHandler := handlers.NewLeagueHandler(leagues, logger)
	scenarioHandler := handlers.NewScenarioHandler(leagues, sim, logger)

	s := server.NewDefaultServer("Playoff Scenarios", "1.0.0")
	if s == nil {
		logger.Error("Failed to create MCP server instance")
		return nil
	}

	logger.Info("MCP server instance created successfully")

	ms := &ScenarioMCPServer{
		server:          s,
		logger:          logger,
		leagueHandler:   leagueHandler,
		scenarioHandler: scenarioHandler,
		routes:          make(map[string]toolHandler),
	}

	ms.register(leagueHandler.ListLeaguesTool(), leagueHandler.HandleListLeagues)
	ms.register(leagueHandler.GetStandingsTool(), leagueHandler.HandleGetStandings)
	ms.register(scenarioHandler.EvaluateScenarioTool(), scenarioHandler.HandleEvaluateScenario)
	ms.register(scenarioHandler.GetPlayoffOddsTool(), scenarioHandler.HandleGetPlayoffOdds)
	ms.register(scenarioHandler.SimulatePlayoffOddsTool(), scenarioHandler.HandleSimulatePlayoffOdds)
	ms.register(leagueHandler.GetPerformanceModelTool(), leagueHandler.HandleGetPerformanceModel)

	s.HandleListTools(ms.ListTools)
	s.HandleCallTool(ms.CallTool)

	logger.WithField("tools_count", len(ms.tools)).Info("All tools registered successfully")
	return ms
}

// Server returns the underlying MCP server for ServeStdio
func (ms *ScenarioMCPServer) Server() *server.DefaultServer {
	return ms.server
}

// Tools returns the registered tool definitions in registration order
func (ms *ScenarioMCPServer) Tools() []mcp.Tool {
	return ms.tools
}

func (ms *ScenarioMCPServer) register(tool mcp.Tool, handle toolHandler) {
	ms.tools = append(ms.tools, tool)
	ms.routes[tool.Name] = handle
}

// ListTools answers tools/list with every registered tool
func (ms *ScenarioMCPServer) ListTools(ctx context.Context, cursor *string) (*mcp.ListToolsResult, error) {
	ms.logger.WithField("tools_count", len(ms.tools)).Info("Listing available tools")

	return &mcp.ListToolsResult{
		Tools: ms.tools,
	}, nil
}

// CallTool routes a tools/call request to its handler
func (ms *ScenarioMCPServer) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ms.logger.WithFields(logrus.Fields{
		"tool": name,
		"args": arguments,
	}).Info("Tool called")

	handle, ok := ms.routes[name]
	if !ok {
		ms.logger.WithField("tool", name).Warn("Unknown tool called")
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{
					Type: "text",
					Text: "Unknown tool: " + name,
				},
			},
			IsError: true,
		}, nil
	}
	return handle(ctx, arguments)
}
