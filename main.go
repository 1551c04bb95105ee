package main

import (
	"flag"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nourish-labs/mealplan-mcp/config"
	"github.com/nourish-labs/mealplan-mcp/mapbox"
	"github.com/nourish-labs/mealplan-mcp/mcp"
	"github.com/nourish-labs/mealplan-mcp/observe"
)

const serverVersion = "0.1.0"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Warn("config not loaded, using defaults", "error", err)
		cfg = config.Default()
	}

	recorder := observe.NewRecorder(slog.Default())

	var storeFinder *mapbox.Client
	if cfg.Mapbox.Token() != "" {
		storeFinder, err = mapbox.NewClient(cfg.Mapbox, slog.Default())
		if err != nil {
			slog.Error("failed to create mapbox client", "error", err)
			return
		}
	} else {
		slog.Warn("mapbox access token not set, search_nearby_stores disabled")
	}

	s := server.NewMCPServer(
		"mealplan-mcp",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	mcp.RegisterTools(s, cfg, recorder, storeFinder)
	slog.Info("tools registered", "database", cfg.Database.DBType, "store_finder", storeFinder != nil)

	if err := server.ServeStdio(s); err != nil {
		fmt.Printf("Server error: %v\n", err)
	}
}
