package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"losgame/internal/api"
	"losgame/internal/config"
	"losgame/internal/engine"
	"losgame/internal/transport"
	"losgame/internal/world"
	"losgame/internal/worldgen"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found, using environment variables only")
		}
	} else {
		log.Println("loaded environment from ../.env")
	}

	log.Println("================================")
	log.Println(" LOS SHOOTER - GAME SERVER")
	log.Println("================================")

	appConfig := config.Load()
	port := strconv.Itoa(appConfig.Server.Port)

	log.Printf("world: %dx%d units, %d bots, seed %d",
		int(config.TerrainSize), int(config.TerrainSize), appConfig.Runtime.BotCount, appConfig.Runtime.WorldSeed)

	obstacles := worldgen.Generate(worldgen.Config{
		Seed:          appConfig.Runtime.WorldSeed,
		WorldSize:     config.TerrainSize,
		ObstacleCount: 400,
	})
	w := world.New(config.TerrainSize, config.CellSize, obstacles)
	log.Printf("generated %d obstacles", len(obstacles))

	orchestrator := engine.New(w, appConfig.Runtime.BotCount, appConfig.Runtime.WorldSeed)
	go orchestrator.Run()
	log.Println("tick orchestrator ready (idle until first connection)")

	if appConfig.Runtime.DebugServer {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = appConfig.Runtime.DebugServerAddr
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("debug server disabled: %v", err)
		}
	}

	wsHandler := transport.New(orchestrator)

	router := api.NewRouter(api.RouterConfig{
		WebSocketHandler: wsHandler,
		Stats:            orchestrator,
	})

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("server listening on http://localhost:%s", port)
		log.Printf("  - websocket: ws://localhost:%s/ws", port)
		log.Printf("  - stats:     http://localhost:%s/api/stats", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Println("server ready, press Ctrl+C to stop")
	<-quit

	log.Println("shutting down...")
	_ = server.Close()
	log.Println("goodbye")
}
