package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/meters-dashboard/internal/simulator"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	backend := simulator.NewBackend(config.SimulatorMeters(), time.Now().UnixNano(), log.Logger)
	app := fiber.New()
	backend.Register(app)

	addr := config.SimulatorAddr()
	log.Info().Str("addr", addr).Int("meters", backend.Len()).Msg("simulated meters API listening")
	log.Fatal().Err(app.Listen(addr)).Msg("simulator exit")
}
