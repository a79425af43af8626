// Aplica o revierte las migraciones SQL embebidas.
// Uso: go run ./cmd/migrate [-down N]
package main

import (
	"flag"

	"stockmaster/internal/config"
	"stockmaster/internal/infra"

	"github.com/rs/zerolog/log"
)

func main() {
	down := flag.Int("down", 0, "revertir N migraciones en lugar de aplicar")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.SetupLogger(cfg.Env, cfg.LogLevel)

	if *down > 0 {
		if err := infra.RollbackMigrations(cfg.DatabaseURL, *down); err != nil {
			log.Fatal().Err(err).Int("steps", *down).Msg("rollback failed")
		}
		log.Info().Int("steps", *down).Msg("migraciones revertidas")
		return
	}
	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrate up failed")
	}
	log.Info().Msg("migraciones aplicadas")
}
