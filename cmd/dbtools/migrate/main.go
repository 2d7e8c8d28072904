// cmd/dbtools/migrate/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Courtside/internal/config"
	"github.com/codr1/Courtside/internal/db"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		configPath     = flag.String("config", "", "Path to the YAML configuration file (supplies the database path)")
		dbPath         = flag.String("db", "", "Path to SQLite database (overrides -config)")
		migrationsPath = flag.String("migrations", "", "Path to migrations directory (defaults to the embedded migrations)")
		command        = flag.String("command", "", "Command to run (up, down, version, steps, force)")
		steps          = flag.Int("n", 0, "Step count for steps, or version for force")
	)
	flag.Parse()

	if *dbPath == "" && *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
		}
		*dbPath = cfg.Database.Filename
	}
	if *dbPath == "" || *command == "" {
		flag.Usage()
		os.Exit(1)
	}

	m, err := db.NewMigrator(*dbPath, *migrationsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration init failed")
	}
	defer m.Close()

	logger := log.With().Str("db", *dbPath).Str("command", *command).Logger()

	switch *command {
	case "up":
		err = ignoreNoChange(m.Up())
	case "down":
		err = ignoreNoChange(m.Down())
	case "steps":
		if *steps == 0 {
			logger.Fatal().Msg("steps requires a non-zero -n")
		}
		err = ignoreNoChange(m.Steps(*steps))
	case "force":
		err = m.Force(*steps)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("Version: none")
			return
		}
		if verr != nil {
			logger.Fatal().Err(verr).Msg("Get version failed")
		}
		fmt.Printf("Version: %d, Dirty: %v\n", version, dirty)
		return
	default:
		logger.Fatal().Msg("Unknown command")
	}

	if err != nil {
		logger.Fatal().Err(err).Msg("Migration failed")
	}
	logger.Info().Msg("Migration complete")
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
