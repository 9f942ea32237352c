package main

import (
	"fmt"
	"os"

	"github.com/hugohenrick/verduleria-api/internal/config"
	"github.com/hugohenrick/verduleria-api/internal/infrastructure/database"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/joho/godotenv"
)

const usage = "uso: migration [up|down|version]"

func main() {
	// Cargar variables de entorno
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error cargando configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if err := run(cmd, cfg, log); err != nil {
		log.Error("error de migración", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func run(cmd string, cfg *config.Config, log logger.Logger) error {
	mg, err := database.NewMigrator(cfg.MigrationsPath, cfg.DSN())
	if err != nil {
		return err
	}
	defer mg.Close()

	switch cmd {
	case "up":
		if err := mg.Up(); err != nil {
			return err
		}
	case "down":
		if err := mg.Down(); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("comando desconocido %q: %s", cmd, usage)
	}

	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	log.Info("migraciones", "command", cmd, "version", version, "dirty", dirty)
	return nil
}
