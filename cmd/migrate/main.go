package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/skilledlink/skilledlink-backend/pkg/config"
	"github.com/skilledlink/skilledlink-backend/pkg/db"
	"github.com/skilledlink/skilledlink-backend/pkg/logger"
	"github.com/skilledlink/skilledlink-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|create")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	flag.Parse()

	// create only touches the filesystem
	if *cmd == "create" {
		runCreate(*dir, *name)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	switch *cmd {
	case "up", "down", "status":
		runGoose(ctx, cfg, logg, *dir, *cmd)
	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

func runCreate(dir, name string) {
	if name == "" {
		fmt.Fprintln(os.Stderr, "missing -name for create")
		os.Exit(1)
	}
	path, err := migrate.CreateSQLMigration(dir, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create migration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("created migration:", path)
}

func runGoose(ctx context.Context, cfg *config.Config, logg *logger.Logger, dir, cmd string) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database unavailable", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "extracting sql handle", err)
		os.Exit(1)
	}

	if err := migrate.Run(ctx, sqlDB, dir, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "goose %s failed: %v\n", cmd, err)
		os.Exit(1)
	}
}
