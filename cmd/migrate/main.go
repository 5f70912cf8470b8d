package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/orderpost/backend/internal/infrastructure/config"
	"github.com/orderpost/backend/internal/infrastructure/logger"
	"github.com/orderpost/backend/internal/infrastructure/migration"
)

const usage = `Manage the order posting database schema.

Usage:
  migrate [flags] <command>

Commands:
  up               apply all pending migrations
  down             roll back the whole schema (destroys posted orders)
  step <n>         apply n migrations; negative n rolls back
  version          print the current schema version
  force <version>  overwrite the recorded version to clear a dirty state

Flags:
  -path       migrations directory (default: ./migrations)
  -log-level  debug, info, warn or error (default: info)

Database settings come from config.yaml and ORDERPOST_DATABASE_* variables.`

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load configuration", zap.Error(err))
	}

	if migrationsPath == "" {
		migrationsPath = resolveMigrationsPath()
	}
	if migrationsPath, err = filepath.Abs(migrationsPath); err != nil {
		log.Fatal("resolve migrations path", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("ping database", zap.Error(err))
	}

	mg, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("create migrator", zap.Error(err))
	}
	defer mg.Close()

	if err := run(mg, log, flag.Args()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
}

func run(mg *migration.Migrator, log *zap.Logger, args []string) error {
	switch command := args[0]; command {
	case "up":
		return mg.Up()

	case "down":
		return mg.Down()

	case "step":
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return mg.Steps(n)

	case "version":
		version, dirty, err := mg.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("no migrations applied")
		} else {
			log.Info("current schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}
		return nil

	case "force":
		version, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		return mg.Force(version)

	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func intArg(args []string, form string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: migrate %s", form)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", args[1])
	}
	return n, nil
}

// resolveMigrationsPath tries the working directory first, then the
// directory layout of an installed binary.
func resolveMigrationsPath() string {
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return defaultMigrationsPath
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return defaultMigrationsPath
}
