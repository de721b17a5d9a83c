// Package main is the entrypoint for settings-dispatch (binary name "setctl").
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"

	"github.com/morezero/settings-dispatch/internal/config"
	"github.com/morezero/settings-dispatch/internal/server"
	"github.com/morezero/settings-dispatch/pkg/command"
	"github.com/morezero/settings-dispatch/pkg/db"
	"github.com/morezero/settings-dispatch/pkg/directory"
	"github.com/morezero/settings-dispatch/pkg/dispatch"
	"github.com/morezero/settings-dispatch/pkg/encode"
	"github.com/morezero/settings-dispatch/pkg/setting"
)

const usage = `Usage: setctl [command]
       setctl run [file]            Dispatch a command batch from file (default stdin) to stdout.
       setctl describe              Print the exposed methods and their parameters.
       setctl serve                 Start the dispatch server (COMMS, HTTP health).
       setctl list [ref] [standard] List declared targets from the directory (optional ref filter).
       setctl migrate up            Run directory database migrations.
       setctl migrate down          Roll back one migration (optional; not all migrations support down).
       setctl migrate status        Show migration status.
       setctl ensure-db [name]      Create database if missing (default name: settings_test). Uses DATABASE_URL host/user.
       setctl clear                 Truncate all directory tables; schema is preserved.
       setctl seed [file]           Seed the directory from a targets file (default TARGETS_FILE).

Commands:
  run [file]        (default) Read a JSON command batch and write one result record per line.
  describe          Print the capability registration table.
  serve             Start the COMMS dispatch server.
  list [ref] [standard]  List directory targets; "standard" hides composite and custom kinds.
  migrate up        Run database migrations only.
  migrate down      Roll back last migration (optional).
  migrate status    Show current migration status.
  ensure-db [name]  Create database (e.g. settings_test) on same host as DATABASE_URL.
  clear             Truncate directory data; schema preserved.
  seed [file]       Seed the directory from a targets JSON file.

Environment: TARGETS_FILE (run/serve), DATABASE_URL (list/migrate/clear/seed), MIGRATION_PATH, COMMS_URL, HTTP_PORT. See README.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "describe":
		if err := runDescribe(); err != nil {
			log.Fatalf("setctl describe: %v", err)
		}
		return
	case "list":
		ref, standardOnly := "", false
		for _, a := range args[1:] {
			if a == "standard" {
				standardOnly = true
			} else if ref == "" {
				ref = a
			}
		}
		if err := runList(ref, standardOnly); err != nil {
			log.Fatalf("setctl list: %v", err)
		}
		return
	case "migrate":
		if len(args) < 2 {
			log.Fatalf("setctl migrate: require subcommand (up, down, status)")
		}
		sub := args[1]
		switch sub {
		case "up":
			if err := runMigrateUp(); err != nil {
				log.Fatalf("setctl migrate up: %v", err)
			}
		case "status":
			if err := runMigrateStatus(); err != nil {
				log.Fatalf("setctl migrate status: %v", err)
			}
		case "down":
			if err := runMigrateDown(); err != nil {
				log.Fatalf("setctl migrate down: %v", err)
			}
		default:
			log.Fatalf("setctl migrate: unknown subcommand %q (use up, down, status)", sub)
		}
		return
	case "clear":
		if err := runClear(); err != nil {
			log.Fatalf("setctl clear: %v", err)
		}
		return
	case "seed":
		targetsFile := ""
		if len(args) > 1 {
			targetsFile = args[1]
		}
		if err := runSeed(targetsFile); err != nil {
			log.Fatalf("setctl seed: %v", err)
		}
		return
	case "ensure-db":
		dbName := "settings_test"
		if len(args) > 1 && args[1] != "" {
			dbName = args[1]
		}
		if err := runEnsureDB(dbName); err != nil {
			log.Fatalf("setctl ensure-db: %v", err)
		}
		return
	case "serve":
		if err := server.Run(); err != nil {
			log.Fatalf("setctl: %v", err)
		}
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "run", "":
		batchFile := ""
		if cmd == "run" && len(args) > 1 {
			batchFile = args[1]
		}
		if err := runBatch(batchFile); err != nil {
			log.Fatalf("setctl: %v", err)
		}
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}
}

// runBatch reads one JSON command batch and streams result records to
// stdout. A structurally malformed batch aborts with a non-zero exit.
func runBatch(batchFile string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.TargetsFile == "" {
		return fmt.Errorf("TARGETS_FILE is required for run")
	}

	store, err := setting.LoadFile(cfg.TargetsFile)
	if err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if batchFile != "" {
		f, err := os.Open(batchFile)
		if err != nil {
			return fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()
		in = f
	}

	disp := dispatch.NewDispatcher(dispatch.DispatcherParams{
		Registry: setting.Capabilities(),
		Resolver: store,
	})

	dec := command.NewDecoder(in)
	enc := encode.NewEncoder(os.Stdout)

	err = disp.Run(context.Background(), dec, enc.Write)
	var decodeErr *command.DecodeError
	if errors.As(err, &decodeErr) {
		return fmt.Errorf("malformed command batch: %w", decodeErr)
	}
	return err
}

// runDescribe prints the registration table.
func runDescribe() error {
	reg := setting.Capabilities()
	for _, desc := range reg.Describe() {
		fmt.Printf("%s", desc.Name)
		fmt.Print("(")
		for i, p := range desc.Params {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Printf("%s %s", p.Name, p.Kind)
			if p.Optional {
				fmt.Printf(" = %v", p.Default)
			}
		}
		fmt.Printf(") -> %s\n", desc.Returns)
	}
	return nil
}

// runList prints declared targets from the directory.
func runList(ref string, standardOnly bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	dir := directory.New(db.NewRepository(pool))
	infos, err := dir.List(ctx, directory.ListParams{Ref: ref, StandardOnly: standardOnly})
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No targets declared.")
		return nil
	}
	for _, info := range infos {
		state := "enabled"
		if !info.Enabled {
			state = "disabled"
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", info.ID, info.Kind, info.Version, state)
	}
	return nil
}

func runMigrateUp() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	migrationSQL, err := db.LoadMigrationFiles(cfg.MigrationPath)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	if err := db.RunMigrations(ctx, pool, migrationSQL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func runMigrateStatus() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return db.MigrationStatus(ctx, pool, cfg.MigrationPath)
}

func runMigrateDown() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return db.MigrationDown(ctx, pool, cfg.MigrationPath)
}

func runClear() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.ClearDirectory(ctx, pool); err != nil {
		return fmt.Errorf("clear directory: %w", err)
	}
	return nil
}

func runEnsureDB(dbName string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	// Replace path with target database name; query (e.g. sslmode) is kept on u.RawQuery.
	u.Path = "/" + dbName
	targetURL := u.String()
	ctx := context.Background()
	if err := db.EnsureDatabase(ctx, targetURL); err != nil {
		return err
	}
	fmt.Printf("Database %q is ready.\n", dbName)
	return nil
}

func runSeed(targetsFileOverride string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	targetsPath := targetsFileOverride
	if targetsPath == "" {
		targetsPath = cfg.TargetsFile
	}
	if targetsPath == "" {
		return fmt.Errorf("a targets file is required (argument or TARGETS_FILE)")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.SeedFromTargetsFile(ctx, pool, targetsPath); err != nil {
		return fmt.Errorf("seed targets: %w", err)
	}
	return nil
}
