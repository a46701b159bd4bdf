// Copyright 2025 Certen Protocol
//
// Command oliviad is Olivia's CLI entry point: a thin switch over
// os.Args[1], wiring config -> storage -> keychain -> oracle in order,
// with context/signal-based graceful shutdown for the long-running
// `run` subcommand. The subcommand dispatcher itself stays minimal; a
// full flag/cobra surface lives above this, not in the core library.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oliviaoracle/olivia/pkg/config"
	"github.com/oliviaoracle/olivia/pkg/eventpath"
	"github.com/oliviaoracle/olivia/pkg/keychain"
	"github.com/oliviaoracle/olivia/pkg/oracle"
	"github.com/oliviaoracle/olivia/pkg/oracleevent"
	"github.com/oliviaoracle/olivia/pkg/oracleloop"
	"github.com/oliviaoracle/olivia/pkg/outcomepkg"
	"github.com/oliviaoracle/olivia/pkg/seed"
	"github.com/oliviaoracle/olivia/pkg/storage"
	"github.com/oliviaoracle/olivia/pkg/storage/memstore"
	"github.com/oliviaoracle/olivia/pkg/storage/sqlstore"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: oliviad <add|run|derive|db|check-config> [args]")
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "run":
		err = runRun(os.Args[2:])
	case "derive":
		err = runDerive(os.Args[2:])
	case "db":
		err = runDB(os.Args[2:])
	case "check-config":
		err = runCheckConfig(os.Args[2:])
	default:
		err = fmt.Errorf("unknown subcommand %q", os.Args[1])
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "oliviad:", err)
		os.Exit(1)
	}
}

func configPathFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "olivia.yaml", "path to the YAML configuration file")
}

func loadSecretConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.RequireSecretSeed(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendSQL:
		client, err := sqlstore.NewClient(ctx, sqlstore.DefaultConfig(cfg.Storage.DSN))
		if err != nil {
			return nil, nil, fmt.Errorf("connect storage: %w", err)
		}
		return sqlstore.NewStore(client), func() { client.Close() }, nil
	case config.BackendMemory, "":
		return memstore.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown database backend %q", cfg.Storage.Backend)
	}
}

// buildOracle wires the keychain and storage backend together into an
// Oracle, returning the same store handle so a caller that also needs
// direct storage access (e.g. the oracle loop's node dispatch) shares
// the one live backend instance rather than opening a second one.
func buildOracle(ctx context.Context, cfg *config.Config) (*oracle.Oracle, storage.Store, func(), error) {
	sd, err := seed.FromHex(cfg.SecretSeed)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse secret_seed: %w", err)
	}
	kc, err := keychain.New(sd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("derive keychain: %w", err)
	}
	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	o, err := oracle.New(ctx, store, kc)
	if err != nil {
		closeStore()
		return nil, nil, nil, fmt.Errorf("construct oracle: %w", err)
	}
	return o, store, closeStore, nil
}

// parseEntity parses the `add` subcommand's argument: either
// "/p/n.kind" (announce) or "/p/n.kind=outcome" (announce-then-attest).
func parseEntity(s string) (eventpath.EventId, string, bool, error) {
	idPart, outcomePart, hasOutcome := strings.Cut(s, "=")
	id, err := eventpath.ParseEventId(idPart)
	if err != nil {
		return eventpath.EventId{}, "", false, fmt.Errorf("parse event id %q: %w", idPart, err)
	}
	return id, outcomePart, hasOutcome, nil
}

func runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := configPathFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: oliviad add <path.kind[=outcome]>")
	}

	cfg, err := loadSecretConfig(*configPath)
	if err != nil {
		return err
	}
	ctx := context.Background()
	o, _, closeStore, err := buildOracle(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	id, outcomeStr, hasOutcome, err := parseEntity(fs.Arg(0))
	if err != nil {
		return err
	}

	if err := o.AddEvent(ctx, oracleevent.Event{ID: id}); err != nil && !errors.Is(err, oracle.ErrAlreadyExists) {
		return fmt.Errorf("add_event %s: %w", id, err)
	}
	if !hasOutcome {
		fmt.Printf("announced %s\n", id)
		return nil
	}

	outcome, err := outcomepkg.ParseOutcome(id, outcomeStr)
	if err != nil {
		return fmt.Errorf("parse outcome %q for %s: %w", outcomeStr, id, err)
	}
	stamped := outcomepkg.NewStampedOutcome(outcome, time.Now())
	if err := o.CompleteEvent(ctx, stamped); err != nil {
		return fmt.Errorf("complete_event %s: %w", id, err)
	}
	fmt.Printf("attested %s=%s\n", id, outcomeStr)
	return nil
}

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := configPathFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadSecretConfig(*configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o, store, closeStore, err := buildOracle(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	loop := oracleloop.New(o, store, oracleloop.WithLogger(log.New(log.Writer(), "[run] ", log.LstdFlags)))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("oliviad: shutdown signal received")
		cancel()
	}()

	// Wiring real event/outcome/node ingest sources (Redis, tickers,
	// HTTP feeds) is the ingest layer's job, not this library's; without
	// any registered stream, Run returns immediately, so a production
	// deployment registers its sources via
	// AddEventStream/AddOutcomeStream/AddNodeStream before calling this
	// entry point from its own main.
	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("oracle loop: %w", err)
	}
	return nil
}

func runDerive(args []string) error {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	configPath := configPathFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: oliviad derive <event_id>")
	}

	cfg, err := loadSecretConfig(*configPath)
	if err != nil {
		return err
	}
	sd, err := seed.FromHex(cfg.SecretSeed)
	if err != nil {
		return fmt.Errorf("parse secret_seed: %w", err)
	}
	kc, err := keychain.New(sd)
	if err != nil {
		return fmt.Errorf("derive keychain: %w", err)
	}

	id, err := eventpath.ParseEventId(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}
	nonces, err := kc.NoncesForEvent(id)
	if err != nil {
		return fmt.Errorf("derive nonces: %w", err)
	}
	fmt.Printf("announcement_key=%x\n", kc.AnnouncementKey())
	for i, n := range nonces {
		fmt.Printf("nonce[%d]=%x\n", i, n.XOnly())
	}
	return nil
}

func runDB(args []string) error {
	if len(args) == 0 || args[0] != "init" {
		return fmt.Errorf("usage: oliviad db init")
	}
	fs := flag.NewFlagSet("db init", flag.ExitOnError)
	configPath := configPathFlag(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Storage.Backend != config.BackendSQL {
		return fmt.Errorf("db init requires storage.backend: sql, got %q", cfg.Storage.Backend)
	}

	ctx := context.Background()
	client, err := sqlstore.NewClient(ctx, sqlstore.DefaultConfig(cfg.Storage.DSN))
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}
	defer client.Close()

	if err := client.InitSchema(ctx); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	fmt.Println("schema applied")
	return nil
}

func runCheckConfig(args []string) error {
	fs := flag.NewFlagSet("check-config", flag.ExitOnError)
	configPath := configPathFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Println("config OK")
	return nil
}
