package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/amonks/changespec/changespec"
	"github.com/amonks/changespec/checks"
	"github.com/amonks/changespec/internal/config"
	"github.com/amonks/changespec/internal/paths"
	"github.com/amonks/changespec/synccache"
	"github.com/amonks/changespec/syncer"
)

// app bundles everything a command needs.
type app struct {
	dataDir string
	config  *config.Config
	store   *changespec.FileStore
	cache   *synccache.Cache
	runner  *checks.Runner
	syncer  *syncer.Syncer
	logger  *log.Logger
}

// openApp loads configuration and wires the store, cache, runner and syncer.
// Log output goes to logOut; nil selects stderr with --verbose and discards
// otherwise.
func openApp(logOut io.Writer) (*app, error) {
	if logOut == nil {
		logOut = io.Discard
		if rootVerbose {
			logOut = os.Stderr
		}
	}
	logger := log.New(logOut, "cs: ", log.LstdFlags)

	dataDir, err := paths.DefaultDataDir()
	if err != nil {
		return nil, err
	}
	stateDir, err := paths.DefaultStateDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dataDir)
	if err != nil {
		return nil, err
	}

	cache, err := synccache.OpenDir(stateDir)
	if err != nil {
		return nil, fmt.Errorf("open sync cache: %w", err)
	}

	store := changespec.NewFileStore(paths.ProjectsDir(dataDir))
	runner := checks.NewRunner(checks.Config{
		SubmittedCommand: cfg.Commands.Submitted,
		CommentsCommand:  cfg.Commands.Comments,
		PresubmitCommand: cfg.Commands.Presubmit,
		CloudRoot:        cfg.Workspace.CloudRoot,
		SrcBase:          cfg.Workspace.SrcBase,
		PresubmitDir:     paths.PresubmitsDir(dataDir),
		Timeout:          cfg.Sync.CheckTimeout.Duration,
		Logger:           logger,
	})

	s, err := syncer.New(syncer.Config{
		Store:       store,
		Cache:       cache,
		Checker:     runner,
		MinInterval: cfg.Sync.MinInterval.Duration,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		dataDir: dataDir,
		config:  cfg,
		store:   store,
		cache:   cache,
		runner:  runner,
		syncer:  s,
		logger:  logger,
	}, nil
}
