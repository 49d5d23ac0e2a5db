package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"oceaneye/internal/catalog"
	"oceaneye/internal/config"
	"oceaneye/internal/digest"
	"oceaneye/internal/history"
	"oceaneye/internal/identification"
	"oceaneye/internal/imaging"
	"oceaneye/internal/logging"
	"oceaneye/internal/services"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) isVerbose() bool {
	return c.verbose != nil && *c.verbose
}

// newLogger writes to the command's stderr and the configured log file.
// Short-lived commands keep the console quiet below warn unless --verbose is
// set; the log file and the server follow logging.level.
func (c *commandContext) newLogger(cmd *cobra.Command, longRunning bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	consoleLevel := ""
	switch {
	case c.isVerbose():
		consoleLevel = "debug"
	case !longRunning:
		consoleLevel = "warn"
	}
	return logging.NewFromConfig(cfg, cmd.ErrOrStderr(), consoleLevel)
}

type stackOptions struct {
	algorithm   string
	reencode    bool
	noHistory   bool
	longRunning bool
}

// stack bundles the collaborators one command invocation needs.
type stack struct {
	cfg        *config.Config
	logger     *slog.Logger
	hasher     *digest.Hasher
	client     *catalog.Client
	resolver   *catalog.Resolver
	history    *history.Store
	identifier *identification.Identifier
	reencode   bool
}

func (c *commandContext) openStack(cmd *cobra.Command, opts stackOptions) (*stack, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.newLogger(cmd, opts.longRunning)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	algorithmName := cfg.Digest.Algorithm
	if strings.TrimSpace(opts.algorithm) != "" {
		algorithmName = opts.algorithm
	}
	algorithm, err := digest.ParseAlgorithm(algorithmName)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cli", "select algorithm", "", err)
	}
	hasher, err := digest.New(algorithm)
	if err != nil {
		return nil, err
	}

	client, err := catalog.NewClient(cfg.Catalog.URL,
		catalog.WithTimeout(cfg.CatalogTimeout()),
		catalog.WithUserAgent(cfg.Catalog.UserAgent),
		catalog.WithMaxBodyBytes(cfg.Catalog.MaxBodyBytes),
		catalog.WithLogger(logger),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "catalog client", "", err)
	}
	resolver := catalog.NewResolver(client, logger)

	s := &stack{
		cfg:      cfg,
		logger:   logger,
		hasher:   hasher,
		client:   client,
		resolver: resolver,
		reencode: cfg.Digest.Reencode || opts.reencode,
	}

	idOpts := []identification.Option{identification.WithLogger(logger)}
	if s.reencode {
		idOpts = append(idOpts, identification.WithCanonicalizer(imaging.Canonicalize))
	}
	if cfg.History.Enabled && !opts.noHistory {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check history.path or set history.enabled = false"),
				logging.String(logging.FieldImpact, "identifications will not be recorded"),
			)
		} else {
			s.history = store
			idOpts = append(idOpts, identification.WithRecorder(store))
		}
	}

	identifier, err := identification.New(hasher, resolver, idOpts...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.identifier = identifier
	return s, nil
}

func (s *stack) Close() error {
	if s == nil || s.history == nil {
		return nil
	}
	return s.history.Close()
}

// openHistory opens the history store for the history subcommands.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "open history", "history is disabled (history.enabled = false)", nil)
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

var errMissingImage = errors.New("an image path (or - for stdin) is required")
