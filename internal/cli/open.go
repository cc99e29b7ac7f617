package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/blockaviate/internal/config"
	"github.com/roach88/blockaviate/internal/ledger"
	"github.com/roach88/blockaviate/internal/store"
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeConfig      = "E002" // Configuration could not be resolved
	ErrCodeStorage     = "E003" // Backing log unavailable
	ErrCodeCorrupt     = "E004" // Backing log failed to parse
	ErrCodeIntegrity   = "E005" // Chain failed verification
	ErrCodeInvalidArgs = "E006" // Bad command arguments
	ErrCodeInput       = "E007" // Input file unreadable
)

// resolveConfig loads settings and applies command-line overrides.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(opts.ConfigPath, config.FromEnviron())
	if err != nil {
		return config.Config{}, err
	}

	if opts.Database != "" {
		cfg.Path = opts.Database
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newFormatter builds the output formatter for a command.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// commandContext returns the command's context, or a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openLedger resolves config, installs the logger and opens the ledger.
// Errors are reported through f and returned as ExitErrors.
func openLedger(ctx context.Context, opts *RootOptions, cmd *cobra.Command, f *OutputFormatter) (*ledger.Ledger, config.Config, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), nil)
		return nil, config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr(), opts.Verbose)
	slog.SetDefault(logger)

	backend, err := cfg.OpenBackend(ctx)
	if err != nil {
		_ = f.Error(ErrCodeStorage, err.Error(), map[string]string{"path": cfg.Path})
		return nil, cfg, WrapExitError(ExitCommandError, "failed to open ledger storage", err)
	}

	ledgerOpts := []ledger.Option{ledger.WithLogger(logger)}
	if opts.Clock != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithClock(opts.Clock))
	}

	l, err := ledger.Open(ctx, backend, ledgerOpts...)
	if err != nil {
		backend.Close()
		code := ErrCodeStorage
		if store.IsCorruptRecord(err) {
			code = ErrCodeCorrupt
		}
		_ = f.Error(code, err.Error(), map[string]string{"path": cfg.Path})
		return nil, cfg, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}

	f.VerboseLog("Opened %s ledger at %s (%d blocks)", cfg.Backend, cfg.Path, l.Len())
	return l, cfg, nil
}
