package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/Lumos-Labs-HQ/farmseed/internal/backend"
	"github.com/Lumos-Labs-HQ/farmseed/internal/config"
	"github.com/Lumos-Labs-HQ/farmseed/internal/dataset"
	"github.com/Lumos-Labs-HQ/farmseed/internal/ledger"
	"github.com/Lumos-Labs-HQ/farmseed/internal/logging"
	"github.com/Lumos-Labs-HQ/farmseed/internal/metrics"
	"github.com/Lumos-Labs-HQ/farmseed/internal/seeder"
	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// session is everything one seeding command needs, built from config and flags.
type session struct {
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Recorder
	ledger  *ledger.Ledger // nil when the ledger is disabled
	client  backend.Client
	dataset *dataset.Dataset
	runID   string
	dryRun  bool
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openLedger(ctx context.Context, cfg *config.Config) (*ledger.Ledger, error) {
	ledgerURL, err := cfg.GetLedgerURL()
	if err != nil {
		return nil, err
	}
	l, err := ledger.Open(ctx, cfg.Ledger.Provider, ledgerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open run ledger: %w", err)
	}
	return l, nil
}

func newSession(ctx context.Context, cmd *cobra.Command, command string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if noLedger, _ := cmd.Flags().GetBool("no-ledger"); noLedger {
		cfg.Ledger.Enabled = false
	}
	if retries, _ := cmd.Flags().GetInt("retry"); cmd.Flags().Changed("retry") {
		if retries < 0 {
			return nil, fmt.Errorf("--retry cannot be negative")
		}
		cfg.Backend.RetryAttempts = retries
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ds, err := dataset.Resolve(cfg.Dataset)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		log:     logging.New(cfg.Log.Level, cfg.Log.Format).With().Str("command", command).Logger(),
		metrics: metrics.New(),
		dataset: ds,
		dryRun:  dryRun,
	}

	if dryRun {
		s.client = backend.NewDryRun(s.log)
	} else {
		force, _ := cmd.Flags().GetBool("force")
		if !isLocalEndpoint(cfg.Backend.Endpoint) && !askUserConfirmation(force,
			fmt.Sprintf("Seed demo data into %s?", cfg.Backend.Endpoint)) {
			return nil, fmt.Errorf("seeding cancelled")
		}

		client, err := backend.NewHTTPClient(backend.Options{
			Endpoint:       cfg.Backend.Endpoint,
			CanisterID:     cfg.Backend.CanisterID,
			LedgerCanister: cfg.Backend.LedgerCanister,
			APIKey:         cfg.APIKey(),
			Timeout:        cfg.Timeout(),
			RetryAttempts:  cfg.Backend.RetryAttempts,
			CallsPerSecond: cfg.Backend.CallsPerSecond,
			Logger:         s.log,
			Metrics:        s.metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create backend client: %w", err)
		}
		s.client = client
	}

	if cfg.Ledger.Enabled {
		l, err := openLedger(ctx, cfg)
		if err != nil {
			return nil, err
		}
		runID, err := l.StartRun(ctx, command, cfg.Backend.Endpoint, dryRun)
		if err != nil {
			l.Close()
			return nil, err
		}
		s.ledger = l
		s.runID = runID
	} else {
		s.runID = uuid.NewString()
	}

	s.log = s.log.With().Str("run_id", s.runID).Logger()
	return s, nil
}

func (s *session) seeder(cmd *cobra.Command) *seeder.Seeder {
	skipOrders, _ := cmd.Flags().GetBool("skip-orders")
	skipInvestments, _ := cmd.Flags().GetBool("skip-investments")

	opts := seeder.Options{
		RunID:             s.runID,
		InvestmentAmounts: s.cfg.InvestmentAmounts(),
		TransferAmount:    types.E8s(s.cfg.Seed.TransferAmount),
		TransferFee:       types.E8s(s.cfg.Seed.TransferFee),
		SkipInvestments:   skipInvestments,
		SkipOrders:        skipOrders,
		DryRun:            s.dryRun,
		Out:               cmd.OutOrStdout(),
		Logger:            s.log,
		Metrics:           s.metrics,
	}
	if s.ledger != nil {
		opts.Recorder = s.ledger
	}
	return seeder.New(s.client, s.dataset, opts)
}

// finish closes the run in the ledger and writes the metrics textfile. It runs even
// after the seeding context has been cancelled.
func (s *session) finish(ctx context.Context, farmsCreated, callsOK, callsFailed int) {
	cancelled := ctx.Err() != nil
	ctx = context.WithoutCancel(ctx)

	if s.ledger != nil {
		if err := s.ledger.FinishRun(ctx, s.runID, farmsCreated, callsOK, callsFailed); err != nil {
			s.log.Warn().Err(err).Msg("failed to finish run in ledger")
		}
		s.ledger.Close()
	}

	if s.cfg.MetricsFile != "" {
		if err := s.metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
			s.log.Warn().Err(err).Str("path", s.cfg.MetricsFile).Msg("failed to write metrics file")
		}
	}

	switch {
	case cancelled:
		color.Yellow("⚠️  Run %s was interrupted", s.runID)
	case callsFailed > 0:
		color.Yellow("⚠️  %d calls failed, see the log above for details", callsFailed)
	}
}

func addSeedFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Print the planned calls without contacting the backend")
	cmd.Flags().Bool("no-ledger", false, "Do not record this run in the ledger database")
	cmd.Flags().Int("retry", 0, "Retry transport failures this many times")
}

func isLocalEndpoint(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0":
		return true
	}
	return strings.HasSuffix(u.Hostname(), ".localhost")
}

func askUserConfirmation(force bool, message string) bool {
	if force {
		return true
	}

	fmt.Printf("🤔 %s (y/N): ", message)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y"
}
