// Package seeder drives the demo-data workflow against a backend: farms, investments on
// each farm, market orders around each farm's share price, then investor onboarding.
// Every call is issued sequentially and checked on its own; no failure ends a run.
package seeder

import (
	"context"
	"io"
	"os"

	"github.com/Lumos-Labs-HQ/farmseed/internal/backend"
	"github.com/Lumos-Labs-HQ/farmseed/internal/dataset"
	"github.com/Lumos-Labs-HQ/farmseed/internal/ledger"
	"github.com/Lumos-Labs-HQ/farmseed/internal/metrics"
	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Recorder persists what a run did. *ledger.Ledger satisfies it.
type Recorder interface {
	RecordFarm(ctx context.Context, f ledger.Farm) error
	RecordCall(ctx context.Context, c ledger.Call) error
}

// OrderPlan is one market order placed on every created farm, priced at Percent of the
// farm's share price.
type OrderPlan struct {
	Side     types.OrderSide
	Quantity uint64
	Percent  uint64
}

var DefaultOrders = []OrderPlan{
	{Side: types.Buy, Quantity: 100, Percent: 95},
	{Side: types.Buy, Quantity: 50, Percent: 98},
	{Side: types.Sell, Quantity: 75, Percent: 105},
	{Side: types.Sell, Quantity: 25, Percent: 102},
}

var DefaultInvestmentAmounts = []types.E8s{
	5_000_000_000_000,
	2_500_000_000_000,
	1_000_000_000_000,
	7_500_000_000_000,
}

const DefaultTransferAmount types.E8s = 10_000 * types.E8sPerToken

type Options struct {
	RunID             string
	InvestmentAmounts []types.E8s
	Orders            []OrderPlan
	TransferAmount    types.E8s
	TransferFee       types.E8s // 0 leaves the fee to the ledger
	SkipInvestments   bool
	SkipOrders        bool
	DryRun            bool

	Out      io.Writer // console progress, defaults to stdout
	Logger   zerolog.Logger
	Recorder Recorder
	Metrics  *metrics.Recorder
}

type Seeder struct {
	client  backend.Client
	dataset *dataset.Dataset
	opts    Options
	seq     int

	ok   *color.Color
	fail *color.Color
	warn *color.Color
	info *color.Color
	head *color.Color
}

func New(client backend.Client, ds *dataset.Dataset, opts Options) *Seeder {
	if ds == nil {
		ds = dataset.Default()
	}
	if opts.InvestmentAmounts == nil {
		opts.InvestmentAmounts = DefaultInvestmentAmounts
	}
	if opts.Orders == nil {
		opts.Orders = DefaultOrders
	}
	if opts.TransferAmount == 0 {
		opts.TransferAmount = DefaultTransferAmount
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	return &Seeder{
		client:  client,
		dataset: ds,
		opts:    opts,
		ok:      color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		info:    color.New(color.FgCyan),
		head:    color.New(color.FgCyan, color.Bold),
	}
}

// RunAll seeds farms and then onboards investors.
func (s *Seeder) RunAll(ctx context.Context) (Summary, InvestorSummary) {
	farms := s.RunFarms(ctx)
	investors := s.RunInvestors(ctx)
	return farms, investors
}

// record writes one call outcome to the ledger. Ledger failures are logged, never returned.
func (s *Seeder) record(ctx context.Context, method, target string, amount types.E8s, err error) {
	s.seq++
	if s.opts.Recorder == nil {
		return
	}
	call := ledger.Call{
		RunID:   s.opts.RunID,
		Seq:     s.seq,
		Method:  method,
		Target:  target,
		Amount:  uint64(amount),
		Outcome: backend.Outcome(err),
	}
	if err != nil {
		call.Error = err.Error()
	}
	// Recorded even after ctx is cancelled.
	if rerr := s.opts.Recorder.RecordCall(context.WithoutCancel(ctx), call); rerr != nil {
		s.opts.Logger.Warn().Err(rerr).Str("method", method).Msg("failed to record call")
	}
}

func (s *Seeder) recordFarm(ctx context.Context, farm *types.Farm) {
	s.opts.Metrics.FarmCreated()
	if s.opts.Recorder == nil {
		return
	}
	err := s.opts.Recorder.RecordFarm(context.WithoutCancel(ctx), ledger.Farm{
		RunID:      s.opts.RunID,
		FarmID:     string(farm.ID),
		Name:       farm.Name,
		SharePrice: uint64(farm.SharePrice),
	})
	if err != nil {
		s.opts.Logger.Warn().Err(err).Str("farm_id", string(farm.ID)).Msg("failed to record farm")
	}
}
