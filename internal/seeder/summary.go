package seeder

import (
	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
)

// FarmResult is what happened to one farm spec during a run.
type FarmResult struct {
	Spec              types.FarmSpec
	Farm              *types.Farm // nil when creation failed
	Err               error
	InvestmentsOK     int
	InvestmentsFailed int
	OrdersOK          int
	OrdersFailed      int
}

type Summary struct {
	RunID   string
	DryRun  bool
	Results []FarmResult
	Farms   []types.Farm // successfully created, in creation order

	InvestmentsOK     int
	InvestmentsFailed int
	OrdersOK          int
	OrdersFailed      int
}

func (s *Summary) add(r FarmResult) {
	s.Results = append(s.Results, r)
	if r.Farm != nil {
		s.Farms = append(s.Farms, *r.Farm)
	}
	s.InvestmentsOK += r.InvestmentsOK
	s.InvestmentsFailed += r.InvestmentsFailed
	s.OrdersOK += r.OrdersOK
	s.OrdersFailed += r.OrdersFailed
}

// Created is the number of farms that were created and validated.
func (s Summary) Created() int { return len(s.Farms) }

func (s Summary) CallsOK() int {
	return s.Created() + s.InvestmentsOK + s.OrdersOK
}

func (s Summary) CallsFailed() int {
	return len(s.Results) - s.Created() + s.InvestmentsFailed + s.OrdersFailed
}

type InvestorResult struct {
	Investor    types.InvestorSpec
	Profile     *types.Profile
	ProfileErr  error
	Block       types.BlockIndex
	TransferErr error
}

type InvestorSummary struct {
	RunID   string
	DryRun  bool
	Results []InvestorResult

	ProfilesOK  int
	TransfersOK int
}

func (s *InvestorSummary) add(r InvestorResult) {
	s.Results = append(s.Results, r)
	if r.ProfileErr == nil {
		s.ProfilesOK++
	}
	if r.TransferErr == nil {
		s.TransfersOK++
	}
}

func (s InvestorSummary) CallsOK() int { return s.ProfilesOK + s.TransfersOK }

func (s InvestorSummary) CallsFailed() int { return 2*len(s.Results) - s.CallsOK() }

func (s *Seeder) printSummary(sum Summary) {
	out := s.opts.Out
	s.head.Fprintf(out, "\n🎉 Seeding complete: %d of %d farms created\n", sum.Created(), len(sum.Results))
	s.info.Fprintf(out, "   Investments: %d ok, %d failed\n", sum.InvestmentsOK, sum.InvestmentsFailed)
	s.info.Fprintf(out, "   Market orders: %d ok, %d failed\n", sum.OrdersOK, sum.OrdersFailed)
	if sum.RunID != "" {
		s.info.Fprintf(out, "   Run: %s\n", sum.RunID)
	}

	if len(sum.Farms) == 0 {
		s.warn.Fprintln(out, "⚠️  No farms were created")
		return
	}
	s.head.Fprintln(out, "\n📋 Farm IDs for testing:")
	for _, farm := range sum.Farms {
		s.ok.Fprintf(out, "   - %s: %s\n", farm.Name, farm.ID)
	}
}

func (s *Seeder) printInvestorSummary(sum InvestorSummary) {
	out := s.opts.Out
	s.head.Fprintf(out, "\n🎉 Investor onboarding complete: %d of %d profiles, %d of %d transfers\n",
		sum.ProfilesOK, len(sum.Results), sum.TransfersOK, len(sum.Results))
	for _, r := range sum.Results {
		status, c := "✅", s.ok
		if r.ProfileErr != nil || r.TransferErr != nil {
			status, c = "⚠️ ", s.warn
		}
		c.Fprintf(out, "   %s %s: %s\n", status, r.Investor.Name, r.Investor.Principal)
	}
}
