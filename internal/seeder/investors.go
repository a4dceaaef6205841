package seeder

import (
	"context"

	"github.com/Lumos-Labs-HQ/farmseed/internal/backend"
	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
)

// RunInvestors creates a profile for every investor and funds their principal. The
// transfer is attempted even when the profile call fails.
func (s *Seeder) RunInvestors(ctx context.Context) InvestorSummary {
	sum := InvestorSummary{RunID: s.opts.RunID, DryRun: s.opts.DryRun}

	s.head.Fprintf(s.opts.Out, "\n👤 Onboarding %d investors%s\n", len(s.dataset.Investors), s.dryRunSuffix())
	for _, investor := range s.dataset.Investors {
		result := InvestorResult{Investor: investor}
		result.Profile, result.ProfileErr = s.createInvestor(ctx, investor)
		result.Block, result.TransferErr = s.transferTokens(ctx, investor.Principal)
		sum.add(result)
	}

	s.printInvestorSummary(sum)
	return sum
}

func (s *Seeder) createInvestor(ctx context.Context, investor types.InvestorSpec) (*types.Profile, error) {
	s.info.Fprintf(s.opts.Out, "\n👤 Creating investor profile: %s\n", investor.Name)
	profile, err := s.client.CreateProfile(ctx, investor)
	s.record(ctx, backend.MethodCreateProfile, investor.Principal, 0, err)
	if err != nil {
		s.fail.Fprintf(s.opts.Out, "❌ Failed to create profile for %s: %v\n", investor.Name, err)
		s.opts.Logger.Error().Err(err).Str("investor", investor.Name).Str("outcome", backend.Outcome(err)).Msg("createProfile failed")
		return nil, err
	}
	s.ok.Fprintf(s.opts.Out, "✅ Profile created for %s (%s)\n", investor.Name, investor.Role)
	return profile, nil
}

func (s *Seeder) transferTokens(ctx context.Context, to string) (types.BlockIndex, error) {
	args := types.TransferArgs{
		To:     types.Account{Owner: to},
		Amount: s.opts.TransferAmount,
	}
	if s.opts.TransferFee > 0 {
		fee := s.opts.TransferFee
		args.Fee = &fee
	}

	block, err := s.client.Transfer(ctx, args)
	s.record(ctx, backend.MethodTransfer, to, args.Amount, err)
	if err != nil {
		s.fail.Fprintf(s.opts.Out, "❌ Transfer of %s tokens to %s failed: %v\n", args.Amount.Tokens(), to, err)
		s.opts.Logger.Error().Err(err).Str("to", to).Str("outcome", backend.Outcome(err)).Msg("icrc1_transfer failed")
		return 0, err
	}
	s.ok.Fprintf(s.opts.Out, "💰 Transferred %s tokens to %s (block %d)\n", args.Amount.Tokens(), to, block)
	return block, nil
}
