package seeder

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/farmseed/internal/backend"
	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
)

// RunFarms creates every farm in the dataset. Each farm that comes back valid gets the
// configured investments and market orders; a farm that fails gets neither.
func (s *Seeder) RunFarms(ctx context.Context) Summary {
	sum := Summary{RunID: s.opts.RunID, DryRun: s.opts.DryRun}

	s.head.Fprintf(s.opts.Out, "🌾 Seeding %d farms%s\n", len(s.dataset.Farms), s.dryRunSuffix())
	for _, spec := range s.dataset.Farms {
		result := s.seedFarm(ctx, spec)
		sum.add(result)
	}

	s.printSummary(sum)
	return sum
}

func (s *Seeder) seedFarm(ctx context.Context, spec types.FarmSpec) FarmResult {
	result := FarmResult{Spec: spec}

	s.info.Fprintf(s.opts.Out, "\n🌾 Creating farm: %s\n", spec.Name)
	farm, err := s.client.CreateFarm(ctx, spec)
	if err == nil {
		err = validateFarm(farm)
	}
	s.record(ctx, backend.MethodCreateFarm, spec.Name, spec.FundingGoal, err)
	if err != nil {
		result.Err = err
		s.fail.Fprintf(s.opts.Out, "❌ Failed to create farm %s: %v\n", spec.Name, err)
		s.opts.Logger.Error().Err(err).Str("farm", spec.Name).Str("outcome", backend.Outcome(err)).Msg("createFarm failed")
		return result
	}

	if farm.Name == "" {
		farm.Name = spec.Name
	}
	result.Farm = farm
	s.recordFarm(ctx, farm)
	s.ok.Fprintf(s.opts.Out, "✅ Created farm %s (id %s, share price %s)\n", farm.Name, farm.ID, farm.SharePrice.Tokens())

	if s.opts.SkipInvestments {
		s.warn.Fprintf(s.opts.Out, "⚠️  Skipping investments for %s\n", farm.Name)
	} else {
		for _, amount := range s.opts.InvestmentAmounts {
			if s.invest(ctx, farm, amount) {
				result.InvestmentsOK++
			} else {
				result.InvestmentsFailed++
			}
		}
	}

	if s.opts.SkipOrders {
		s.warn.Fprintf(s.opts.Out, "⚠️  Skipping market orders for %s\n", farm.Name)
	} else {
		for _, plan := range s.opts.Orders {
			if s.placeOrder(ctx, farm, plan) {
				result.OrdersOK++
			} else {
				result.OrdersFailed++
			}
		}
	}

	return result
}

func (s *Seeder) invest(ctx context.Context, farm *types.Farm, amount types.E8s) bool {
	receipt, err := s.client.InvestInFarm(ctx, farm.ID, amount)
	s.record(ctx, backend.MethodInvestInFarm, string(farm.ID), amount, err)
	if err != nil {
		s.fail.Fprintf(s.opts.Out, "❌ Investment of %s in farm %s failed: %v\n", amount.Tokens(), farm.ID, err)
		s.opts.Logger.Error().Err(err).Str("farm_id", string(farm.ID)).Uint64("amount", uint64(amount)).Msg("investInFarm failed")
		return false
	}

	line := fmt.Sprintf("💰 Invested %s tokens in farm %s", amount.Tokens(), farm.ID)
	if receipt != nil && receipt.SharesBought > 0 {
		line += fmt.Sprintf(" (%d shares)", receipt.SharesBought)
	}
	s.ok.Fprintln(s.opts.Out, line)
	return true
}

func (s *Seeder) placeOrder(ctx context.Context, farm *types.Farm, plan OrderPlan) bool {
	order := types.MarketOrder{
		FarmID:     farm.ID,
		Side:       plan.Side,
		Quantity:   plan.Quantity,
		LimitPrice: farm.SharePrice.Percent(plan.Percent),
	}

	id, err := s.client.CreateMarketOrder(ctx, order)
	s.record(ctx, backend.MethodCreateMarketOrder, string(farm.ID), order.LimitPrice, err)
	if err != nil {
		s.fail.Fprintf(s.opts.Out, "❌ %s order on farm %s failed: %v\n", order.Side, farm.ID, err)
		s.opts.Logger.Error().Err(err).Str("farm_id", string(farm.ID)).Str("side", string(order.Side)).Msg("createMarketOrder failed")
		return false
	}

	s.ok.Fprintf(s.opts.Out, "📈 %s order %s: %d shares @ %s (%d%%)\n",
		order.Side, id, order.Quantity, order.LimitPrice.Tokens(), plan.Percent)
	return true
}

// validateFarm checks the fields dependent calls rely on.
func validateFarm(farm *types.Farm) error {
	switch {
	case farm == nil:
		return fmt.Errorf("%w: createFarm returned no farm", backend.ErrMalformedResponse)
	case farm.ID == "":
		return fmt.Errorf("%w: createFarm returned a farm without an id", backend.ErrMalformedResponse)
	case farm.SharePrice == 0:
		return fmt.Errorf("%w: farm %s has no share price", backend.ErrMalformedResponse, farm.ID)
	}
	return nil
}

func (s *Seeder) dryRunSuffix() string {
	if s.opts.DryRun {
		return " (dry run)"
	}
	return ""
}
