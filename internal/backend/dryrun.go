package backend

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
	"github.com/rs/zerolog"
)

// DryRun answers every call locally with a plausible result and never touches the network.
type DryRun struct {
	log  zerolog.Logger
	next atomic.Uint64
}

func NewDryRun(log zerolog.Logger) *DryRun {
	return &DryRun{log: log}
}

func (d *DryRun) id(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, d.next.Add(1))
}

func (d *DryRun) CreateFarm(ctx context.Context, spec types.FarmSpec) (*types.Farm, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.log.Info().Str("method", MethodCreateFarm).Str("farm", spec.Name).Msg("dry run")
	// 10 000 shares per farm, priced off the funding goal.
	price := spec.FundingGoal / 10_000
	if price == 0 {
		price = 1
	}
	return &types.Farm{
		ID:          types.FarmID(d.id("dry-farm")),
		Name:        spec.Name,
		Location:    spec.Location,
		FundingGoal: spec.FundingGoal,
		SharePrice:  price,
		TotalShares: 10_000,
		CropType:    spec.CropType,
	}, nil
}

func (d *DryRun) InvestInFarm(ctx context.Context, farmID types.FarmID, amount types.E8s) (*types.InvestmentReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.log.Info().Str("method", MethodInvestInFarm).Str("farm_id", string(farmID)).Uint64("amount", uint64(amount)).Msg("dry run")
	return &types.InvestmentReceipt{FarmID: farmID, Amount: amount, TransactionID: d.id("dry-tx")}, nil
}

func (d *DryRun) CreateMarketOrder(ctx context.Context, order types.MarketOrder) (types.OrderID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.log.Info().Str("method", MethodCreateMarketOrder).Str("farm_id", string(order.FarmID)).
		Str("side", string(order.Side)).Uint64("quantity", order.Quantity).Msg("dry run")
	return types.OrderID(d.id("dry-order")), nil
}

func (d *DryRun) CreateProfile(ctx context.Context, investor types.InvestorSpec) (*types.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.log.Info().Str("method", MethodCreateProfile).Str("name", investor.Name).Msg("dry run")
	return &types.Profile{Principal: investor.Principal, Name: investor.Name, Role: investor.Role}, nil
}

func (d *DryRun) Transfer(ctx context.Context, args types.TransferArgs) (types.BlockIndex, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.log.Info().Str("method", MethodTransfer).Str("to", args.To.Owner).Uint64("amount", uint64(args.Amount)).Msg("dry run")
	return types.BlockIndex(d.next.Add(1)), nil
}
