// Package backend talks to the farm-investment canister and the token ledger.
package backend

import (
	"context"

	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
)

// Canister method names as declared in the backend interface.
const (
	MethodCreateProfile     = "createProfile"
	MethodTransfer          = "icrc1_transfer"
	MethodCreateFarm        = "createFarm"
	MethodInvestInFarm      = "investInFarm"
	MethodCreateMarketOrder = "createMarketOrder"
)

// Client is the subset of the backend the seeder drives. Every method is one remote call.
type Client interface {
	CreateFarm(ctx context.Context, spec types.FarmSpec) (*types.Farm, error)
	InvestInFarm(ctx context.Context, farmID types.FarmID, amount types.E8s) (*types.InvestmentReceipt, error)
	CreateMarketOrder(ctx context.Context, order types.MarketOrder) (types.OrderID, error)
	CreateProfile(ctx context.Context, investor types.InvestorSpec) (*types.Profile, error)
	Transfer(ctx context.Context, args types.TransferArgs) (types.BlockIndex, error)
}

func createFarmArgs(spec types.FarmSpec) []any {
	return []any{
		spec.Name,
		spec.Description,
		spec.Location,
		spec.FundingGoal,
		spec.LandSize,
		spec.CropType,
		spec.Scores.SoilQuality,
		spec.Scores.Infrastructure,
		spec.Scores.MarketAccess,
		spec.Scores.ClimateRisk,
		spec.Scores.WaterAccess,
	}
}

func createProfileArgs(investor types.InvestorSpec) []any {
	// opt metadata: [] when absent, [value] when present
	metadata := []any{}
	if len(investor.Metadata) > 0 {
		metadata = append(metadata, investor.Metadata)
	}
	return []any{investor.Name, investor.Bio, investor.Role, metadata}
}
