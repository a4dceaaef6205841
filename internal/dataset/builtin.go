package dataset

import "github.com/Lumos-Labs-HQ/farmseed/internal/types"

// Default is the demo dataset seeded when no dataset file is configured.
func Default() *Dataset {
	return &Dataset{
		Farms: []types.FarmSpec{
			{
				Name:        "Green Valley Organic Farm",
				Description: "Certified organic vegetable farm supplying local markets and restaurants.",
				Location:    "Nakuru, Kenya",
				FundingGoal: 5_000_000_000_000, // 50,000 tokens
				LandSize:    25.5,
				CropType:    types.CropVegetables,
				Scores: types.QualityScores{
					SoilQuality: 9, Infrastructure: 7, MarketAccess: 8, ClimateRisk: 3, WaterAccess: true,
				},
			},
			{
				Name:        "Sunrise Grain Cooperative",
				Description: "Smallholder cooperative growing maize and sorghum with shared storage.",
				Location:    "Kaduna, Nigeria",
				FundingGoal: 10_000_000_000_000, // 100,000 tokens
				LandSize:    120.0,
				CropType:    types.CropGrains,
				Scores: types.QualityScores{
					SoilQuality: 7, Infrastructure: 6, MarketAccess: 7, ClimateRisk: 5, WaterAccess: false,
				},
			},
			{
				Name:        "Highland Coffee & Fruit Estate",
				Description: "Shade-grown coffee intercropped with avocado and mango orchards.",
				Location:    "Sidama, Ethiopia",
				FundingGoal: 7_500_000_000_000, // 75,000 tokens
				LandSize:    48.2,
				CropType:    types.CropFruits,
				Scores: types.QualityScores{
					SoilQuality: 8, Infrastructure: 5, MarketAccess: 6, ClimateRisk: 4, WaterAccess: true,
				},
			},
			{
				Name:        "Lakeside Dairy Ranch",
				Description: "Pasture-based dairy herd with on-site milk cooling and processing.",
				Location:    "Mbarara, Uganda",
				FundingGoal: 12_000_000_000_000, // 120,000 tokens
				LandSize:    85.0,
				CropType:    types.CropDairy,
				Scores: types.QualityScores{
					SoilQuality: 6, Infrastructure: 8, MarketAccess: 9, ClimateRisk: 2, WaterAccess: true,
				},
			},
		},
		Investors: []types.InvestorSpec{
			{
				Name:      "Amara Okafor",
				Bio:       "Impact investor focused on sustainable agriculture in West Africa.",
				Role:      types.RoleInvestor,
				Principal: "ywxtv-3nspz-d2t5x-4bvku-muyqe-untdx-3mi6d-yxiym-pyx7z-ttwbn-uqe",
			},
			{
				Name:      "Lucas Ferreira",
				Bio:       "Agritech fund manager backing smallholder cooperatives.",
				Role:      types.RoleInvestor,
				Principal: "m7fty-gedbv-ww7jx-p4z64-z5f5g-e26eh-ofynr-3ejgz-tsvjo-kgokn-hqe",
				Metadata:  map[string]string{"fund": "Terra Growth Partners"},
			},
		},
	}
}
