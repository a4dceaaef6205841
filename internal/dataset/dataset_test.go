package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDatasetIsValid(t *testing.T) {
	ds := Default()
	require.NoError(t, ds.Validate())
	assert.Len(t, ds.Farms, 4)
	assert.Len(t, ds.Investors, 2)
	assert.Equal(t, types.E8s(5_000_000_000_000), ds.Farms[0].FundingGoal)
}

func TestLoadYAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farms.yaml")
	content := `
farms:
  - name: Test Farm
    description: small plot
    location: Accra, Ghana
    funding_goal: 100000000000
    land_size: 3.5
    crop_type: poultry
    scores:
      soil_quality: 5
      infrastructure: 4
      market_access: 6
      climate_risk: 2
      water_access: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Farms, 1)
	farm := ds.Farms[0]
	assert.Equal(t, types.CropPoultry, farm.CropType)
	assert.Equal(t, types.E8s(100_000_000_000), farm.FundingGoal)
	assert.True(t, farm.Scores.WaterAccess)
	// Investors fall back to the built-in list.
	assert.Len(t, ds.Investors, 2)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farms.json")
	content := `{"investors": [{"name": "Tester", "bio": "qa", "principal": "2vxsx-fae"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Investors, 1)
	assert.Equal(t, types.RoleInvestor, ds.Investors[0].Role)
	assert.Len(t, ds.Farms, 4)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad crop":      "farms:\n  - {name: A, funding_goal: 1, land_size: 1, crop_type: tulips}\n",
		"bad principal": "investors:\n  - {name: A, principal: nope}\n",
		"duplicate":     "farms:\n  - {name: A, funding_goal: 1, land_size: 1, crop_type: mixed}\n  - {name: A, funding_goal: 1, land_size: 1, crop_type: mixed}\n",
		"score range":   "farms:\n  - {name: A, funding_goal: 1, land_size: 1, crop_type: mixed, scores: {soil_quality: 12}}\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ds.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")
	require.NoError(t, Default().Save(path))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Farms, ds.Farms)
	assert.Equal(t, Default().Investors, ds.Investors)
}

func TestResolve(t *testing.T) {
	ds, err := Resolve("")
	require.NoError(t, err)
	assert.Len(t, ds.Farms, 4)

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
