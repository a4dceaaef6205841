package dataset

import (
	"fmt"
	"os"

	"github.com/Lumos-Labs-HQ/farmseed/internal/principal"
	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
	"gopkg.in/yaml.v3"
)

type Dataset struct {
	Farms     []types.FarmSpec     `yaml:"farms"`
	Investors []types.InvestorSpec `yaml:"investors"`
}

// Load reads a dataset file. YAML is a superset of JSON, so both formats are accepted.
// Sections left out of the file fall back to the built-in demo data.
func Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	var ds Dataset
	if err := yaml.NewDecoder(file).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}

	builtin := Default()
	if len(ds.Farms) == 0 {
		ds.Farms = builtin.Farms
	}
	if len(ds.Investors) == 0 {
		ds.Investors = builtin.Investors
	}

	for i := range ds.Farms {
		crop, err := types.ParseCropType(string(ds.Farms[i].CropType))
		if err != nil {
			return nil, fmt.Errorf("farm %q: %w", ds.Farms[i].Name, err)
		}
		ds.Farms[i].CropType = crop
	}
	for i := range ds.Investors {
		if ds.Investors[i].Role == "" {
			ds.Investors[i].Role = types.RoleInvestor
		}
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Resolve returns the dataset at path, or the built-in one when path is empty.
func Resolve(path string) (*Dataset, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (d *Dataset) Validate() error {
	names := make(map[string]bool, len(d.Farms))
	for _, farm := range d.Farms {
		if err := farm.Validate(); err != nil {
			return err
		}
		if names[farm.Name] {
			return fmt.Errorf("duplicate farm name %q", farm.Name)
		}
		names[farm.Name] = true
	}

	for _, inv := range d.Investors {
		if inv.Name == "" {
			return fmt.Errorf("investor name is required")
		}
		if _, err := principal.Parse(inv.Principal); err != nil {
			return fmt.Errorf("investor %q: %w", inv.Name, err)
		}
	}
	return nil
}

// Save writes the dataset as YAML, used by `farmseed init` to scaffold an editable copy.
func (d *Dataset) Save(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}
