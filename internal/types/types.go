package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// E8sPerToken is the number of smallest-denomination units in one token.
const E8sPerToken = 100_000_000

// E8s is an amount expressed in the smallest token denomination (10^-8 of a token).
type E8s uint64

// Tokens renders the amount in whole-token units with all eight decimals.
func (e E8s) Tokens() string {
	return fmt.Sprintf("%d.%08d", uint64(e)/E8sPerToken, uint64(e)%E8sPerToken)
}

// Percent returns pct% of e using integer arithmetic, rounding down.
func (e E8s) Percent(pct uint64) E8s {
	v := uint64(e)
	return E8s(v/100*pct + v%100*pct/100)
}

type CropType string

const (
	CropGrains      CropType = "Grains"
	CropVegetables  CropType = "Vegetables"
	CropFruits      CropType = "Fruits"
	CropLivestock   CropType = "Livestock"
	CropDairy       CropType = "Dairy"
	CropPoultry     CropType = "Poultry"
	CropAquaculture CropType = "Aquaculture"
	CropMixed       CropType = "Mixed"
)

var cropTypes = []CropType{
	CropGrains, CropVegetables, CropFruits, CropLivestock,
	CropDairy, CropPoultry, CropAquaculture, CropMixed,
}

// ParseCropType matches a crop category case-insensitively.
func ParseCropType(s string) (CropType, error) {
	for _, c := range cropTypes {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown crop type %q", s)
}

func (c CropType) MarshalJSON() ([]byte, error) {
	return marshalVariant(string(c))
}

func (c *CropType) UnmarshalJSON(data []byte) error {
	tag, err := unmarshalVariant(data)
	if err != nil {
		return err
	}
	parsed, err := ParseCropType(tag)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

type OrderSide string

const (
	Buy  OrderSide = "Buy"
	Sell OrderSide = "Sell"
)

func (s OrderSide) MarshalJSON() ([]byte, error) {
	return marshalVariant(string(s))
}

func (s *OrderSide) UnmarshalJSON(data []byte) error {
	tag, err := unmarshalVariant(data)
	if err != nil {
		return err
	}
	switch OrderSide(tag) {
	case Buy, Sell:
		*s = OrderSide(tag)
		return nil
	}
	return fmt.Errorf("unknown order side %q", tag)
}

type Role string

const (
	RoleInvestor Role = "Investor"
	RoleFarmer   Role = "Farmer"
	RoleAdmin    Role = "Admin"
)

func (r Role) MarshalJSON() ([]byte, error) {
	return marshalVariant(string(r))
}

func (r *Role) UnmarshalJSON(data []byte) error {
	tag, err := unmarshalVariant(data)
	if err != nil {
		return err
	}
	switch Role(tag) {
	case RoleInvestor, RoleFarmer, RoleAdmin:
		*r = Role(tag)
		return nil
	}
	return fmt.Errorf("unknown role %q", tag)
}

// Variants travel as {"Tag": null} on the wire, the same shape the canister interface uses.
func marshalVariant(tag string) ([]byte, error) {
	if tag == "" {
		return nil, fmt.Errorf("empty variant tag")
	}
	return json.Marshal(map[string]any{tag: nil})
}

func unmarshalVariant(data []byte) (string, error) {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		return plain, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("invalid variant: %w", err)
	}
	if len(obj) != 1 {
		return "", fmt.Errorf("variant must have exactly one tag, got %d", len(obj))
	}
	for tag := range obj {
		return tag, nil
	}
	return "", nil
}

// FarmID is the opaque identifier the backend assigns to a farm.
// Backends may encode it as either a string or a nat.
type FarmID string

func (id *FarmID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = FarmID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("farm id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseUint(n.String(), 10, 64); err != nil {
		return fmt.Errorf("farm id %s is not a natural number", n)
	}
	*id = FarmID(n.String())
	return nil
}

type QualityScores struct {
	SoilQuality    uint8 `json:"soilQuality" yaml:"soil_quality"`
	Infrastructure uint8 `json:"infrastructure" yaml:"infrastructure"`
	MarketAccess   uint8 `json:"marketAccess" yaml:"market_access"`
	ClimateRisk    uint8 `json:"climateRisk" yaml:"climate_risk"`
	WaterAccess    bool  `json:"waterAccess" yaml:"water_access"`
}

// FarmSpec is the request body for createFarm.
type FarmSpec struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Location    string        `json:"location" yaml:"location"`
	FundingGoal E8s           `json:"fundingGoal" yaml:"funding_goal"`
	LandSize    float64       `json:"landSize" yaml:"land_size"`
	CropType    CropType      `json:"cropType" yaml:"crop_type"`
	Scores      QualityScores `json:"scores" yaml:"scores"`
}

// Validate checks the fields the backend would otherwise reject.
func (f FarmSpec) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("farm name is required")
	}
	if f.FundingGoal == 0 {
		return fmt.Errorf("farm %q: funding goal must be positive", f.Name)
	}
	if f.LandSize <= 0 {
		return fmt.Errorf("farm %q: land size must be positive", f.Name)
	}
	if _, err := ParseCropType(string(f.CropType)); err != nil {
		return fmt.Errorf("farm %q: %w", f.Name, err)
	}
	scores := map[string]uint8{
		"soil_quality":   f.Scores.SoilQuality,
		"infrastructure": f.Scores.Infrastructure,
		"market_access":  f.Scores.MarketAccess,
		"climate_risk":   f.Scores.ClimateRisk,
	}
	for name, v := range scores {
		if v > 10 {
			return fmt.Errorf("farm %q: %s must be between 0 and 10, got %d", f.Name, name, v)
		}
	}
	return nil
}

// Farm is the listing returned by createFarm.
type Farm struct {
	ID          FarmID   `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	FundingGoal E8s      `json:"fundingGoal"`
	SharePrice  E8s      `json:"sharePrice"`
	TotalShares uint64   `json:"totalShares"`
	CropType    CropType `json:"cropType"`
}

type InvestmentReceipt struct {
	FarmID        FarmID `json:"farmId"`
	Amount        E8s    `json:"amount"`
	SharesBought  uint64 `json:"sharesBought"`
	TransactionID string `json:"transactionId"`
}

type MarketOrder struct {
	FarmID     FarmID    `json:"farmId"`
	Side       OrderSide `json:"side"`
	Quantity   uint64    `json:"quantity"`
	LimitPrice E8s       `json:"limitPrice"`
}

type OrderID string

func (id *OrderID) UnmarshalJSON(data []byte) error {
	var f FarmID
	if err := f.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	*id = OrderID(f)
	return nil
}

// InvestorSpec describes a demo investor to onboard.
type InvestorSpec struct {
	Name      string            `json:"name" yaml:"name"`
	Bio       string            `json:"bio" yaml:"bio"`
	Role      Role              `json:"role" yaml:"role"`
	Principal string            `json:"principal" yaml:"principal"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type Profile struct {
	Principal string `json:"principal"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
}

// Account is an ICRC-1 account.
type Account struct {
	Owner      string `json:"owner"`
	Subaccount []byte `json:"subaccount,omitempty"`
}

// TransferArgs is the single argument of icrc1_transfer.
type TransferArgs struct {
	To            Account `json:"to"`
	Amount        E8s     `json:"amount"`
	Fee           *E8s    `json:"fee,omitempty"`
	Memo          []byte  `json:"memo,omitempty"`
	CreatedAtTime *uint64 `json:"created_at_time,omitempty"`
}

// BlockIndex is the ledger block that recorded a transfer.
type BlockIndex uint64
