package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FarmerSnapshot is the read-only farmer profile an assessment evaluates
// against. Profile storage and CRUD live in the profile service; only the
// shape matters here.
type FarmerSnapshot struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	NationalID     *string   `json:"national_id,omitempty"`
	Phone          string    `json:"phone"`
	KYCStatus      KYCStatus `json:"kyc_status"`
	County         *string   `json:"county,omitempty"`
	SubCounty      *string   `json:"sub_county,omitempty"`
	Ward           *string   `json:"ward,omitempty"`
	Village        *string   `json:"village,omitempty"`
	IsActive       bool      `json:"is_active"`
	HasBankAccount bool      `json:"has_bank_account"`
	HasMobileMoney bool      `json:"has_mobile_money"`
}

// CropYieldRecord is one season's expected-vs-actual production figure,
// newest first.
type CropYieldRecord struct {
	Year          int     `json:"year"`
	CropType      string  `json:"crop_type"`
	ExpectedYield float64 `json:"expected_yield"`
	ActualYield   float64 `json:"actual_yield"`
}

// FarmSnapshot is the read-only farm record attached to an assessment.
type FarmSnapshot struct {
	ID            string            `json:"id"`
	FarmerID      string            `json:"farmer_id"`
	AcreageTotal  float64           `json:"acreage_total"`
	OwnershipType *string           `json:"ownership_type,omitempty"`
	SoilType      *string           `json:"soil_type,omitempty"`
	WaterSource   *string           `json:"water_source,omitempty"`
	County        *string           `json:"county,omitempty"`
	SubCounty     *string           `json:"sub_county,omitempty"`
	IsVerified    bool              `json:"is_verified"`
	YieldHistory  []CropYieldRecord `json:"yield_history,omitempty"`
}

// CreditCheck is the credit bureau result consumed by the risk engine.
// Monetary amounts are decimals; the bureau reports them to the cent.
type CreditCheck struct {
	FarmerID           string           `json:"farmer_id"`
	CreditScore        *int             `json:"credit_score,omitempty"`
	ScoreBand          *string          `json:"score_band,omitempty"`
	OpenAccounts       int              `json:"open_accounts"`
	TotalDebt          decimal.Decimal  `json:"total_debt"`
	MonthlyObligations decimal.Decimal  `json:"monthly_obligations"`
	MonthlyIncome      decimal.Decimal  `json:"monthly_income"`
	DelinquentCount    int              `json:"delinquent_count"`
	DefaultCount       int              `json:"default_count"`
	DebtToIncomeRatio  *float64         `json:"debt_to_income_ratio,omitempty"`
	Completed          bool             `json:"completed"`
	CompletedAt        *time.Time       `json:"completed_at,omitempty"`
	Provenance         CreditProvenance `json:"provenance"`
}

// DTI returns the debt-to-income ratio as a percentage, deriving it from
// monthly obligations and income when the bureau did not supply one.
func (c *CreditCheck) DTI() *float64 {
	if c.DebtToIncomeRatio != nil {
		return c.DebtToIncomeRatio
	}
	if c.MonthlyIncome.IsZero() {
		return nil
	}
	ratio := c.MonthlyObligations.Div(c.MonthlyIncome).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return &ratio
}

// IsFresh reports whether a completed result is recent enough to reuse.
func (c *CreditCheck) IsFresh(now time.Time, maxAge time.Duration) bool {
	return c.Completed && c.CompletedAt != nil && now.Sub(*c.CompletedAt) <= maxAge
}

// ExternalRiskSignals are optional third-party risk inputs, each 0-100.
type ExternalRiskSignals struct {
	WeatherRiskScore  *float64 `json:"weather_risk_score,omitempty"`
	MarketRiskScore   *float64 `json:"market_risk_score,omitempty"`
	LocationRiskScore *float64 `json:"location_risk_score,omitempty"`
}
