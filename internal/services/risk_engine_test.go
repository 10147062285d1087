package services

import (
	"testing"
	"time"

	"github.com/jajuok/agripro-sub000/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func createTestFarmer(kyc models.KYCStatus) *models.FarmerSnapshot {
	nationalID := "12345678"
	county := "Nakuru"
	return &models.FarmerSnapshot{
		ID:         "farmer-001",
		FirstName:  "Wanjiku",
		LastName:   "Kamau",
		NationalID: &nationalID,
		KYCStatus:  kyc,
		County:     &county,
		IsActive:   true,
	}
}

func createTestFarm(verified bool) *models.FarmSnapshot {
	county := "Nakuru"
	return &models.FarmSnapshot{
		ID:           "farm-001",
		FarmerID:     "farmer-001",
		AcreageTotal: 4.5,
		County:       &county,
		IsVerified:   verified,
		YieldHistory: []models.CropYieldRecord{
			{Year: 2024, CropType: "maize", ExpectedYield: 1000, ActualYield: 950},
			{Year: 2023, CropType: "maize", ExpectedYield: 1000, ActualYield: 900},
		},
	}
}

func createTestCredit(score int) *models.CreditCheck {
	now := time.Now()
	return &models.CreditCheck{
		FarmerID:           "farmer-001",
		CreditScore:        &score,
		MonthlyObligations: decimal.NewFromInt(6000),
		MonthlyIncome:      decimal.NewFromInt(30000),
		Completed:          true,
		CompletedAt:        &now,
		Provenance:         models.CreditProvenanceBureau,
	}
}

// ============================================================================
// TEST SUITE 1: BLENDED SCORE AND LEVEL
// ============================================================================

func TestScore_StrongApplicantIsLowRisk(t *testing.T) {
	engine := NewRiskEngine()

	result := engine.Score(
		createTestFarmer(models.KYCApproved),
		createTestFarm(true),
		createTestCredit(760),
		nil,
	)

	assert.Equal(t, models.RiskLevelLow, result.Level,
		"approved KYC, verified farm and excellent credit should be low risk")
	assert.GreaterOrEqual(t, result.TotalScore, 0.0)
	assert.LessOrEqual(t, result.TotalScore, 100.0)
	assert.Empty(t, result.FraudIndicators)
}

func TestScore_WeakApplicantScoresHigher(t *testing.T) {
	engine := NewRiskEngine()

	strong := engine.Score(createTestFarmer(models.KYCApproved), createTestFarm(true), createTestCredit(760), nil)
	weak := engine.Score(createTestFarmer(models.KYCPending), nil, createTestCredit(500), nil)

	assert.Greater(t, weak.TotalScore, strong.TotalScore)
}

func TestScore_TotalIsWeightedBlendOfCategories(t *testing.T) {
	engine := NewRiskEngine()

	result := engine.Score(
		createTestFarmer(models.KYCApproved),
		createTestFarm(true),
		createTestCredit(760),
		nil,
	)

	expected := result.CreditScore*0.35 +
		result.PerformanceScore*0.25 +
		result.ExternalScore*0.20 +
		result.FraudScore*0.20
	assert.InDelta(t, expected, result.TotalScore, 0.01)
}

func TestScore_ValidityWindowIs90Days(t *testing.T) {
	engine := NewRiskEngine()

	result := engine.Score(createTestFarmer(models.KYCApproved), createTestFarm(true), createTestCredit(700), nil)

	assert.InDelta(t, 90*24.0, result.ValidUntil.Sub(result.ValidFrom).Hours(), 1)
}

// ============================================================================
// TEST SUITE 2: MISSING DATA AND CONFIDENCE
// ============================================================================

func TestScore_MissingCreditLowersConfidenceNotOutcome(t *testing.T) {
	engine := NewRiskEngine()

	withCredit := engine.Score(createTestFarmer(models.KYCApproved), createTestFarm(true), createTestCredit(700), nil)
	withoutCredit := engine.Score(createTestFarmer(models.KYCApproved), createTestFarm(true), nil, nil)

	assert.Less(t, withoutCredit.Confidence, withCredit.Confidence,
		"a missing-data default factor should lower confidence")
	assert.NotZero(t, withoutCredit.TotalScore, "missing credit still yields a scored assessment")
}

func TestScore_ConfidenceIsShareOfFactorsWithData(t *testing.T) {
	engine := NewRiskEngine()

	result := engine.Score(createTestFarmer(models.KYCApproved), createTestFarm(true), createTestCredit(700), nil)

	var withData int
	for i := range result.Factors {
		if result.Factors[i].HasData() {
			withData++
		}
	}
	assert.InDelta(t, float64(withData)/float64(len(result.Factors)), result.Confidence, 0.001)
}

func TestScore_NoFarmCarriesPerformancePenalty(t *testing.T) {
	engine := NewRiskEngine()

	withFarm := engine.Score(createTestFarmer(models.KYCApproved), createTestFarm(true), createTestCredit(700), nil)
	withoutFarm := engine.Score(createTestFarmer(models.KYCApproved), nil, createTestCredit(700), nil)

	assert.Greater(t, withoutFarm.PerformanceScore, withFarm.PerformanceScore)
}

// ============================================================================
// TEST SUITE 3: EXTERNAL SIGNALS
// ============================================================================

func TestScore_SuppliedSignalsOverrideDefaults(t *testing.T) {
	engine := NewRiskEngine()
	weather := 95.0
	market := 90.0

	calm := engine.Score(createTestFarmer(models.KYCApproved), createTestFarm(true), createTestCredit(700), nil)
	stormy := engine.Score(createTestFarmer(models.KYCApproved), createTestFarm(true), createTestCredit(700),
		&models.ExternalRiskSignals{WeatherRiskScore: &weather, MarketRiskScore: &market})

	assert.Greater(t, stormy.ExternalScore, calm.ExternalScore)
}

func TestScore_SignalsAreClamped(t *testing.T) {
	engine := NewRiskEngine()
	overRange := 250.0

	result := engine.Score(createTestFarmer(models.KYCApproved), createTestFarm(true), createTestCredit(700),
		&models.ExternalRiskSignals{WeatherRiskScore: &overRange})

	for i := range result.Factors {
		assert.LessOrEqual(t, result.Factors[i].Normalized, 100.0,
			"factor %s should be clamped to 100", result.Factors[i].Code)
	}
}

// ============================================================================
// TEST SUITE 4: FRAUD SIGNALS
// ============================================================================

func TestScore_MissingNationalIDRaisesFraudIndicator(t *testing.T) {
	engine := NewRiskEngine()
	farmer := createTestFarmer(models.KYCApproved)
	farmer.NationalID = nil

	result := engine.Score(farmer, createTestFarm(true), createTestCredit(700), nil)

	assert.Contains(t, result.FraudIndicators, "national ID not on record")
}

func TestScore_GeographyMismatchRaisesFraudIndicator(t *testing.T) {
	engine := NewRiskEngine()
	farmer := createTestFarmer(models.KYCApproved)
	farm := createTestFarm(true)
	otherCounty := "Mombasa"
	farm.County = &otherCounty

	result := engine.Score(farmer, farm, createTestCredit(700), nil)

	assert.Contains(t, result.FraudIndicators, "farm location does not match farmer's registered area")
}

func TestScore_MatchingSubCountyExcusesCountyMismatch(t *testing.T) {
	engine := NewRiskEngine()
	farmer := createTestFarmer(models.KYCApproved)
	farm := createTestFarm(true)
	otherCounty := "Baringo"
	sub := "Mogotio"
	farm.County = &otherCounty
	farmer.SubCounty = &sub
	farm.SubCounty = &sub

	result := engine.Score(farmer, farm, createTestCredit(700), nil)

	assert.NotContains(t, result.FraudIndicators, "farm location does not match farmer's registered area")
}

func TestScore_LargeAcreageRaisesFraudIndicator(t *testing.T) {
	engine := NewRiskEngine()
	farm := createTestFarm(true)
	farm.AcreageTotal = 350

	result := engine.Score(createTestFarmer(models.KYCApproved), farm, createTestCredit(700), nil)

	assert.NotEmpty(t, result.FraudIndicators)
	assert.Greater(t, result.FraudScore, 0.0)
}

// ============================================================================
// TEST SUITE 5: CREDIT BANDS
// ============================================================================

func TestCreditScoreBandRisk_Monotonic(t *testing.T) {
	assert.Equal(t, 10.0, creditScoreBandRisk(760))
	assert.Equal(t, 20.0, creditScoreBandRisk(710))
	assert.Equal(t, 35.0, creditScoreBandRisk(660))
	assert.Equal(t, 50.0, creditScoreBandRisk(610))
	assert.Equal(t, 65.0, creditScoreBandRisk(560))
	assert.Equal(t, 80.0, creditScoreBandRisk(500))
}

func TestDtiBandRisk_Bands(t *testing.T) {
	assert.Equal(t, 10.0, dtiBandRisk(15))
	assert.Equal(t, 25.0, dtiBandRisk(30))
	assert.Equal(t, 50.0, dtiBandRisk(45))
	assert.Equal(t, 75.0, dtiBandRisk(60))
	assert.Equal(t, 90.0, dtiBandRisk(85))
}

func TestAverageYieldPerformance_CapsAndLimits(t *testing.T) {
	history := []models.CropYieldRecord{
		{Year: 2024, ExpectedYield: 100, ActualYield: 400}, // capped at 150
		{Year: 2023, ExpectedYield: 100, ActualYield: 50},
	}

	assert.InDelta(t, 100.0, averageYieldPerformance(history), 0.01, "(150+50)/2")

	longHistory := make([]models.CropYieldRecord, 8)
	for i := range longHistory {
		longHistory[i] = models.CropYieldRecord{Year: 2024 - i, ExpectedYield: 100, ActualYield: 100}
	}
	longHistory[6].ActualYield = 0 // beyond the 5-season window, should be ignored
	assert.InDelta(t, 100.0, averageYieldPerformance(longHistory), 0.01)
}
