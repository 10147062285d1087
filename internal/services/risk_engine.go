package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jajuok/agripro-sub000/internal/models"
)

// Category weights of the blended risk score. Fixed by the scoring model.
const (
	creditCategoryWeight      = 0.35
	performanceCategoryWeight = 0.25
	externalCategoryWeight    = 0.20
	fraudCategoryWeight       = 0.20
)

const riskValidityWindow = 90 * 24 * time.Hour

// Default external signal scores when no provider supplied them.
const (
	defaultWeatherRisk = 30.0
	defaultMarketRisk  = 25.0
)

// RiskEngine computes the four-category risk assessment for an applicant.
// Stateless; safe for concurrent use.
type RiskEngine struct{}

func NewRiskEngine() *RiskEngine {
	return &RiskEngine{}
}

// Score blends credit, performance, external and fraud risk into a single
// clamped 0-100 score with a classified level. Missing inputs lower the
// confidence instead of failing the assessment.
func (e *RiskEngine) Score(
	farmer *models.FarmerSnapshot,
	farm *models.FarmSnapshot,
	credit *models.CreditCheck,
	signals *models.ExternalRiskSignals,
) *models.RiskAssessment {
	now := time.Now()

	var factors []models.RiskFactorScore
	var indicators []string

	creditScore := e.scoreCreditRisk(credit, &factors)
	performanceScore := e.scorePerformanceRisk(farmer, farm, &factors)
	externalScore := e.scoreExternalRisk(farm, signals, &factors)
	fraudScore := e.scoreFraudRisk(farmer, farm, &factors, &indicators)

	total := creditScore*creditCategoryWeight +
		performanceScore*performanceCategoryWeight +
		externalScore*externalCategoryWeight +
		fraudScore*fraudCategoryWeight
	total = clampScore(total)

	level := models.ClassifyRiskLevel(total)

	assessment := &models.RiskAssessment{
		ID:               uuid.New(),
		TotalScore:       total,
		Level:            level,
		Confidence:       confidence(factors),
		CreditScore:      creditScore,
		PerformanceScore: performanceScore,
		ExternalScore:    externalScore,
		FraudScore:       fraudScore,
		Factors:          factors,
		FraudIndicators:  indicators,
		Flags:            buildFlags(creditScore, performanceScore, externalScore, fraudScore, factors),
		Recommendations:  recommendationsForLevel(level),
		ValidFrom:        now,
		ValidUntil:       now.Add(riskValidityWindow),
		CreatedAt:        now,
	}
	return assessment
}

// scoreCreditRisk combines the bureau score band, default history and
// debt-to-income ratio. Without any credit data the category carries a
// single neutral-risk factor.
func (e *RiskEngine) scoreCreditRisk(credit *models.CreditCheck, factors *[]models.RiskFactorScore) float64 {
	if credit == nil || !credit.Completed {
		return emitCategory(factors, models.RiskCategoryCredit, []factorInput{
			{code: "credit_data_missing", normalized: 50, weight: 1.0, note: "credit data missing"},
		})
	}

	inputs := make([]factorInput, 0, 3)

	scoreRisk := 50.0
	var scoreRaw *string
	if credit.CreditScore != nil {
		scoreRisk = creditScoreBandRisk(*credit.CreditScore)
		scoreRaw = rawString(fmt.Sprintf("%d", *credit.CreditScore))
	}
	inputs = append(inputs, factorInput{
		code: "credit_score_band", raw: scoreRaw, normalized: scoreRisk, weight: 0.4,
	})

	defaultRisk := 0.0
	switch {
	case credit.DefaultCount >= 2:
		defaultRisk = 90
	case credit.DefaultCount == 1:
		defaultRisk = 50
	}
	inputs = append(inputs, factorInput{
		code: "default_history", raw: rawString(fmt.Sprintf("%d", credit.DefaultCount)),
		normalized: defaultRisk, weight: 0.3,
	})

	dtiRisk := 50.0
	var dtiRaw *string
	if dti := credit.DTI(); dti != nil {
		dtiRisk = dtiBandRisk(*dti)
		dtiRaw = rawString(fmt.Sprintf("%.1f", *dti))
	}
	inputs = append(inputs, factorInput{
		code: "debt_to_income", raw: dtiRaw, normalized: dtiRisk, weight: 0.3,
	})

	return emitCategory(factors, models.RiskCategoryCredit, inputs)
}

func creditScoreBandRisk(score int) float64 {
	switch {
	case score >= 750:
		return 10
	case score >= 700:
		return 20
	case score >= 650:
		return 35
	case score >= 600:
		return 50
	case score >= 550:
		return 65
	}
	return 80
}

func dtiBandRisk(dti float64) float64 {
	switch {
	case dti < 20:
		return 10
	case dti < 35:
		return 25
	case dti < 50:
		return 50
	case dti < 70:
		return 75
	}
	return 90
}

// scorePerformanceRisk measures how reliably the applicant operates: KYC
// standing, farm verification, and historical yield against expectation.
func (e *RiskEngine) scorePerformanceRisk(farmer *models.FarmerSnapshot, farm *models.FarmSnapshot, factors *[]models.RiskFactorScore) float64 {
	kycRisk := 80.0
	switch farmer.KYCStatus {
	case models.KYCApproved:
		kycRisk = 0
	case models.KYCInReview:
		kycRisk = 30
	case models.KYCPending:
		kycRisk = 40
	}
	kycFactor := factorInput{
		code: "kyc_standing", raw: rawString(string(farmer.KYCStatus)),
		normalized: kycRisk, weight: 0.3,
	}

	if farm == nil {
		return emitCategory(factors, models.RiskCategoryPerformance, []factorInput{
			kycFactor,
			{code: "no_farm_on_record", normalized: 60, weight: 0.7, note: "no farm registered"},
		})
	}

	verificationRisk := 50.0
	if farm.IsVerified {
		verificationRisk = 10
	}

	yieldRisk := 40.0
	var yieldRaw *string
	if len(farm.YieldHistory) > 0 {
		performance := averageYieldPerformance(farm.YieldHistory)
		yieldRisk = clampScore(100 - performance)
		yieldRaw = rawString(fmt.Sprintf("%.1f%%", performance))
	}

	return emitCategory(factors, models.RiskCategoryPerformance, []factorInput{
		kycFactor,
		{code: "farm_verification", raw: rawString(fmt.Sprintf("%t", farm.IsVerified)), normalized: verificationRisk, weight: 0.3},
		{code: "yield_performance", raw: yieldRaw, normalized: yieldRisk, weight: 0.4},
	})
}

// averageYieldPerformance averages actual/expected across the 5 most recent
// seasons, each season's ratio capped at 150%.
func averageYieldPerformance(history []models.CropYieldRecord) float64 {
	considered := history
	if len(considered) > 5 {
		considered = considered[:5]
	}

	var sum float64
	var count int
	for _, record := range considered {
		if record.ExpectedYield <= 0 {
			continue
		}
		ratio := record.ActualYield / record.ExpectedYield * 100
		if ratio > 150 {
			ratio = 150
		}
		sum += ratio
		count++
	}
	if count == 0 {
		return 60 // history present but unusable, mirror the no-history default
	}
	return sum / float64(count)
}

func (e *RiskEngine) scoreExternalRisk(farm *models.FarmSnapshot, signals *models.ExternalRiskSignals, factors *[]models.RiskFactorScore) float64 {
	weatherRisk := defaultWeatherRisk
	var weatherRaw *string
	if signals != nil && signals.WeatherRiskScore != nil {
		weatherRisk = clampScore(*signals.WeatherRiskScore)
		weatherRaw = rawString(fmt.Sprintf("%.1f", *signals.WeatherRiskScore))
	}

	marketRisk := defaultMarketRisk
	var marketRaw *string
	if signals != nil && signals.MarketRiskScore != nil {
		marketRisk = clampScore(*signals.MarketRiskScore)
		marketRaw = rawString(fmt.Sprintf("%.1f", *signals.MarketRiskScore))
	}

	locationRisk := 40.0
	if farm != nil {
		locationRisk = 20
	}
	var locationRaw *string
	if signals != nil && signals.LocationRiskScore != nil {
		locationRisk = clampScore(*signals.LocationRiskScore)
		locationRaw = rawString(fmt.Sprintf("%.1f", *signals.LocationRiskScore))
	}

	return emitCategory(factors, models.RiskCategoryExternal, []factorInput{
		{code: "weather_risk", raw: weatherRaw, normalized: weatherRisk, weight: 0.4},
		{code: "market_risk", raw: marketRaw, normalized: marketRisk, weight: 0.3},
		{code: "location_risk", raw: locationRaw, normalized: locationRisk, weight: 0.3},
	})
}

// scoreFraudRisk surfaces identity and data-consistency signals. The
// duplicate-detection factor is reserved for a future matching service and
// currently scores zero.
func (e *RiskEngine) scoreFraudRisk(farmer *models.FarmerSnapshot, farm *models.FarmSnapshot, factors *[]models.RiskFactorScore, indicators *[]string) float64 {
	identityRisk := 0.0
	if farmer.NationalID == nil || strings.TrimSpace(*farmer.NationalID) == "" {
		identityRisk += 40
		*indicators = append(*indicators, "national ID not on record")
	}
	if farmer.KYCStatus != models.KYCApproved {
		identityRisk += 20
		*indicators = append(*indicators, "identity not KYC-approved")
	}

	consistencyRisk := 0.0
	var consistencyRaw *string
	if farm != nil {
		if geographyMismatch(farmer, farm) {
			consistencyRisk += 30
			*indicators = append(*indicators, "farm location does not match farmer's registered area")
		}
		if farm.AcreageTotal > 100 {
			consistencyRisk += 20
			*indicators = append(*indicators, fmt.Sprintf("unusually large land claim (%.1f acres)", farm.AcreageTotal))
		}
		consistencyRaw = rawString(fmt.Sprintf("%.1f acres", farm.AcreageTotal))
	}

	return emitCategory(factors, models.RiskCategoryFraud, []factorInput{
		{code: "identity_verification", raw: rawString(string(farmer.KYCStatus)), normalized: clampScore(identityRisk), weight: 0.4},
		{code: "data_consistency", raw: consistencyRaw, normalized: clampScore(consistencyRisk), weight: 0.3},
		{code: "duplicate_detection", normalized: 0, weight: 0.3, note: "reserved for duplicate matching"},
	})
}

// geographyMismatch flags a farm registered outside the farmer's declared
// county. A matching sub-county is accepted as adjacency.
func geographyMismatch(farmer *models.FarmerSnapshot, farm *models.FarmSnapshot) bool {
	if farmer.County == nil || farm.County == nil {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(*farmer.County), strings.TrimSpace(*farm.County)) {
		return false
	}
	if farmer.SubCounty != nil && farm.SubCounty != nil &&
		strings.EqualFold(strings.TrimSpace(*farmer.SubCounty), strings.TrimSpace(*farm.SubCounty)) {
		return false
	}
	return true
}

// factorInput is the pre-weighting form of a factor within one category.
type factorInput struct {
	code       string
	raw        *string
	normalized float64
	weight     float64
	note       string
}

// emitCategory appends the category's factor scores and returns the
// weighted category score.
func emitCategory(factors *[]models.RiskFactorScore, category models.RiskCategory, inputs []factorInput) float64 {
	var score float64
	for _, in := range inputs {
		weighted := in.normalized * in.weight
		score += weighted
		*factors = append(*factors, models.RiskFactorScore{
			Code:          in.code,
			Category:      category,
			RawValue:      in.raw,
			Normalized:    in.normalized,
			Weight:        in.weight,
			WeightedValue: weighted,
			Note:          in.note,
		})
	}
	return score
}

func confidence(factors []models.RiskFactorScore) float64 {
	if len(factors) == 0 {
		return 0
	}
	var withData int
	for i := range factors {
		if factors[i].HasData() {
			withData++
		}
	}
	return float64(withData) / float64(len(factors))
}

func buildFlags(creditScore, performanceScore, externalScore, fraudScore float64, factors []models.RiskFactorScore) []string {
	var flags []string

	categoryScores := map[models.RiskCategory]float64{
		models.RiskCategoryCredit:      creditScore,
		models.RiskCategoryPerformance: performanceScore,
		models.RiskCategoryExternal:    externalScore,
		models.RiskCategoryFraud:       fraudScore,
	}
	for _, category := range []models.RiskCategory{
		models.RiskCategoryCredit, models.RiskCategoryPerformance,
		models.RiskCategoryExternal, models.RiskCategoryFraud,
	} {
		if categoryScores[category] >= 60 {
			flags = append(flags, fmt.Sprintf("elevated %s risk (%.0f)", category, categoryScores[category]))
		}
	}

	for i := range factors {
		if factors[i].Normalized >= 70 {
			flags = append(flags, fmt.Sprintf("high risk signal: %s (%.0f)", factors[i].Code, factors[i].Normalized))
		}
	}
	return flags
}

var riskRecommendations = map[models.RiskLevel][]string{
	models.RiskLevelLow: {
		"Standard monitoring is sufficient.",
	},
	models.RiskLevelMedium: {
		"Schedule a follow-up review within the validity window.",
		"Request updated yield records at next season close.",
	},
	models.RiskLevelHigh: {
		"Route to manual review before any disbursement.",
		"Request supporting documents for farm ownership and identity.",
	},
	models.RiskLevelVeryHigh: {
		"Do not approve without a field verification visit.",
		"Escalate to the fraud review team.",
	},
}

func recommendationsForLevel(level models.RiskLevel) []string {
	return riskRecommendations[level]
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func rawString(s string) *string {
	return &s
}
