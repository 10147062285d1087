package services

import (
	"github.com/jajuok/agripro-sub000/internal/models"
)

// BuildEvaluationContext assembles the namespaced snapshot the rules engine
// evaluates against. The context is built once per assessment and treated as
// immutable afterwards.
func BuildEvaluationContext(
	farmer *models.FarmerSnapshot,
	farm *models.FarmSnapshot,
	credit *models.CreditCheck,
	custom map[string]any,
) *models.EvaluationContext {
	ctx := &models.EvaluationContext{
		Farmer:   farmerNamespace(farmer),
		KYC:      kycNamespace(farmer),
		Farm:     farmNamespace(farm),
		Credit:   creditNamespace(credit),
		Location: locationNamespace(farmer, farm),
		Custom:   map[string]models.Value{},
	}

	for key, value := range custom {
		ctx.Custom[key] = models.FromAny(value)
	}
	return ctx
}

func farmerNamespace(farmer *models.FarmerSnapshot) map[string]models.Value {
	if farmer == nil {
		return map[string]models.Value{}
	}
	ns := map[string]models.Value{
		"id":               models.Str(farmer.ID),
		"first_name":       models.Str(farmer.FirstName),
		"last_name":        models.Str(farmer.LastName),
		"phone":            models.Str(farmer.Phone),
		"is_active":        models.Boolean(farmer.IsActive),
		"has_bank_account": models.Boolean(farmer.HasBankAccount),
		"has_mobile_money": models.Boolean(farmer.HasMobileMoney),
		"national_id":      optionalString(farmer.NationalID),
	}
	// kyc is mirrored under the farmer namespace so both
	// farmer.kyc.status and kyc.status resolve.
	ns["kyc"] = models.MapOf(kycNamespace(farmer))
	return ns
}

func kycNamespace(farmer *models.FarmerSnapshot) map[string]models.Value {
	if farmer == nil {
		return map[string]models.Value{}
	}
	return map[string]models.Value{
		"status": models.Str(string(farmer.KYCStatus)),
	}
}

func farmNamespace(farm *models.FarmSnapshot) map[string]models.Value {
	if farm == nil {
		return map[string]models.Value{}
	}

	history := make([]models.Value, 0, len(farm.YieldHistory))
	for _, record := range farm.YieldHistory {
		history = append(history, models.MapOf(map[string]models.Value{
			"year":           models.Number(float64(record.Year)),
			"crop_type":      models.Str(record.CropType),
			"expected_yield": models.Number(record.ExpectedYield),
			"actual_yield":   models.Number(record.ActualYield),
		}))
	}

	return map[string]models.Value{
		"id":             models.Str(farm.ID),
		"acreage_total":  models.Number(farm.AcreageTotal),
		"ownership_type": optionalString(farm.OwnershipType),
		"soil_type":      optionalString(farm.SoilType),
		"water_source":   optionalString(farm.WaterSource),
		"is_verified":    models.Boolean(farm.IsVerified),
		"yield_history":  models.ListOf(history...),
	}
}

func creditNamespace(credit *models.CreditCheck) map[string]models.Value {
	if credit == nil {
		return map[string]models.Value{}
	}

	score := models.Null()
	if credit.CreditScore != nil {
		score = models.Number(float64(*credit.CreditScore))
	}

	dti := models.Null()
	if ratio := credit.DTI(); ratio != nil {
		dti = models.Number(*ratio)
	}

	return map[string]models.Value{
		"score":               score,
		"score_band":          optionalString(credit.ScoreBand),
		"open_accounts":       models.Number(float64(credit.OpenAccounts)),
		"total_debt":          models.Number(credit.TotalDebt.InexactFloat64()),
		"monthly_obligations": models.Number(credit.MonthlyObligations.InexactFloat64()),
		"monthly_income":      models.Number(credit.MonthlyIncome.InexactFloat64()),
		"delinquent_count":    models.Number(float64(credit.DelinquentCount)),
		"default_count":       models.Number(float64(credit.DefaultCount)),
		"debt_to_income":      dti,
		"completed":           models.Boolean(credit.Completed),
		"provenance":          models.Str(string(credit.Provenance)),
	}
}

func locationNamespace(farmer *models.FarmerSnapshot, farm *models.FarmSnapshot) map[string]models.Value {
	ns := map[string]models.Value{}
	if farmer != nil {
		ns["county"] = optionalString(farmer.County)
		ns["sub_county"] = optionalString(farmer.SubCounty)
		ns["ward"] = optionalString(farmer.Ward)
		ns["village"] = optionalString(farmer.Village)
	}
	if farm != nil {
		ns["farm_county"] = optionalString(farm.County)
		ns["farm_sub_county"] = optionalString(farm.SubCounty)
	}
	return ns
}

func optionalString(s *string) models.Value {
	if s == nil {
		return models.Null()
	}
	return models.Str(*s)
}
