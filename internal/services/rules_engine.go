package services

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/jajuok/agripro-sub000/internal/models"
)

// RuleEvaluation is the aggregate output of one rules-engine run.
type RuleEvaluation struct {
	Results          []models.RuleEvaluationResult
	EligibilityScore float64
	MandatoryPassed  bool
	RulesPassed      int
	RulesFailed      int
}

// RulesEngine evaluates a scheme's configured rules against an evaluation
// context. It is stateless; one instance serves all assessments.
type RulesEngine struct{}

func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Evaluate runs the scheme's rule groups when any are defined, otherwise the
// flat rule list. The eligibility score is the weighted percentage of passed
// rules (or groups), and MandatoryPassed is false as soon as any mandatory
// rule or mandatory group fails.
func (e *RulesEngine) Evaluate(groups []models.RuleGroup, rules []models.Rule, ctx *models.EvaluationContext) RuleEvaluation {
	activeGroups := make([]models.RuleGroup, 0, len(groups))
	for _, g := range groups {
		if g.IsActive {
			activeGroups = append(activeGroups, g)
		}
	}

	if len(activeGroups) > 0 {
		return e.evaluateGrouped(activeGroups, ctx)
	}
	return e.evaluateFlat(rules, ctx)
}

func (e *RulesEngine) evaluateFlat(rules []models.Rule, ctx *models.EvaluationContext) RuleEvaluation {
	ordered := orderRules(rules)

	eval := RuleEvaluation{MandatoryPassed: true}
	var totalWeight, earnedWeight float64

	for i := range ordered {
		rule := &ordered[i]
		result := e.evaluateRule(rule, ctx)
		eval.Results = append(eval.Results, result)

		if result.Passed {
			eval.RulesPassed++
			earnedWeight += rule.Weight
		} else {
			eval.RulesFailed++
			if rule.IsMandatory {
				eval.MandatoryPassed = false
			}
		}
		totalWeight += rule.Weight
	}

	eval.EligibilityScore = weightedScore(earnedWeight, totalWeight)
	return eval
}

func (e *RulesEngine) evaluateGrouped(groups []models.RuleGroup, ctx *models.EvaluationContext) RuleEvaluation {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Priority < groups[j].Priority
	})

	eval := RuleEvaluation{MandatoryPassed: true}
	var totalWeight, earnedWeight float64

	for gi := range groups {
		group := &groups[gi]
		ordered := orderRules(group.Rules)

		groupPassed := group.LogicOperator != models.LogicOR || len(ordered) == 0

		for i := range ordered {
			rule := &ordered[i]
			result := e.evaluateRule(rule, ctx)
			eval.Results = append(eval.Results, result)

			if result.Passed {
				eval.RulesPassed++
			} else {
				eval.RulesFailed++
				if rule.IsMandatory {
					eval.MandatoryPassed = false
				}
			}

			switch group.LogicOperator {
			case models.LogicOR:
				if result.Passed {
					groupPassed = true
				}
			default: // AND
				if !result.Passed {
					groupPassed = false
				}
			}
		}

		if !groupPassed && group.IsMandatory {
			eval.MandatoryPassed = false
		}

		if groupPassed {
			earnedWeight += group.Weight
		}
		totalWeight += group.Weight
	}

	eval.EligibilityScore = weightedScore(earnedWeight, totalWeight)
	return eval
}

// weightedScore converts earned/total weight into a 0-100 score. A scheme
// with no weighted constraints scores 100: nothing was required.
func weightedScore(earned, total float64) float64 {
	if total <= 0 {
		return 100
	}
	return earned / total * 100
}

func orderRules(rules []models.Rule) []models.Rule {
	ordered := make([]models.Rule, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})
	return ordered
}

// evaluateRule compares one rule against the context. A rule never errors:
// unknown operators, missing values and type-incompatible comparisons all
// evaluate to a failed result with an explanatory message.
func (e *RulesEngine) evaluateRule(rule *models.Rule, ctx *models.EvaluationContext) models.RuleEvaluationResult {
	actual := ctx.Resolve(rule.FieldType, rule.Path())

	expected, parseErr := rule.ParsedValue()
	if parseErr != nil {
		slog.Warn("rule value failed to parse, comparing as raw string",
			"rule_id", rule.ID,
			"value", rule.Value,
			"value_type", rule.ValueType,
			"error", parseErr)
	}

	passed, message := compare(actual, expected, rule.Operator)

	// Exclusion rules invert the comparison: matching the condition
	// disqualifies the applicant.
	if rule.IsExclusion {
		passed = !passed
	}

	return models.RuleEvaluationResult{
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		Passed:      passed,
		Actual:      actual.AsString(),
		Expected:    expected.AsString(),
		Message:     message,
		IsMandatory: rule.IsMandatory,
		Weight:      rule.Weight,
	}
}

func compare(actual, expected models.Value, op models.RuleOperator) (bool, string) {
	// Null checks are the only operators defined on a missing value.
	switch op {
	case models.OperatorIsNull:
		return actual.IsNull(), "null check"
	case models.OperatorIsNotNull:
		return !actual.IsNull(), "not-null check"
	}

	if actual.IsNull() {
		return false, "no value present for field"
	}

	switch op {
	case models.OperatorEquals:
		return valuesEqual(actual, expected), "equality check"
	case models.OperatorNotEquals:
		return !valuesEqual(actual, expected), "inequality check"

	case models.OperatorGreater, models.OperatorGreaterOrEqual,
		models.OperatorLess, models.OperatorLessOrEqual:
		a, aok := actual.AsNumber()
		b, bok := expected.AsNumber()
		if !aok || !bok {
			return false, "non-numeric value in numeric comparison"
		}
		switch op {
		case models.OperatorGreater:
			return a > b, "numeric comparison"
		case models.OperatorGreaterOrEqual:
			return a >= b, "numeric comparison"
		case models.OperatorLess:
			return a < b, "numeric comparison"
		default:
			return a <= b, "numeric comparison"
		}

	case models.OperatorInList:
		return listContains(expected, actual), "list membership check"
	case models.OperatorNotInList:
		return !listContains(expected, actual), "list exclusion check"

	case models.OperatorContains:
		return containsValue(actual, expected), "substring check"
	case models.OperatorNotContains:
		return !containsValue(actual, expected), "substring exclusion check"

	case models.OperatorBetween:
		return betweenValues(actual, expected)

	case models.OperatorRegexMatch:
		re, err := regexp.Compile(expected.AsString())
		if err != nil {
			return false, fmt.Sprintf("invalid pattern: %v", err)
		}
		return re.MatchString(actual.AsString()), "pattern match"
	}

	return false, fmt.Sprintf("unsupported operator %q", op)
}

// valuesEqual compares numerically when both sides parse as numbers, and
// falls back to a case-insensitive, whitespace-trimmed string comparison.
func valuesEqual(a, b models.Value) bool {
	if an, aok := a.AsNumber(); aok {
		if bn, bok := b.AsNumber(); bok {
			return an == bn
		}
	}
	return normalize(a.AsString()) == normalize(b.AsString())
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func listContains(list, needle models.Value) bool {
	if list.Kind != models.KindList {
		// A scalar expected value degrades to a single-element list.
		return valuesEqual(list, needle)
	}
	for _, item := range list.List {
		if valuesEqual(item, needle) {
			return true
		}
	}
	return false
}

// containsValue checks case-insensitive substring on scalars and element
// membership when the actual value is itself a list.
func containsValue(actual, expected models.Value) bool {
	if actual.Kind == models.KindList {
		for _, item := range actual.List {
			if valuesEqual(item, expected) {
				return true
			}
		}
		return false
	}
	return strings.Contains(normalize(actual.AsString()), normalize(expected.AsString()))
}

// betweenValues expects the rule literal to be a two-element [low, high]
// list; both bounds are inclusive.
func betweenValues(actual, expected models.Value) (bool, string) {
	if expected.Kind != models.KindList || len(expected.List) != 2 {
		return false, "between requires a [low, high] value"
	}
	a, aok := actual.AsNumber()
	low, lok := expected.List[0].AsNumber()
	high, hok := expected.List[1].AsNumber()
	if !aok || !lok || !hok {
		return false, "non-numeric value in range comparison"
	}
	return a >= low && a <= high, "range check"
}
