package workflow

import (
	"fmt"
	"slices"
)

// SelectActiveLevels computes the ordered subset of definition levels
// that one instance will pass through for the given routing value.
//
// Mandatory levels are always included. Every other level is included
// iff at least one of its routing rules matches; a level with neither
// the mandatory flag nor a matching rule is simply excluded. The result
// is sorted ascending by level number. Pure and deterministic; called
// again on resubmit.
func SelectActiveLevels(def *WorkflowDefinition, routingValue float64) []Level {
	active := make([]Level, 0, len(def.Levels))

	for _, level := range def.Levels {
		if level.IsMandatory || anyRuleMatches(def.RoutingRules, level.LevelNumber, routingValue) {
			active = append(active, level)
		}
	}

	slices.SortFunc(active, func(a, b Level) int {
		return a.LevelNumber - b.LevelNumber
	})

	return active
}

func anyRuleMatches(rules []RoutingRule, levelNumber int, routingValue float64) bool {
	for _, rule := range rules {
		if rule.LevelNumber != levelNumber {
			continue
		}
		if rule.Matches(routingValue) {
			return true
		}
	}
	return false
}

// Matches evaluates the rule predicate against a routing value. Unknown
// operators never match; ValidateDefinition rejects them at save time.
func (r RoutingRule) Matches(value float64) bool {
	switch r.Operator {
	case OperatorGte:
		return value >= r.Threshold
	case OperatorGt:
		return value > r.Threshold
	case OperatorLte:
		return value <= r.Threshold
	case OperatorLt:
		return value < r.Threshold
	case OperatorEq:
		return value == r.Threshold
	default:
		return false
	}
}

var validOperators = []string{OperatorGte, OperatorGt, OperatorLte, OperatorLt, OperatorEq}

// ValidateDefinition rejects malformed definitions at save time so the
// runtime operations never see them: level numbers must be 1..N with no
// gaps, every level needs a non-empty role set and a known approval
// mode, every routing rule must target an existing level, and the
// definition must yield at least one active level for routing value 0.
func ValidateDefinition(def *WorkflowDefinition) error {
	if def.DocumentType == "" {
		return fmt.Errorf("%w: document type is required", ErrInvalidDefinition)
	}
	if len(def.Levels) == 0 {
		return fmt.Errorf("%w: at least one level is required", ErrInvalidDefinition)
	}

	levelNumbers := make(map[int]bool, len(def.Levels))
	for i, level := range def.Levels {
		if level.LevelNumber != i+1 {
			return fmt.Errorf("%w: level numbers must be sequential starting at 1, got %d at position %d",
				ErrInvalidDefinition, level.LevelNumber, i)
		}
		if len(level.ApproverRoles) == 0 {
			return fmt.Errorf("%w: level %d has no approver roles", ErrInvalidDefinition, level.LevelNumber)
		}
		if level.ApprovalMode != ApprovalModeAny && level.ApprovalMode != ApprovalModeAll {
			return fmt.Errorf("%w: level %d has unknown approval mode %q",
				ErrInvalidDefinition, level.LevelNumber, level.ApprovalMode)
		}
		levelNumbers[level.LevelNumber] = true
	}

	for _, rule := range def.RoutingRules {
		if !levelNumbers[rule.LevelNumber] {
			return fmt.Errorf("%w: routing rule references non-existent level %d",
				ErrInvalidDefinition, rule.LevelNumber)
		}
		if !slices.Contains(validOperators, rule.Operator) {
			return fmt.Errorf("%w: routing rule for level %d has unknown operator %q",
				ErrInvalidDefinition, rule.LevelNumber, rule.Operator)
		}
	}

	if len(SelectActiveLevels(def, 0)) == 0 {
		return fmt.Errorf("%w: definition would activate zero levels for a routing value of 0",
			ErrInvalidDefinition)
	}

	return nil
}
