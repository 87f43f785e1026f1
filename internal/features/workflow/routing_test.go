package workflow

import (
	"errors"
	"testing"
)

// orderDefinition mirrors a typical purchase order setup: procurement
// always signs off, cost center from 10k, general manager from 50k.
func orderDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		DocumentType: DocumentTypeOrder,
		Name:         "Purchase order approval",
		IsDefault:    true,
		Active:       true,
		Levels: []Level{
			{LevelNumber: 1, LevelName: "Procurement", ApproverRoles: []string{"procurement_manager"}, ApprovalMode: ApprovalModeAny, IsMandatory: true},
			{LevelNumber: 2, LevelName: "Cost center", ApproverRoles: []string{"cost_center"}, ApprovalMode: ApprovalModeAny},
			{LevelNumber: 3, LevelName: "General manager", ApproverRoles: []string{"general_manager"}, ApprovalMode: ApprovalModeAny},
		},
		RoutingRules: []RoutingRule{
			{LevelNumber: 2, Operator: OperatorGte, Threshold: 10000},
			{LevelNumber: 3, Operator: OperatorGte, Threshold: 50000},
		},
	}
}

func TestSelectActiveLevels(t *testing.T) {
	def := orderDefinition()

	tests := []struct {
		name       string
		value      float64
		wantLevels []int
	}{
		{"small order hits only the mandatory level", 5000, []int{1}},
		{"mid order adds the cost center", 20000, []int{1, 2}},
		{"threshold is inclusive", 10000, []int{1, 2}},
		{"large order activates all three", 75000, []int{1, 2, 3}},
		{"just below the top threshold", 49999.99, []int{1, 2}},
		{"zero value keeps mandatory levels", 0, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectActiveLevels(def, tt.value)
			if len(got) != len(tt.wantLevels) {
				t.Fatalf("got %d levels, want %d", len(got), len(tt.wantLevels))
			}
			for i, level := range got {
				if level.LevelNumber != tt.wantLevels[i] {
					t.Errorf("position %d: got level %d, want %d", i, level.LevelNumber, tt.wantLevels[i])
				}
			}
		})
	}
}

func TestSelectActiveLevelsSortsByLevelNumber(t *testing.T) {
	def := orderDefinition()
	// Storage order must not leak into evaluation order.
	def.Levels = []Level{def.Levels[2], def.Levels[0], def.Levels[1]}

	got := SelectActiveLevels(def, 75000)
	for i, level := range got {
		if level.LevelNumber != i+1 {
			t.Fatalf("levels not sorted: got %v", got)
		}
	}
}

func TestSelectActiveLevelsOrCombinesRules(t *testing.T) {
	def := &WorkflowDefinition{
		DocumentType: DocumentTypeOrder,
		Levels: []Level{
			{LevelNumber: 1, ApproverRoles: []string{"procurement_manager"}, ApprovalMode: ApprovalModeAny, IsMandatory: true},
			{LevelNumber: 2, ApproverRoles: []string{"finance"}, ApprovalMode: ApprovalModeAny},
		},
		RoutingRules: []RoutingRule{
			{LevelNumber: 2, Operator: OperatorLt, Threshold: 100},
			{LevelNumber: 2, Operator: OperatorGte, Threshold: 10000},
		},
	}

	if got := SelectActiveLevels(def, 50); len(got) != 2 {
		t.Errorf("value 50 should match the lt rule, got %d levels", len(got))
	}
	if got := SelectActiveLevels(def, 500); len(got) != 1 {
		t.Errorf("value 500 should match no rule, got %d levels", len(got))
	}
	if got := SelectActiveLevels(def, 20000); len(got) != 2 {
		t.Errorf("value 20000 should match the gte rule, got %d levels", len(got))
	}
}

func TestRoutingRuleMatches(t *testing.T) {
	tests := []struct {
		operator  string
		threshold float64
		value     float64
		want      bool
	}{
		{OperatorGte, 100, 100, true},
		{OperatorGte, 100, 99.99, false},
		{OperatorGt, 100, 100, false},
		{OperatorGt, 100, 100.01, true},
		{OperatorLte, 100, 100, true},
		{OperatorLte, 100, 101, false},
		{OperatorLt, 100, 99, true},
		{OperatorLt, 100, 100, false},
		{OperatorEq, 100, 100, true},
		{OperatorEq, 100, 100.5, false},
		{"between", 100, 100, false},
	}

	for _, tt := range tests {
		rule := RoutingRule{LevelNumber: 1, Operator: tt.operator, Threshold: tt.threshold}
		if got := rule.Matches(tt.value); got != tt.want {
			t.Errorf("%s %v against %v: got %v, want %v", tt.operator, tt.threshold, tt.value, got, tt.want)
		}
	}
}

func TestValidateDefinition(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(def *WorkflowDefinition)
		wantErr bool
	}{
		{"valid definition", func(def *WorkflowDefinition) {}, false},
		{"missing document type", func(def *WorkflowDefinition) { def.DocumentType = "" }, true},
		{"no levels", func(def *WorkflowDefinition) { def.Levels = nil }, true},
		{"gap in level numbers", func(def *WorkflowDefinition) { def.Levels[1].LevelNumber = 5 }, true},
		{"level without roles", func(def *WorkflowDefinition) { def.Levels[0].ApproverRoles = nil }, true},
		{"unknown approval mode", func(def *WorkflowDefinition) { def.Levels[0].ApprovalMode = "most" }, true},
		{"rule targets missing level", func(def *WorkflowDefinition) {
			def.RoutingRules = append(def.RoutingRules, RoutingRule{LevelNumber: 9, Operator: OperatorGte, Threshold: 1})
		}, true},
		{"rule with unknown operator", func(def *WorkflowDefinition) { def.RoutingRules[0].Operator = "between" }, true},
		{"no level active at zero", func(def *WorkflowDefinition) {
			def.Levels[0].IsMandatory = false
			def.RoutingRules = append(def.RoutingRules, RoutingRule{LevelNumber: 1, Operator: OperatorGte, Threshold: 1})
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := orderDefinition()
			tt.mutate(def)

			err := ValidateDefinition(def)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDefinition) {
					t.Fatalf("want ErrInvalidDefinition, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
