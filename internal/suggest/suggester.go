// Package suggest turns suboptimal predictions into refactoring advice using a
// fixed table of metric thresholds.
package suggest

import (
	"fmt"

	"github.com/Veraticus/codeadvisor/internal/common"
	"github.com/Veraticus/codeadvisor/internal/model"
)

// Rule flags a row whose metric is strictly greater than Threshold.
type Rule struct {
	Feature    string
	Issue      string
	Suggestion string
	Threshold  float64
}

// Suggestion is the advice for one suboptimal row.
type Suggestion struct {
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	RowIndex    int      `json:"row_index"`
}

// Rule texts.
const (
	IssueComplexity = "High cyclomatic complexity"
	IssueCoupling   = "High coupling"
	IssueCohesion   = "Low cohesion"
	IssueMethods    = "Too many methods"

	SplitMethod     = "split method into smaller functions"
	ApplySOLID      = "apply SOLID principles to reduce coupling"
	ReorganizeClass = "reorganize class responsibilities"
	SplitClass      = "split class into smaller classes"
)

// DefaultRules returns the rule table in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Feature:    model.FeatureCyclomaticComplexity,
			Threshold:  15,
			Issue:      IssueComplexity,
			Suggestion: SplitMethod,
		},
		{
			Feature:    model.FeatureCouplingBetweenObjects,
			Threshold:  8,
			Issue:      IssueCoupling,
			Suggestion: ApplySOLID,
		},
		{
			Feature:    model.FeatureLackOfCohesion,
			Threshold:  0.5,
			Issue:      IssueCohesion,
			Suggestion: ReorganizeClass,
		},
		{
			Feature:    model.FeatureNumberOfMethods,
			Threshold:  15,
			Issue:      IssueMethods,
			Suggestion: SplitClass,
		},
	}
}

// Suggester applies an ordered rule table.
type Suggester struct {
	rules []Rule
}

// NewSuggester creates a suggester with the given rules, or DefaultRules when none
// are given.
func NewSuggester(rules ...Rule) *Suggester {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Suggester{rules: rules}
}

// Suggest walks the rows of table in order. Each row predicted suboptimal is
// checked against every rule; rows where at least one rule fires produce a
// Suggestion listing the issues in rule order. Optimal rows never do.
func (s *Suggester) Suggest(table *model.Table, predictions []int) ([]Suggestion, error) {
	if err := table.CheckRectangular(); err != nil {
		return nil, err
	}
	if len(predictions) != table.Len() {
		return nil, fmt.Errorf("%w: %d rows but %d predictions", common.ErrLengthMismatch, table.Len(), len(predictions))
	}

	indices := make([]int, len(s.rules))
	var missing []string
	for i, rule := range s.rules {
		indices[i] = table.ColumnIndex(rule.Feature)
		if indices[i] < 0 {
			missing = append(missing, rule.Feature)
		}
	}
	if len(missing) > 0 {
		return nil, &model.SchemaError{Missing: missing}
	}

	var out []Suggestion
	for row, prediction := range predictions {
		if prediction != model.Suboptimal {
			continue
		}

		var sg Suggestion
		for i, rule := range s.rules {
			if table.Rows[row][indices[i]] > rule.Threshold {
				sg.Issues = append(sg.Issues, rule.Issue)
				sg.Suggestions = append(sg.Suggestions, rule.Suggestion)
			}
		}
		if len(sg.Issues) > 0 {
			sg.RowIndex = row
			out = append(out, sg)
		}
	}
	return out, nil
}

// Suggest applies DefaultRules.
func Suggest(table *model.Table, predictions []int) ([]Suggestion, error) {
	return NewSuggester().Suggest(table, predictions)
}
