package quality

import (
	"fmt"

	cs "github.com/cdmsilver/cdmsilver"
)

// Result is the outcome of a single quality check.
type Result struct {
	RuleName       string
	RuleType       RuleType
	Column         string
	Severity       Severity
	Passed         bool
	Details        string
	TotalRecords   int64
	FailingRecords int64
}

// StatusIcon renders the result's one-glyph status.
func (r Result) StatusIcon() string {
	if r.Passed {
		return "✓"
	}
	if r.Severity == SeverityError {
		return "✗"
	}
	return "⚠"
}

func (r Result) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", r.StatusIcon(), r.Severity, r.RuleName, r.Details)
}

// Engine evaluates configured quality rules against datasets.
type Engine struct {
	cfg *Config
}

// NewEngine builds an engine over a rule config.
func NewEngine(cfg *Config) *Engine { return &Engine{cfg: cfg} }

// Validate runs an entity's configured rules against a dataset. Reference
// datasets for referential rules are supplied by logical entity name; a
// missing reference dataset skips its rule as passed with an explanatory
// detail.
//
// An entity with no configured rules yields a single config_missing warning
// result so that absent configuration stays visible in reports. A rule
// whose evaluation errors becomes a failed result carrying the error text;
// no rule aborts the batch. The returned error is only the dataset-level
// count failure, which makes every rule unevaluable.
func (e *Engine) Validate(entity string, ds cs.Dataset, refs map[string]cs.Dataset) ([]Result, error) {
	cfg, ok := e.cfg.Entities[entity]
	if !ok || len(cfg.Rules) == 0 {
		return []Result{{
			RuleName: "config_missing",
			RuleType: "config",
			Severity: SeverityWarning,
			Details:  fmt.Sprintf("no quality rules configured for entity %q", entity),
		}}, nil
	}

	total, err := ds.Count()
	if err != nil {
		return nil, fmt.Errorf("quality: %s: count: %w", entity, err)
	}

	results := make([]Result, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		results = append(results, e.evaluate(rule, ds, total, refs))
	}
	return results, nil
}

func (e *Engine) evaluate(rule Rule, ds cs.Dataset, total int64, refs map[string]cs.Dataset) Result {
	res, err := e.check(rule, ds, total, refs)
	if err != nil {
		return Result{
			RuleName:     rule.Name,
			RuleType:     rule.Type,
			Column:       rule.Column,
			Severity:     rule.severity(),
			Passed:       false,
			Details:      fmt.Sprintf("error: %v", err),
			TotalRecords: total,
		}
	}
	return res
}

func (e *Engine) check(rule Rule, ds cs.Dataset, total int64, refs map[string]cs.Dataset) (Result, error) {
	switch rule.Type {
	case RuleNotNull:
		return checkNotNull(rule, ds, total)
	case RuleUnique:
		return checkUnique(rule, ds, total)
	case RuleReferential:
		return checkReferential(rule, ds, total, refs)
	case RuleRange:
		return checkRange(rule, ds, total)
	case RuleLength:
		return checkLength(rule, ds, total)
	case RulePattern:
		return checkPattern(rule, ds, total)
	case RuleCompleteness:
		return checkCompleteness(rule, ds, total)
	}
	return Result{}, fmt.Errorf("%s: unknown rule type %q", cs.CodeUnknownRuleType, rule.Type)
}

func result(rule Rule, total, failing int64, passed bool, details string) Result {
	return Result{
		RuleName:       rule.Name,
		RuleType:       rule.Type,
		Column:         rule.Column,
		Severity:       rule.severity(),
		Passed:         passed,
		Details:        details,
		TotalRecords:   total,
		FailingRecords: failing,
	}
}
