package quality

import (
	"fmt"
	"math"

	cs "github.com/cdmsilver/cdmsilver"
)

func checkNotNull(rule Rule, ds cs.Dataset, total int64) (Result, error) {
	nulls, err := countWhere(ds, cs.IsNull(cs.Col(rule.Column)))
	if err != nil {
		return Result{}, err
	}
	return result(rule, total, nulls, nulls == 0,
		fmt.Sprintf("%d/%d null values", nulls, total)), nil
}

func checkUnique(rule Rule, ds cs.Dataset, total int64) (Result, error) {
	nonNull, err := ds.Filter(cs.IsNotNull(cs.Col(rule.Column)))
	if err != nil {
		return Result{}, err
	}
	actual, err := nonNull.Count()
	if err != nil {
		return Result{}, err
	}
	values, err := nonNull.Select(cs.As(cs.Col(rule.Column), rule.Column))
	if err != nil {
		return Result{}, err
	}
	distinctValues, err := values.Distinct()
	if err != nil {
		return Result{}, err
	}
	distinct, err := distinctValues.Count()
	if err != nil {
		return Result{}, err
	}
	duplicates := actual - distinct
	return result(rule, total, duplicates, duplicates == 0,
		fmt.Sprintf("%d duplicate values out of %d", duplicates, actual)), nil
}

func checkReferential(rule Rule, ds cs.Dataset, total int64, refs map[string]cs.Dataset) (Result, error) {
	if rule.References == nil {
		return Result{}, fmt.Errorf("referential rule without references block")
	}
	refEntity, refColumn := rule.References.Entity, rule.References.Column
	refDS, ok := refs[refEntity]
	if !ok {
		return result(rule, total, 0, true,
			fmt.Sprintf("skipped (reference entity %q not loaded)", refEntity)), nil
	}

	fk, err := ds.Filter(cs.IsNotNull(cs.Col(rule.Column)))
	if err != nil {
		return Result{}, err
	}
	fkValues, err := fk.Select(cs.As(cs.Col(rule.Column), rule.Column))
	if err != nil {
		return Result{}, err
	}
	fkDistinct, err := fkValues.Distinct()
	if err != nil {
		return Result{}, err
	}
	// Project the referenced column under the FK column's name so the set
	// difference runs over identical layouts.
	pkValues, err := refDS.Select(cs.As(cs.Col(refColumn), rule.Column))
	if err != nil {
		return Result{}, err
	}
	pkDistinct, err := pkValues.Distinct()
	if err != nil {
		return Result{}, err
	}
	orphanedSet, err := fkDistinct.Subtract(pkDistinct)
	if err != nil {
		return Result{}, err
	}
	orphaned, err := orphanedSet.Count()
	if err != nil {
		return Result{}, err
	}
	return result(rule, total, orphaned, orphaned == 0,
		fmt.Sprintf("%d orphaned references to %s.%s", orphaned, refEntity, refColumn)), nil
}

func checkRange(rule Rule, ds cs.Dataset, total int64) (Result, error) {
	min, max := boundOr(rule.Min, math.Inf(-1)), boundOr(rule.Max, math.Inf(1))
	outOfRange, err := countWhere(ds,
		cs.And(cs.IsNotNull(cs.Col(rule.Column)),
			cs.Or(
				cs.Lt(cs.Col(rule.Column), cs.Lit(min)),
				cs.Gt(cs.Col(rule.Column), cs.Lit(max)))))
	if err != nil {
		return Result{}, err
	}
	return result(rule, total, outOfRange, outOfRange == 0,
		fmt.Sprintf("%d values outside [%v, %v]", outOfRange, bound(rule.Min), bound(rule.Max))), nil
}

func checkLength(rule Rule, ds cs.Dataset, total int64) (Result, error) {
	min, max := boundOr(rule.Min, 0), boundOr(rule.Max, 999999)
	length := cs.Length(cs.Col(rule.Column))
	invalid, err := countWhere(ds,
		cs.And(cs.IsNotNull(cs.Col(rule.Column)),
			cs.Or(
				cs.Lt(length, cs.Lit(min)),
				cs.Gt(length, cs.Lit(max)))))
	if err != nil {
		return Result{}, err
	}
	return result(rule, total, invalid, invalid == 0,
		fmt.Sprintf("%d values with length outside [%d, %d]", invalid, int(min), int(max))), nil
}

func checkPattern(rule Rule, ds cs.Dataset, total int64) (Result, error) {
	pattern := rule.Pattern
	if pattern == "" {
		pattern = ".*"
	}
	nonNull, err := ds.Filter(cs.IsNotNull(cs.Col(rule.Column)))
	if err != nil {
		return Result{}, err
	}
	checked, err := nonNull.Count()
	if err != nil {
		return Result{}, err
	}
	nonMatching, err := countWhere(nonNull, cs.Not(cs.Regexp(cs.Col(rule.Column), pattern)))
	if err != nil {
		return Result{}, err
	}
	return result(rule, total, nonMatching, nonMatching == 0,
		fmt.Sprintf("%d/%d values don't match pattern %q", nonMatching, checked, pattern)), nil
}

func checkCompleteness(rule Rule, ds cs.Dataset, total int64) (Result, error) {
	threshold := boundOr(rule.Threshold, 100.0)
	nulls, err := countWhere(ds, cs.IsNull(cs.Col(rule.Column)))
	if err != nil {
		return Result{}, err
	}
	// An empty dataset is 0% complete: it fails any threshold above zero.
	completeness := 0.0
	if total > 0 {
		completeness = float64(total-nulls) / float64(total) * 100
	}
	return result(rule, total, nulls, completeness >= threshold,
		fmt.Sprintf("%.1f%% complete (threshold: %g%%)", completeness, threshold)), nil
}

func countWhere(ds cs.Dataset, pred cs.Expr) (int64, error) {
	matched, err := ds.Filter(pred)
	if err != nil {
		return 0, err
	}
	return matched.Count()
}

func boundOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func bound(v *float64) any {
	if v == nil {
		return "unbounded"
	}
	return *v
}
