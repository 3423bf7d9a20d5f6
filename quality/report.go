package quality

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Report collects validation results across entities for one run. Entity
// order is the order results were added in.
type Report struct {
	RunID     string
	Generated time.Time
	Entities  []EntityResults
}

// EntityResults pairs a logical entity with its rule results.
type EntityResults struct {
	Entity  string
	Results []Result
}

// NewReport starts an empty report with a fresh ULID run identifier.
func NewReport() *Report {
	return &Report{
		RunID:     ulid.Make().String(),
		Generated: time.Now().UTC(),
	}
}

// Add appends an entity's results to the report.
func (r *Report) Add(entity string, results []Result) {
	r.Entities = append(r.Entities, EntityResults{Entity: entity, Results: results})
}

// Summary aggregates pass/error/warning counts. Score is passed rules over
// total rules as a percentage, zero when no rules ran.
type Summary struct {
	TotalRules int
	Passed     int
	Errors     int
	Warnings   int
	Score      float64
}

// Summarize aggregates one result list.
func Summarize(results []Result) Summary {
	s := Summary{TotalRules: len(results)}
	for _, res := range results {
		switch {
		case res.Passed:
			s.Passed++
		case res.Severity == SeverityError:
			s.Errors++
		default:
			s.Warnings++
		}
	}
	if s.TotalRules > 0 {
		s.Score = float64(s.Passed) / float64(s.TotalRules) * 100
	}
	return s
}

// Summary aggregates the whole report.
func (r *Report) Summary() Summary {
	var all []Result
	for _, er := range r.Entities {
		all = append(all, er.Results...)
	}
	return Summarize(all)
}

// Render produces the human-readable cross-entity quality report.
func (r *Report) Render() string {
	b := &strings.Builder{}
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(b, "%s\nDATA QUALITY REPORT — Silver Layer (run %s)\n%s\n", rule, r.RunID, rule)
	for _, er := range r.Entities {
		b.WriteString(RenderEntity(er.Entity, er.Results))
	}
	s := r.Summary()
	fmt.Fprintf(b, "\n%s\nSUMMARY: %d rules | %d passed | %d errors | %d warnings\n",
		rule, s.TotalRules, s.Passed, s.Errors, s.Warnings)
	fmt.Fprintf(b, "Overall Quality Score: %.1f%%\n%s\n", s.Score, rule)
	return b.String()
}

// RenderEntity produces one entity's section of the report.
func RenderEntity(entity string, results []Result) string {
	b := &strings.Builder{}
	s := Summarize(results)
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(b, "\n  %s\n  Quality Report: %s\n  %s\n", rule, strings.ToUpper(entity), rule)
	fmt.Fprintf(b, "  Total rules: %d  |  Passed: %d  |  Errors: %d  |  Warnings: %d\n",
		s.TotalRules, s.Passed, s.Errors, s.Warnings)
	for _, res := range results {
		fmt.Fprintf(b, "    %s [%-7s] %-35s %s\n", res.StatusIcon(), res.Severity, res.RuleName, res.Details)
	}
	return b.String()
}
