package quality_test

import (
	"strings"
	"testing"

	"github.com/cdmsilver/cdmsilver/quality"
)

func sampleResults() []quality.Result {
	return []quality.Result{
		{RuleName: "id_not_null", RuleType: quality.RuleNotNull, Severity: quality.SeverityError, Passed: true, Details: "0/10 null values"},
		{RuleName: "email_completeness", RuleType: quality.RuleCompleteness, Severity: quality.SeverityWarning, Passed: false, Details: "70.0% complete (threshold: 80%)"},
		{RuleName: "bank_fk", RuleType: quality.RuleReferential, Severity: quality.SeverityError, Passed: false, Details: "2 orphaned references to bank.id"},
		{RuleName: "name_length", RuleType: quality.RuleLength, Severity: quality.SeverityWarning, Passed: true, Details: "0 values with length outside [1, 100]"},
	}
}

func TestSummarize(t *testing.T) {
	s := quality.Summarize(sampleResults())
	if s.TotalRules != 4 || s.Passed != 2 || s.Errors != 1 || s.Warnings != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.Score != 50 {
		t.Errorf("score = %v, want 50", s.Score)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := quality.Summarize(nil)
	if s.Score != 0 {
		t.Errorf("score of an empty result set = %v, want 0", s.Score)
	}
}

func TestStatusIcon(t *testing.T) {
	tests := []struct {
		r    quality.Result
		want string
	}{
		{quality.Result{Passed: true}, "✓"},
		{quality.Result{Severity: quality.SeverityError}, "✗"},
		{quality.Result{Severity: quality.SeverityWarning}, "⚠"},
	}
	for _, tt := range tests {
		if got := tt.r.StatusIcon(); got != tt.want {
			t.Errorf("StatusIcon(%+v) = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestReportRender(t *testing.T) {
	report := quality.NewReport()
	if report.RunID == "" {
		t.Fatalf("report has no run id")
	}
	report.Add("account", sampleResults())
	report.Add("bank", []quality.Result{
		{RuleName: "id_unique", RuleType: quality.RuleUnique, Severity: quality.SeverityError, Passed: true, Details: "0 duplicate values out of 5"},
	})

	out := report.Render()
	for _, want := range []string{
		"DATA QUALITY REPORT",
		report.RunID,
		"Quality Report: ACCOUNT",
		"Quality Report: BANK",
		"SUMMARY: 5 rules | 3 passed | 1 errors | 1 warnings",
		"Overall Quality Score: 60.0%",
		"✗",
		"⚠",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
