package transform

import (
	cs "github.com/cdmsilver/cdmsilver"
)

// Timestamp layouts tried, in order, by the parse_timestamp transform.
// Bronze feeds are inconsistent; the first successful parse wins.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"01/02/2006 15:04",
	"02-01-2006 15:04:05",
	"2006/01/02",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
}

// Date layouts tried, in order, by the parse_date transform.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
}

func lowerTrim(col string) cs.Expr { return cs.Lower(cs.Trim(cs.Col(col))) }

func parseFlexibleTimestamp(col string) cs.Expr {
	return cs.ParseTimestamp(cs.Col(col), timestampLayouts...)
}

func parseFlexibleDate(col string) cs.Expr {
	return cs.ParseDate(cs.Col(col), dateLayouts...)
}

// resolveStatecode maps assorted status spellings onto the CDM statecode
// option set (Active=0, Inactive=1).
func resolveStatecode(col string) cs.Expr {
	lc := lowerTrim(col)
	return cs.Cast(
		cs.When(cs.In(lc, "active", "open", "1", "yes", "true"), cs.Lit(0)).
			When(cs.In(lc, "inactive", "closed", "0", "no", "false", "dormant", "matured"), cs.Lit(1)).
			Otherwise(cs.Lit(0)),
		cs.Integer)
}

func normalizeBoolean(col string) cs.Expr {
	lc := lowerTrim(col)
	return cs.When(cs.In(lc, "yes", "true", "1", "y", "active"), cs.Lit(true)).
		When(cs.In(lc, "no", "false", "0", "n", "inactive", "closed"), cs.Lit(false)).
		Otherwise(cs.Cast(cs.Lit(nil), cs.Boolean))
}

// normalizeCountry normalizes country spellings to ISO 3166-1 alpha-2,
// upper-casing anything it does not recognize.
func normalizeCountry(col string) cs.Expr {
	lc := lowerTrim(col)
	return cs.When(cs.In(lc, "be", "bel", "belgium"), cs.Lit("BE")).
		When(cs.In(lc, "nl", "nld", "netherlands"), cs.Lit("NL")).
		When(cs.In(lc, "fr", "fra", "france"), cs.Lit("FR")).
		When(cs.In(lc, "de", "deu", "germany"), cs.Lit("DE")).
		When(cs.In(lc, "gb", "gbr", "uk", "united kingdom"), cs.Lit("GB")).
		When(cs.In(lc, "us", "usa", "united states"), cs.Lit("US")).
		Otherwise(cs.Upper(cs.Trim(cs.Col(col))))
}

func resolveAccountType(col string) cs.Expr {
	lc := lowerTrim(col)
	return cs.When(cs.Eq(lc, cs.Lit("checking")), cs.Lit("Checking")).
		When(cs.Eq(lc, cs.Lit("savings")), cs.Lit("Savings")).
		When(cs.Eq(lc, cs.Lit("business")), cs.Lit("Business")).
		When(cs.Eq(lc, cs.Lit("joint")), cs.Lit("Joint")).
		When(cs.Eq(lc, cs.Lit("student")), cs.Lit("Student")).
		Otherwise(cs.InitCap(cs.Trim(cs.Col(col))))
}

// resolveHoldingType maps holding type strings to option set codes,
// defaulting unmapped inputs to Deposit Account.
func resolveHoldingType(col string) cs.Expr {
	lc := lowerTrim(col)
	return cs.Cast(
		cs.When(cs.In(lc, "deposit", "deposit account"), cs.Lit(104800000)).
			When(cs.In(lc, "savings", "savings account"), cs.Lit(104800001)).
			When(cs.In(lc, "current", "current account"), cs.Lit(104800002)).
			When(cs.Eq(lc, cs.Lit("loan")), cs.Lit(104800003)).
			When(cs.In(lc, "credit_line", "line of credit"), cs.Lit(104800004)).
			When(cs.Eq(lc, cs.Lit("investment")), cs.Lit(104800005)).
			When(cs.In(lc, "term_deposit", "term deposit"), cs.Lit(104800006)).
			Otherwise(cs.Lit(104800000)),
		cs.Integer)
}

func resolveKYCCheckType(col string) cs.Expr {
	lc := lowerTrim(col)
	return cs.Cast(
		cs.When(cs.In(lc, "id_verification", "id verification", "id"), cs.Lit(0)).
			When(cs.In(lc, "address_proof", "address proof", "address"), cs.Lit(1)).
			When(cs.In(lc, "income_verification", "income verification", "income"), cs.Lit(2)).
			When(cs.In(lc, "pep_check", "pep check", "pep"), cs.Lit(3)).
			When(cs.In(lc, "sanctions_screening", "sanctions screening", "sanctions"), cs.Lit(4)).
			Otherwise(cs.Lit(0)),
		cs.Integer)
}

func resolveKYCCheckResult(col string) cs.Expr {
	lc := lowerTrim(col)
	return cs.Cast(
		cs.When(cs.In(lc, "pass", "passed", "approved"), cs.Lit(0)).
			When(cs.In(lc, "fail", "failed", "rejected"), cs.Lit(1)).
			When(cs.In(lc, "pending", "in_progress", "in progress"), cs.Lit(2)).
			When(cs.In(lc, "expired", "lapsed"), cs.Lit(3)).
			Otherwise(cs.Lit(2)), // unmapped results stay Pending
		cs.Integer)
}

// deriveFullName prefers a populated full-name source and otherwise
// synthesizes one from the fallback first/last sources, title-cased and
// space-joined.
func deriveFullName(source string, fallbacks []string) cs.Expr {
	joined := make([]cs.Expr, len(fallbacks))
	for i, f := range fallbacks {
		joined[i] = cs.InitCap(cs.Trim(cs.Col(f)))
	}
	return cs.Coalesce(
		cs.InitCap(cs.Trim(cs.Col(source))),
		cs.ConcatWS(" ", joined...),
	)
}

func statecodeToDisplay(col string) cs.Expr {
	return cs.When(cs.Eq(cs.Col(col), cs.Lit(0)), cs.Lit("Active")).
		When(cs.Eq(cs.Col(col), cs.Lit(1)), cs.Lit("Inactive")).
		Otherwise(cs.Lit("Unknown"))
}

func statecodeToStatuscode(col string) cs.Expr {
	return cs.Cast(
		cs.When(cs.Eq(cs.Col(col), cs.Lit(0)), cs.Lit(1)).
			When(cs.Eq(cs.Col(col), cs.Lit(1)), cs.Lit(2)).
			Otherwise(cs.Lit(1)),
		cs.Integer)
}

func statuscodeToDisplay(col string) cs.Expr {
	return cs.When(cs.Eq(cs.Col(col), cs.Lit(1)), cs.Lit("Active")).
		When(cs.Eq(cs.Col(col), cs.Lit(2)), cs.Lit("Inactive")).
		Otherwise(cs.Lit("Unknown"))
}

func holdingTypeToDisplay(col string) cs.Expr {
	return cs.When(cs.Eq(cs.Col(col), cs.Lit(104800000)), cs.Lit("Deposit Account")).
		When(cs.Eq(cs.Col(col), cs.Lit(104800001)), cs.Lit("Savings Account")).
		When(cs.Eq(cs.Col(col), cs.Lit(104800002)), cs.Lit("Current Account")).
		When(cs.Eq(cs.Col(col), cs.Lit(104800003)), cs.Lit("Loan")).
		When(cs.Eq(cs.Col(col), cs.Lit(104800004)), cs.Lit("Line of Credit")).
		When(cs.Eq(cs.Col(col), cs.Lit(104800005)), cs.Lit("Investment")).
		When(cs.Eq(cs.Col(col), cs.Lit(104800006)), cs.Lit("Term Deposit")).
		Otherwise(cs.Lit("Unknown"))
}

func kycCheckTypeToDisplay(col string) cs.Expr {
	return cs.When(cs.Eq(cs.Col(col), cs.Lit(0)), cs.Lit("ID Verification")).
		When(cs.Eq(cs.Col(col), cs.Lit(1)), cs.Lit("Address Proof")).
		When(cs.Eq(cs.Col(col), cs.Lit(2)), cs.Lit("Income Verification")).
		When(cs.Eq(cs.Col(col), cs.Lit(3)), cs.Lit("PEP Check")).
		When(cs.Eq(cs.Col(col), cs.Lit(4)), cs.Lit("Sanctions Screening")).
		Otherwise(cs.Lit("Unknown"))
}

func kycCheckResultToDisplay(col string) cs.Expr {
	return cs.When(cs.Eq(cs.Col(col), cs.Lit(0)), cs.Lit("Pass")).
		When(cs.Eq(cs.Col(col), cs.Lit(1)), cs.Lit("Fail")).
		When(cs.Eq(cs.Col(col), cs.Lit(2)), cs.Lit("Pending")).
		When(cs.Eq(cs.Col(col), cs.Lit(3)), cs.Lit("Expired")).
		Otherwise(cs.Lit("Unknown"))
}

// DefaultRegistry returns a registry preloaded with the built-in column
// transforms referenced by mapping configs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("trim", func(col string) cs.Expr { return cs.Trim(cs.Col(col)) })
	r.Register("initcap_trim", func(col string) cs.Expr { return cs.InitCap(cs.Trim(cs.Col(col))) })
	r.Register("upper_trim", func(col string) cs.Expr { return cs.Upper(cs.Trim(cs.Col(col))) })
	r.Register("lower_trim", lowerTrim)
	r.Register("parse_timestamp", parseFlexibleTimestamp)
	r.Register("parse_date", parseFlexibleDate)
	r.Register("resolve_statecode", resolveStatecode)
	r.Register("normalize_country", normalizeCountry)
	r.Register("normalize_boolean", normalizeBoolean)
	r.Register("normalize_currency", func(col string) cs.Expr { return cs.Upper(cs.Trim(cs.Col(col))) })
	r.Register("resolve_account_type", resolveAccountType)
	r.Register("resolve_holding_type", resolveHoldingType)
	r.Register("resolve_kyc_check_type", resolveKYCCheckType)
	r.Register("resolve_kyc_check_result", resolveKYCCheckResult)
	r.Register("cast_integer", func(col string) cs.Expr { return cs.Cast(cs.Col(col), cs.Integer) })
	r.Register("cast_decimal", func(col string) cs.Expr { return cs.Cast(cs.Col(col), cs.Decimal(18, 2)) })
	r.Register("cast_decimal_rate", func(col string) cs.Expr { return cs.Cast(cs.Col(col), cs.Decimal(10, 4)) })
	return r
}

// DefaultDerivedRegistry returns a registry preloaded with the built-in
// derived-field transforms (code -> display-text lookups and the like).
func DefaultDerivedRegistry() *Registry {
	r := NewRegistry()
	r.Register("statecode_to_display", statecodeToDisplay)
	r.Register("statecode_to_statuscode", statecodeToStatuscode)
	r.Register("statuscode_to_display", statuscodeToDisplay)
	r.Register("holding_type_to_display", holdingTypeToDisplay)
	r.Register("kyc_check_type_to_display", kycCheckTypeToDisplay)
	r.Register("kyc_check_result_to_display", kycCheckResultToDisplay)
	return r
}

// DefaultCompositeRegistry returns a registry preloaded with the built-in
// composite transforms.
func DefaultCompositeRegistry() *CompositeRegistry {
	r := NewCompositeRegistry()
	r.Register("derive_fullname", deriveFullName)
	return r
}
