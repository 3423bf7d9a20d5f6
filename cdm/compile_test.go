package cdm_test

import (
	"strings"
	"testing"

	cdmsilver "github.com/cdmsilver/cdmsilver"
	"github.com/cdmsilver/cdmsilver/cdm"
)

func newCompiler(t *testing.T) *cdm.Compiler {
	t.Helper()
	return cdm.NewCompiler(newResolver(t))
}

func TestCompileBaseEntity(t *testing.T) {
	c := newCompiler(t)
	schema, err := c.Compile("standard/Bank.cdm.json", "Bank")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	tests := []struct {
		name     string
		typ      cdmsilver.Type
		nullable bool
	}{
		{"bankId", cdmsilver.String, false},
		{"name", cdmsilver.String, false},
		{"bicCode", cdmsilver.String, true},
		{"totalAssets", cdmsilver.Decimal(20, 4), true},
		{"foundedDate", cdmsilver.Date, true},
		{"statecode", cdmsilver.Integer, false},
	}
	if len(schema) != len(tests) {
		t.Fatalf("got %d fields, want %d", len(schema), len(tests))
	}
	for i, tt := range tests {
		f := schema[i]
		if f.Name != tt.name {
			t.Errorf("field[%d].Name = %q, want %q", i, f.Name, tt.name)
		}
		if f.Type != tt.typ {
			t.Errorf("field %s: type = %v, want %v", tt.name, f.Type, tt.typ)
		}
		if f.Nullable != tt.nullable {
			t.Errorf("field %s: nullable = %v, want %v", tt.name, f.Nullable, tt.nullable)
		}
	}
}

func TestCompileInheritedEntity(t *testing.T) {
	c := newCompiler(t)
	schema, err := c.CompileRef("extensions/BankExtended.cdm.json/BankExtended")
	if err != nil {
		t.Fatalf("CompileRef: %v", err)
	}
	if len(schema) != 9 {
		t.Fatalf("got %d fields, want 9", len(schema))
	}
	// The shadowed "name" keeps the parent's type, and appears once.
	seen := 0
	for _, f := range schema {
		if f.Name == "name" {
			seen++
			if f.Nullable {
				t.Errorf("name: nullable = true, want parent's false")
			}
		}
	}
	if seen != 1 {
		t.Errorf("name appears %d times, want 1", seen)
	}
	if f := schema[8]; f.Name != "isSystemic" || f.Type != cdmsilver.Boolean {
		t.Errorf("last field = %+v, want isSystemic boolean", f)
	}
}

func TestCompileTypeMapping(t *testing.T) {
	c := newCompiler(t)
	schema, err := c.Compile("extensions/KYCCheck.cdm.json", "KYCCheck")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	byName := make(map[string]cdmsilver.Field)
	for _, f := range schema {
		byName[f.Name] = f
	}
	if byName["kycCheckId"].Type != cdmsilver.String {
		t.Errorf("kycCheckId type = %v, want string", byName["kycCheckId"].Type)
	}
	if byName["checkedOn"].Type != cdmsilver.Timestamp {
		t.Errorf("checkedOn type = %v, want timestamp", byName["checkedOn"].Type)
	}
	if byName["score"].Type != cdmsilver.Double {
		t.Errorf("score type = %v, want double", byName["score"].Type)
	}
	// Unknown CDM data types degrade to string instead of failing.
	if byName["rawPayload"].Type != cdmsilver.String {
		t.Errorf("rawPayload type = %v, want string", byName["rawPayload"].Type)
	}
}

func TestCompileManifest(t *testing.T) {
	c := newCompiler(t)
	schemas, err := c.CompileManifest("manifest.cdm.json")
	if err != nil {
		t.Fatalf("CompileManifest: %v", err)
	}
	if len(schemas) != 2 {
		t.Fatalf("got %d schemas, want 2", len(schemas))
	}
	if len(schemas["bank"]) != 9 {
		t.Errorf("bank schema has %d fields, want 9", len(schemas["bank"]))
	}
	if len(schemas["kyc_check"]) != 6 {
		t.Errorf("kyc_check schema has %d fields, want 6", len(schemas["kyc_check"]))
	}
}

func TestDescriptions(t *testing.T) {
	c := newCompiler(t)
	desc, err := c.EntityDescription("standard/Bank.cdm.json", "Bank")
	if err != nil {
		t.Fatalf("EntityDescription: %v", err)
	}
	if !strings.Contains(desc, "financial institution") {
		t.Errorf("EntityDescription = %q", desc)
	}

	cols, err := c.ColumnDescriptions("extensions/BankExtended.cdm.json", "BankExtended")
	if err != nil {
		t.Fatalf("ColumnDescriptions: %v", err)
	}
	if cols["leiCode"] != "Legal Entity Identifier." {
		t.Errorf("cols[leiCode] = %q", cols["leiCode"])
	}
	// The shadowed attribute carries the parent's description.
	if cols["name"] != "Legal name of the bank." {
		t.Errorf("cols[name] = %q", cols["name"])
	}
	if _, ok := cols["isSystemic"]; ok {
		t.Errorf("isSystemic has no description, must be absent")
	}
}

func TestDescribeManifest(t *testing.T) {
	c := newCompiler(t)
	out, err := c.DescribeManifest("manifest.cdm.json")
	if err != nil {
		t.Fatalf("DescribeManifest: %v", err)
	}
	if out["kyc_check"].Entity != "A know-your-customer verification check." {
		t.Errorf("kyc_check entity description = %q", out["kyc_check"].Entity)
	}
}

func TestEntitySummary(t *testing.T) {
	c := newCompiler(t)
	summary, err := c.EntitySummary("extensions/BankExtended.cdm.json", "BankExtended")
	if err != nil {
		t.Fatalf("EntitySummary: %v", err)
	}
	for _, want := range []string{
		"Entity: BankExtended [EXTENSION]",
		"Extends: standard/Bank.cdm.json/Bank",
		"Fields: 9",
		"[REQUIRED]",
		"Option Sets:",
		"104800002 = High",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
