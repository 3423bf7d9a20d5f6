package cdm_test

import (
	"errors"
	"testing"

	cdmsilver "github.com/cdmsilver/cdmsilver"
	"github.com/cdmsilver/cdmsilver/cdm"
)

func newResolver(t *testing.T) *cdm.Resolver {
	t.Helper()
	return cdm.NewResolver(cdm.NewStore("testdata"))
}

func TestResolveEntityFlat(t *testing.T) {
	r := newResolver(t)
	res, err := r.ResolveEntity("standard/Bank.cdm.json", "Bank")
	if err != nil {
		t.Fatalf("ResolveEntity: %v", err)
	}
	if res.EntityName != "Bank" {
		t.Errorf("EntityName = %q, want Bank", res.EntityName)
	}
	if res.IsExtension {
		t.Errorf("IsExtension = true for a base entity")
	}
	want := []string{"bankId", "name", "bicCode", "totalAssets", "foundedDate", "statecode"}
	if len(res.Attributes) != len(want) {
		t.Fatalf("got %d attributes, want %d", len(res.Attributes), len(want))
	}
	for i, name := range want {
		if res.Attributes[i].Name != name {
			t.Errorf("attribute[%d] = %q, want %q", i, res.Attributes[i].Name, name)
		}
	}
	if values, ok := res.OptionSets["statecode"]; !ok || len(values) != 2 {
		t.Errorf("OptionSets[statecode] = %v, want 2 values", values)
	}
}

func TestResolveEntityInheritance(t *testing.T) {
	r := newResolver(t)
	res, err := r.ResolveEntity("extensions/BankExtended.cdm.json", "BankExtended")
	if err != nil {
		t.Fatalf("ResolveEntity: %v", err)
	}
	if !res.IsExtension {
		t.Errorf("IsExtension = false, want true")
	}
	if res.ExtendsEntity != "standard/Bank.cdm.json/Bank" {
		t.Errorf("ExtendsEntity = %q", res.ExtendsEntity)
	}

	// Parent attributes first, then the child's new ones.
	want := []string{
		"bankId", "name", "bicCode", "totalAssets", "foundedDate", "statecode",
		"leiCode", "riskRating", "isSystemic",
	}
	if len(res.Attributes) != len(want) {
		t.Fatalf("got %d attributes, want %d", len(res.Attributes), len(want))
	}
	for i, name := range want {
		if res.Attributes[i].Name != name {
			t.Errorf("attribute[%d] = %q, want %q", i, res.Attributes[i].Name, name)
		}
	}

	// The child also declares "name"; the parent's definition wins.
	for _, attr := range res.Attributes {
		if attr.Name == "name" {
			if attr.DataType != "name" {
				t.Errorf("shadowed attribute kept child dataType %q", attr.DataType)
			}
			if attr.Nullable() {
				t.Errorf("shadowed attribute lost parent nullability")
			}
		}
	}

	// Option sets merge: parent's statecode plus the child's riskRating.
	if _, ok := res.OptionSets["statecode"]; !ok {
		t.Errorf("missing inherited statecode option set")
	}
	if values := res.OptionSets["riskRating"]; len(values) != 3 {
		t.Errorf("OptionSets[riskRating] = %v, want 3 values", values)
	}
}

func TestResolveEntityCached(t *testing.T) {
	r := newResolver(t)
	first, err := r.ResolveEntity("standard/Bank.cdm.json", "Bank")
	if err != nil {
		t.Fatalf("ResolveEntity: %v", err)
	}
	second, err := r.ResolveEntity("standard/Bank.cdm.json", "Bank")
	if err != nil {
		t.Fatalf("ResolveEntity (cached): %v", err)
	}
	if first != second {
		t.Errorf("repeated resolution returned a new value, cache not used")
	}
}

func TestResolveEntityCycle(t *testing.T) {
	r := newResolver(t)
	_, err := r.ResolveEntity("cycles/A.cdm.json", "A")
	var cycle *cdmsilver.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v, want CycleError", err)
	}
	if len(cycle.Chain) < 3 {
		t.Errorf("Chain = %v, want the full resolution chain", cycle.Chain)
	}
}

func TestResolveEntityNotFound(t *testing.T) {
	r := newResolver(t)
	_, err := r.ResolveEntity("standard/Bank.cdm.json", "NoSuchEntity")
	var nf *cdmsilver.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if len(nf.Available) != 1 || nf.Available[0] != "Bank" {
		t.Errorf("Available = %v, want [Bank]", nf.Available)
	}
}
