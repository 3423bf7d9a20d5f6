package cdm

import "strings"

// ParseEntityRef splits a CDM entity reference string into a document path
// and an entity name:
//
//	"standard/Bank.cdm.json/Bank" -> ("standard/Bank.cdm.json", "Bank")
//	"standard/Bank.cdm.json"      -> ("standard/Bank.cdm.json", "")
//
// An empty entity name means "the document's first entity". The split is
// purely lexical: the last /-delimited segment is an entity name exactly
// when it does not end in the schema document extension.
func ParseEntityRef(ref string) (path, entity string) {
	i := strings.LastIndex(ref, "/")
	if i < 0 {
		return ref, ""
	}
	last := ref[i+1:]
	if strings.HasSuffix(last, ".json") {
		return ref, ""
	}
	return ref[:i], last
}
