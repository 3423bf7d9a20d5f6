// Command cdmsilver runs the bronze-to-silver pipeline pieces over local
// files: resolving CDM schemas, transforming bronze CSV extracts, and
// validating silver data against quality rules.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	cs "github.com/cdmsilver/cdmsilver"
	"github.com/cdmsilver/cdmsilver/catalog/sqlite"
	"github.com/cdmsilver/cdmsilver/cdm"
	"github.com/cdmsilver/cdmsilver/memds"
	"github.com/cdmsilver/cdmsilver/quality"
	"github.com/cdmsilver/cdmsilver/transform"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "schema":
		schemaCmd(os.Args[2:])
	case "transform":
		transformCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `cdmsilver CLI

Usage:
  cdmsilver schema -root DIR [-manifest FILE] [-entity REF] [-json]
  cdmsilver transform -root DIR -config FILE -entity NAME -in bronze.csv -out silver.csv [-db FILE] [-table NAME]
  cdmsilver validate -config FILE -entity NAME -in silver.csv [-ref NAME=FILE ...] [-json]`)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "cdmsilver: "+format+"\n", a...)
	os.Exit(1)
}

func newCompiler(root string) *cdm.Compiler {
	return cdm.NewCompiler(cdm.NewResolver(cdm.NewStore(root)))
}

func schemaCmd(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	var root, manifest, entity string
	var asJSON bool
	fs.StringVar(&root, "root", "", "CDM schema root directory")
	fs.StringVar(&manifest, "manifest", "manifest.cdm.json", "manifest file relative to root")
	fs.StringVar(&entity, "entity", "", "entity reference (default: every manifest entity)")
	fs.BoolVar(&asJSON, "json", false, "emit compiled schemas as JSON")
	_ = fs.Parse(args)
	if root == "" {
		fs.Usage()
		os.Exit(2)
	}

	compiler := newCompiler(root)
	if entity != "" {
		path, name := cdm.ParseEntityRef(entity)
		if asJSON {
			schema, err := compiler.Compile(path, name)
			if err != nil {
				fatalf("%v", err)
			}
			printJSON(map[string]any{"entity": entity, "schema": schemaDoc(schema)})
			return
		}
		summary, err := compiler.EntitySummary(path, name)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Print(summary)
		return
	}

	m, err := compiler.CompileManifest(manifest)
	if err != nil {
		fatalf("%v", err)
	}
	if asJSON {
		doc := make(map[string]any, len(m))
		for name, schema := range m {
			doc[name] = schemaDoc(schema)
		}
		printJSON(doc)
		return
	}
	store := cdm.NewStore(root)
	mf, err := store.LoadManifest(manifest)
	if err != nil {
		fatalf("%v", err)
	}
	for _, entry := range mf.Entities {
		path, name := cdm.ParseEntityRef(entry.EntityPath)
		summary, err := compiler.EntitySummary(path, name)
		if err != nil {
			fatalf("%s: %v", entry.EntityName, err)
		}
		fmt.Print(summary)
	}
}

func transformCmd(args []string) {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	var root, config, entity, in, out, db, table string
	fs.StringVar(&root, "root", "", "CDM schema root directory")
	fs.StringVar(&config, "config", "", "entity mapping YAML file")
	fs.StringVar(&entity, "entity", "", "logical entity name")
	fs.StringVar(&in, "in", "", "bronze CSV input")
	fs.StringVar(&out, "out", "", "silver CSV output")
	fs.StringVar(&db, "db", "", "optional SQLite catalog database")
	fs.StringVar(&table, "table", "", "optional managed table name (with -db)")
	_ = fs.Parse(args)
	if root == "" || config == "" || entity == "" || in == "" || out == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := transform.LoadConfig(config)
	if err != nil {
		fatalf("%v", err)
	}
	var opts []transform.Option
	var store *sqlite.Store
	if db != "" {
		store, err = sqlite.Open(db)
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()
		opts = append(opts, transform.WithTableStore(store))
	}
	engine := transform.NewEngine(cfg, opts...)

	entityCfg, err := engine.EntityConfig(entity)
	if err != nil {
		fatalf("%v", err)
	}
	compiler := newCompiler(root)
	path, name := cdm.ParseEntityRef(entityCfg.CDMSchema)
	target, err := compiler.Compile(path, name)
	if err != nil {
		fatalf("%v", err)
	}

	f, err := os.Open(in)
	if err != nil {
		fatalf("%v", err)
	}
	bronze, err := memds.ReadCSV(f)
	f.Close()
	if err != nil {
		fatalf("%v", err)
	}

	silver, diag, err := engine.Transform(entity, bronze, target)
	if err != nil {
		fatalf("%v", err)
	}
	printWarnings(diag)

	outFile, err := os.Create(out)
	if err != nil {
		fatalf("%v", err)
	}
	if err := memds.WriteCSV(outFile, silver); err != nil {
		outFile.Close()
		fatalf("%v", err)
	}
	if err := outFile.Close(); err != nil {
		fatalf("%v", err)
	}
	count, _ := silver.Count()
	fmt.Printf("-> written %d records to %s\n", count, out)

	if store != nil {
		req := transform.WriteRequest{Location: out, ManagedName: table}
		if table != "" {
			desc, err := compiler.EntityDescription(path, name)
			if err == nil {
				req.EntityDescription = desc
			}
			cols, err := compiler.ColumnDescriptions(path, name)
			if err == nil {
				req.ColumnDescriptions = cols
			}
		}
		diag, err := engine.WriteSilver(context.Background(), silver, req)
		printWarnings(diag)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("-> written %d records to catalog %s\n", count, db)
	}
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var config, entity, in string
	var asJSON bool
	refs := multiFlag{}
	fs.StringVar(&config, "config", "", "quality rule YAML file")
	fs.StringVar(&entity, "entity", "", "logical entity name")
	fs.StringVar(&in, "in", "", "silver CSV input")
	fs.Var(&refs, "ref", "reference dataset as NAME=FILE (repeatable)")
	fs.BoolVar(&asJSON, "json", false, "emit the report as JSON")
	_ = fs.Parse(args)
	if config == "" || entity == "" || in == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := quality.LoadConfig(config)
	if err != nil {
		fatalf("%v", err)
	}
	ds, err := readCSVFile(in)
	if err != nil {
		fatalf("%v", err)
	}
	refDS := make(map[string]cs.Dataset, len(refs))
	for name, file := range refs {
		refDS[name], err = readCSVFile(file)
		if err != nil {
			fatalf("ref %s: %v", name, err)
		}
	}

	engine := quality.NewEngine(cfg)
	results, err := engine.Validate(entity, ds, refDS)
	if err != nil {
		fatalf("%v", err)
	}
	report := quality.NewReport()
	report.Add(entity, results)

	if asJSON {
		printJSON(report)
		return
	}
	fmt.Print(report.Render())
	if s := report.Summary(); s.Errors > 0 {
		os.Exit(1)
	}
}

func readCSVFile(path string) (cs.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return memds.ReadCSV(f)
}

func printWarnings(diag *cs.Diag) {
	if diag == nil {
		return
	}
	for _, issue := range diag.Issues() {
		fmt.Fprintf(os.Stderr, "  WARNING: %s\n", issue)
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("encode json: %v", err)
	}
	fmt.Println(string(data))
}

func schemaDoc(schema cs.Schema) []map[string]any {
	out := make([]map[string]any, len(schema))
	for i, f := range schema {
		out[i] = map[string]any{
			"name":     f.Name,
			"type":     f.Type.String(),
			"nullable": f.Nullable,
		}
	}
	return out
}

// multiFlag collects repeated NAME=VALUE flags.
type multiFlag map[string]string

func (m multiFlag) String() string {
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (m multiFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" || value == "" {
		return fmt.Errorf("expected NAME=FILE, got %q", s)
	}
	m[name] = value
	return nil
}
