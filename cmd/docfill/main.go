package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"

	"github.com/entangl/docfill/pkg/docfill"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("docfill version %s\n", version)
	case "detect":
		err = runDetect(os.Args[2:])
	case "suggest":
		err = runSuggest(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "generate":
		err = runGenerate(os.Args[2:])
	case "fill":
		err = runFill(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("docfill - populate DOCX templates from JSON data")
	fmt.Println("\nUsage: docfill <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  detect <template> [-dump]                       List addressable locations")
	fmt.Println("  suggest <template> <schema>                     Suggest a mapping from column headers")
	fmt.Println("  validate <template> <schema> <mapping>          Report mapping warnings")
	fmt.Println("  generate <template> <mapping> <data> <output> [schema]")
	fmt.Println("                                                  Generate a populated document")
	fmt.Println("  fill <template> <mapping> <output> k=v ...      Generate from flat path=value pairs")
	fmt.Println("  version                                         Show version information")
}

func runDetect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: docfill detect <template> [-dump]")
	}

	engine := docfill.New()
	tmpl, err := engine.LoadTemplate(args[0])
	if err != nil {
		return err
	}

	for _, loc := range tmpl.Locations() {
		fmt.Printf("%-18s %-12s %s\n", loc.ID, loc.Kind, loc.Label)
	}

	if len(args) > 1 && args[1] == "-dump" {
		spew.Fdump(os.Stderr, tmpl.Locations())
	}
	return nil
}

func runSuggest(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: docfill suggest <template> <schema>")
	}

	engine := docfill.New()
	tmpl, err := engine.LoadTemplate(args[0])
	if err != nil {
		return err
	}
	schema, err := engine.LoadSchemaFile(args[1])
	if err != nil {
		return err
	}

	suggested := docfill.SuggestMappings(schema.Fields, tmpl.Locations())
	out, err := json.MarshalIndent(suggested, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runValidate(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: docfill validate <template> <schema> <mapping>")
	}

	engine := docfill.New()
	tmpl, err := engine.LoadTemplate(args[0])
	if err != nil {
		return err
	}
	schema, err := engine.LoadSchemaFile(args[1])
	if err != nil {
		return err
	}
	mapping, err := docfill.LoadMappingSet(args[2])
	if err != nil {
		return err
	}

	warnings := mapping.Validate(schema.Fields, tmpl.Locations())
	if len(warnings) == 0 {
		fmt.Println("mapping is complete and current")
		return nil
	}
	for _, w := range warnings {
		fmt.Println(w.String())
	}
	return nil
}

func runGenerate(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: docfill generate <template> <mapping> <data> <output> [schema]")
	}

	engine := docfill.New()
	tmpl, err := engine.LoadTemplate(args[0])
	if err != nil {
		return err
	}
	if len(args) > 4 {
		if _, err := engine.LoadSchemaFile(args[4]); err != nil {
			return err
		}
	}
	mapping, err := docfill.LoadMappingSet(args[1])
	if err != nil {
		return err
	}
	data, err := docfill.LoadData(args[2])
	if err != nil {
		return err
	}

	result, err := engine.GenerateToFile(tmpl, mapping, data, args[3])
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d fields updated\n", args[3], result.Updated)
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w.String())
	}
	return nil
}

func runFill(args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: docfill fill <template> <mapping> <output> <path=value>...")
	}

	flat := make(map[string]string)
	for _, pair := range args[3:] {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("expected path=value, got %q", pair)
		}
		flat[key] = value
	}

	engine := docfill.New()
	tmpl, err := engine.LoadTemplate(args[0])
	if err != nil {
		return err
	}
	mapping, err := docfill.LoadMappingSet(args[1])
	if err != nil {
		return err
	}

	result, err := engine.GenerateToFile(tmpl, mapping, docfill.BuildNestedData(flat), args[2])
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d fields updated\n", args[2], result.Updated)
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w.String())
	}
	return nil
}
