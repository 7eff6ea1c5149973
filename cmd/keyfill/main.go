package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fillio/go-keyfill/pkg/keyfill"
	"github.com/fillio/go-keyfill/pkg/keyfill/xlsx"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Println("keyfill version " + version)
	case "render":
		if err := render(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "keyfill:", err)
			os.Exit(1)
		}
	case "scan":
		if err := scan(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "keyfill:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("keyfill - keyword templating for text, spreadsheets and JSON")
	fmt.Println()
	fmt.Println("Usage: keyfill <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  render <template>    Resolve keywords and print the result")
	fmt.Println("  scan <template>      List the input fields a template declares")
	fmt.Println("  version              Show version information")
}

type inputFlags map[string]string

func (f inputFlags) String() string { return "" }

func (f inputFlags) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("input must be key=value, got %q", value)
	}
	f[key] = val
	return nil
}

func render(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	xlsxPath := fs.String("xlsx", "", "workbook backing XL, SUM and AVG keywords")
	root := fs.String("root", ".", "directory for JSON and TEMPLATE file lookups")
	strict := fs.Bool("strict", false, "abort on the first unresolvable keyword")
	inputs := inputFlags{}
	fs.Var(inputs, "input", "input value as key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("render needs exactly one template file")
	}

	text, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	cfg := keyfill.GetGlobalConfig()
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "strict" {
			cfg.StrictMode = *strict
		}
	})

	opts := []keyfill.Option{
		keyfill.WithConfig(cfg),
		keyfill.WithFileLoader(keyfill.OSFileLoader{Root: *root}),
	}
	if *xlsxPath != "" {
		wb, err := xlsx.Open(*xlsxPath)
		if err != nil {
			return err
		}
		defer wb.Close()
		opts = append(opts, keyfill.WithSpreadsheet(wb))
	}

	engine := keyfill.New(opts...)

	values := keyfill.InputValues{}
	for _, field := range engine.ScanText(string(text)) {
		if v, ok := inputs[field.Label]; ok {
			values[field.Key] = v
		}
	}

	out, warnings, err := engine.Render(string(text), values)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	fmt.Print(out)
	return nil
}

func scan(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("scan needs exactly one template file")
	}
	text, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	engine := keyfill.New()
	fields := engine.ScanText(string(text))
	if len(fields) == 0 {
		fmt.Println("no input fields")
		return nil
	}
	for _, field := range fields {
		line := fmt.Sprintf("%-7s %s", field.Type, field.Label)
		if len(field.Options) > 0 {
			line += "  [" + strings.Join(field.Options, ", ") + "]"
		}
		if field.Default != "" {
			line += "  (default: " + field.Default + ")"
		}
		fmt.Println(line)
	}
	return nil
}
