package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/mcncl/jsonshaper/internal/config"
	"github.com/mcncl/jsonshaper/internal/errors"
	"github.com/mcncl/jsonshaper/internal/flatten"
	"github.com/mcncl/jsonshaper/internal/formatter"
	"github.com/mcncl/jsonshaper/internal/logging"
	"github.com/mcncl/jsonshaper/internal/models"
	"github.com/mcncl/jsonshaper/internal/parser"
	"github.com/mcncl/jsonshaper/internal/restructure"
	"github.com/mcncl/jsonshaper/internal/schema"
)

// CLI defines the command-line interface
var CLI struct {
	Input        string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Schema       string `help:"Path to a schema tree (JSON or YAML). Without one, the flat records are printed." short:"s" type:"path"`
	Output       string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Config       string `help:"Path to config file. Defaults to the nearest .jsonshaper.yml." short:"c" type:"path"`
	Flat         bool   `help:"Print the flat records and skip restructuring."`
	EmitSchema   bool   `help:"Print a schema tree generated from the input instead of restructuring it." name:"emit-schema"`
	SchemaFormat string `help:"Encoding used by --emit-schema." name:"schema-format" enum:"json,yaml" default:"json"`
	Indent       int    `help:"Indentation width of the output, 0 for compact JSON. Overrides the config file." default:"-1"`
	Parallel     int    `help:"Evaluate group partitions with up to N goroutines." default:"0"`
	Debug        bool   `help:"Enable debug logging." short:"d"`
	Version      bool   `help:"Show version information." short:"v"`
	Interactive  bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *log.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsonshaper"),
		kong.Description("Flatten JSON documents and rebuild them along a schema tree"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("jsonshaper version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	ctx := &Context{
		Debug:  cfg.Dev.Debug,
		Config: cfg,
		Logger: logging.New(os.Stderr, logging.Level(cfg.Dev.Debug)),
	}
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonshaper --help\n")
		os.Exit(1)
	}
}

// loadConfig merges the config file, if any, with the command-line flags.
func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	overrides := config.CLIOverrides{
		Output:  CLI.Output,
		Workers: CLI.Parallel,
		Debug:   CLI.Debug,
	}
	if CLI.Indent >= 0 {
		indent := CLI.Indent
		overrides.Indent = &indent
	}

	cfg, err := config.LoadConfigWithCLI(path, overrides)
	if err != nil {
		return nil, errors.NewInputError("failed to load configuration", err)
	}
	return cfg, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	logger := ctx.Logger
	if logger == nil {
		logger = logging.New(os.Stderr, logging.Level(ctx.Debug))
	}

	// 1. Parse JSON input
	progress := logging.NewProgress(logger)
	ir, err := parseInput(parser.NewParser(cfg.Parser.MaxDepth))
	if err != nil {
		return err
	}
	progress.Done("parsed input", "root_is_array", ir.RootIsArray)

	// 2. Either describe the document as a schema tree...
	if CLI.EmitSchema {
		layer := schema.AutoPopulate(ir.Root, schema.AutoOptions{
			KeyCase:     cfg.Schema.KeyCase,
			KeyMappings: cfg.Schema.KeyMappings,
		})
		logger.Debug("generated schema", "nodes", schema.Count(layer), "depth", schema.Depth(layer))

		format := schema.FormatJSON
		if CLI.SchemaFormat == "yaml" {
			format = schema.FormatYAML
		}
		return writeOutput(cfg.Output.File, func(w io.Writer) error {
			return schema.Encode(w, layer, format)
		})
	}

	// 3. ...or flatten it
	progress = logging.NewProgress(logger)
	records := flatten.Flatten(ir.Root)
	progress.Done("flattened input", "records", len(records), "paths", len(flatten.Paths(records)))

	// 4. Restructure along the schema tree
	var result models.JSONValue = records
	if !CLI.Flat {
		layer, err := loadSchema(cfg, logger)
		if err != nil {
			return err
		}

		progress = logging.NewProgress(logger)
		r := restructure.NewRestructurer(
			restructure.WithMaxDepth(cfg.Restructure.MaxDepth),
			restructure.WithWorkers(cfg.Restructure.Workers),
			restructure.WithLogger(logger),
		)
		result, err = r.Restructure(records, layer)
		if err != nil {
			return err
		}
		progress.Done("restructured records", "schema_nodes", schema.Count(layer), "workers", cfg.Restructure.Workers)
	}

	// 5. Output the result
	f := formatter.NewFormatter(cfg.Output.Indent)
	return writeOutput(cfg.Output.File, func(w io.Writer) error {
		return f.Write(w, result)
	})
}

// loadSchema reads the schema tree named on the command line, falling back
// to the config file's default. No schema at all is an empty layer.
func loadSchema(cfg *config.Config, logger *log.Logger) ([]*schema.Node, error) {
	path := CLI.Schema
	if path == "" {
		path = cfg.Schema.DefaultSchema
	}
	if path == "" {
		logger.Debug("no schema tree given, printing flat records")
		return nil, nil
	}

	layer, err := schema.ParseFile(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded schema", "path", path, "nodes", schema.Count(layer))
	return layer, nil
}

// parseInput reads JSON from file or stdin
func parseInput(p *parser.Parser) (models.IntermediateRepresentation, error) {
	if CLI.Input != "" {
		return p.ParseFile(CLI.Input)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if CLI.Interactive {
			return readInteractiveInput(p)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return p.ParseString(string(jsonData))
}

// writeOutput opens the output file, or stdout when path is empty, and
// hands it to emit.
func writeOutput(path string, emit func(io.Writer) error) error {
	if path == "" {
		return emit(os.Stdout)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	if err := emit(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
	}
	fmt.Fprintf(os.Stderr, "Output written to %s\n", path)
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput(p *parser.Parser) (models.IntermediateRepresentation, error) {
	fmt.Fprintln(os.Stderr, "jsonshaper Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.IntermediateRepresentation{}, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if len(strings.TrimSpace(jsonData)) == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return p.ParseString(jsonData)
}
