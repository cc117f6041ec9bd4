package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/infrastructure/config"
	"github.com/farmops/inputplan/pkg/infrastructure/logger"
	"github.com/farmops/inputplan/pkg/interfaces/cli/commands"
)

type command interface {
	Execute(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var (
		cmd command
		err error
	)
	switch name, args := os.Args[1], os.Args[2:]; name {
	case "readiness":
		cmd, err = readinessCommand(args)
	case "freight":
		cmd, err = freightCommand(args)
	case "generate":
		cmd, err = generateCommand(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	defer logger.Shutdown(ctx)

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: inputplan <command> [options]

Commands:
    readiness   Reconcile planned usage against inventory and orders
    freight     Prorate invoice freight by weight and compute landed cost
    generate    Generate a random readiness scenario as CSV files

Run "inputplan <command> --help" for command options.`)
}

// setup loads the YAML config and installs the logger before any command runs
func setup(configPath string, verbose bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if verbose {
		level = "DEBUG"
	}
	if err := logger.Init(logger.Config{
		Level:          level,
		Format:         cfg.Log.Format,
		TracingEnabled: cfg.Log.Tracing,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readinessCommand(args []string) (command, error) {
	fs := flag.NewFlagSet("readiness", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "Path to YAML config file")
		dataDir    = fs.String("data", "", "Directory of plan_usage.csv and optional products, inventory, orders CSVs")
		dbPath     = fs.String("db", "", "SQLite database path")
		encoding   = fs.String("encoding", "", "CSV encoding: utf-8, windows-1252, shift-jis")
		committed  = fs.String("committed", "", "Comma-separated order statuses counted as supply")
		format     = fs.String("format", "text", "Output format: text, json, csv")
		outputDir  = fs.String("output", "", "Output directory for results (optional)")
		explain    = fs.Bool("explain", false, "Include the rows behind each product")
		verbose    = fs.Bool("verbose", false, "Enable verbose output")
		help       = fs.Bool("help", false, "Show help message")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := setup(*configPath, *verbose)
	if err != nil {
		return nil, err
	}

	statuses := cfg.CommittedStatuses()
	if *committed != "" {
		if statuses, err = parseStatuses(*committed); err != nil {
			return nil, err
		}
	}
	if *encoding == "" {
		*encoding = cfg.Import.Encoding
	}

	return commands.NewReadinessCommand(commands.ReadinessConfig{
		DataDir:   *dataDir,
		DBPath:    *dbPath,
		Encoding:  *encoding,
		Committed: statuses,
		Format:    *format,
		OutputDir: *outputDir,
		Explain:   *explain,
		Verbose:   *verbose,
		Help:      *help,
	}), nil
}

func freightCommand(args []string) (command, error) {
	fs := flag.NewFlagSet("freight", flag.ExitOnError)
	var (
		configPath = fs.String("config", "", "Path to YAML config file")
		linesFile  = fs.String("lines", "", "Path to invoice_lines.csv")
		freight    = fs.String("freight", "", "Freight charge")
		other      = fs.String("other", "", "Other shared charges")
		invoiceID  = fs.String("invoice", "", "Invoice id")
		vendor     = fs.String("vendor", "", "Vendor name")
		date       = fs.String("date", "", "Invoice date (YYYY-MM-DD)")
		dbPath     = fs.String("db", "", "SQLite database path for recording landed costs")
		encoding   = fs.String("encoding", "", "CSV encoding: utf-8, windows-1252, shift-jis")
		format     = fs.String("format", "text", "Output format: text, json, csv")
		outputDir  = fs.String("output", "", "Output directory for results (optional)")
		verbose    = fs.Bool("verbose", false, "Enable verbose output")
		help       = fs.Bool("help", false, "Show help message")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := setup(*configPath, *verbose)
	if err != nil {
		return nil, err
	}
	if *encoding == "" {
		*encoding = cfg.Import.Encoding
	}

	return commands.NewFreightCommand(commands.FreightConfig{
		LinesFile:   *linesFile,
		Freight:     *freight,
		Other:       *other,
		InvoiceID:   *invoiceID,
		Vendor:      *vendor,
		InvoiceDate: *date,
		DBPath:      *dbPath,
		Encoding:    *encoding,
		Weights:     cfg.WeightTable(),
		Format:      *format,
		OutputDir:   *outputDir,
		Verbose:     *verbose,
		Help:        *help,
	}), nil
}

func generateCommand(args []string) (command, error) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		products  = fs.Int("products", 40, "Number of products in the catalog")
		fields    = fs.Int("fields", 3, "Maximum crop/pass usages per product")
		inventory = fs.Float64("inventory", 0.6, "On-hand coverage multiplier")
		orders    = fs.Float64("orders", 0.7, "Share of each shortfall placed on order")
		outputDir = fs.String("output", "", "Output directory for generated CSV files")
		seed      = fs.Int64("seed", 0, "Random seed (0 uses the current time)")
		verbose   = fs.Bool("verbose", false, "Enable verbose output")
		help      = fs.Bool("help", false, "Show help message")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if _, err := setup("", *verbose); err != nil {
		return nil, err
	}

	return commands.NewGenerateCommand(commands.GenerateConfig{
		Products:  *products,
		Fields:    *fields,
		Inventory: *inventory,
		Orders:    *orders,
		OutputDir: *outputDir,
		Seed:      *seed,
		Verbose:   *verbose,
		Help:      *help,
	}), nil
}

func parseStatuses(list string) ([]entities.OrderStatus, error) {
	var out []entities.OrderStatus
	for _, part := range strings.Split(list, ",") {
		status := entities.ParseOrderStatus(strings.TrimSpace(part))
		if !status.Valid() {
			return nil, fmt.Errorf("invalid order status %q in --committed", part)
		}
		out = append(out, status)
	}
	return out, nil
}
