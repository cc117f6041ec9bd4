package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/farmops/inputplan/pkg/application/dto"
	"github.com/farmops/inputplan/pkg/application/services/readiness"
	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/infrastructure/repositories/csv"
	"github.com/farmops/inputplan/pkg/infrastructure/repositories/memory"
	"github.com/farmops/inputplan/pkg/infrastructure/repositories/sqlite"
	"github.com/farmops/inputplan/pkg/interfaces/cli/output"
)

// ReadinessConfig holds configuration for the readiness command
type ReadinessConfig struct {
	DataDir   string // directory of CSV files
	DBPath    string // sqlite database; with DataDir, the CSVs replace its planning data
	Encoding  string // CSV encoding
	Committed []entities.OrderStatus
	Format    string
	OutputDir string
	Explain   bool
	Verbose   bool
	Help      bool
}

// ReadinessCommand reconciles planned usage against inventory and orders
type ReadinessCommand struct {
	config ReadinessConfig
}

// NewReadinessCommand creates a new readiness command with the given configuration
func NewReadinessCommand(config ReadinessConfig) *ReadinessCommand {
	return &ReadinessCommand{config: config}
}

// Execute runs the readiness command
func (c *ReadinessCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	service, closeFn, err := c.buildService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	start := time.Now()
	result, err := service.Run(ctx)
	if err != nil {
		return fmt.Errorf("readiness run failed: %w", err)
	}

	if c.config.Verbose {
		fmt.Printf("⚡ Reconciled %d products in %v\n\n", result.TotalCount(), time.Since(start))
	}

	report := dto.NewReadinessReport(result, time.Now().UTC(), c.config.Explain)
	return output.GenerateReadiness(report, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	})
}

func (c *ReadinessCommand) validateInputs() error {
	if c.config.DataDir == "" && c.config.DBPath == "" {
		return fmt.Errorf("either --data or --db must be specified")
	}
	return validateFormat(c.config.Format)
}

// buildService wires the readiness service over sqlite when a database is
// given and over memory repositories otherwise
func (c *ReadinessCommand) buildService(ctx context.Context) (*readiness.Service, func(), error) {
	var dataset *csv.Dataset
	if c.config.DataDir != "" {
		loader, err := csv.NewLoader(c.config.Encoding)
		if err != nil {
			return nil, nil, err
		}
		if c.config.Verbose {
			fmt.Printf("📂 Loading CSV files from %s...\n", c.config.DataDir)
		}
		if dataset, err = loader.LoadDirectory(c.config.DataDir); err != nil {
			return nil, nil, fmt.Errorf("error loading data: %w", err)
		}
		if c.config.Verbose {
			fmt.Printf("✅ Data loaded successfully:\n")
			fmt.Printf("  Products: %d\n", len(dataset.Products))
			fmt.Printf("  Plan usage records: %d\n", len(dataset.PlanUsage))
			fmt.Printf("  Inventory rows: %d\n", len(dataset.Inventory))
			fmt.Printf("  Orders: %d\n", len(dataset.Orders))
		}
	}

	opts := []readiness.Option{readiness.WithCommittedStatuses(c.config.Committed...)}

	if c.config.DBPath != "" {
		store, err := sqlite.New(c.config.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if dataset != nil {
			if err := store.ReplaceScenario(ctx, sqlite.Scenario(*dataset)); err != nil {
				store.Close()
				return nil, nil, fmt.Errorf("failed to import data: %w", err)
			}
		}
		svc := readiness.NewService(store, store, store, store, opts...)
		return svc, func() { store.Close() }, nil
	}

	products := memory.NewProductRepository(len(dataset.Products))
	plans := memory.NewDemandRepository()
	inventory := memory.NewInventoryRepository()
	orders := memory.NewOrderRepository()
	if err := products.LoadProducts(ctx, dataset.Products); err != nil {
		return nil, nil, fmt.Errorf("failed to load products into repository: %w", err)
	}
	if err := plans.LoadPlanUsage(ctx, dataset.PlanUsage); err != nil {
		return nil, nil, fmt.Errorf("failed to load plan usage into repository: %w", err)
	}
	if err := inventory.LoadInventoryRows(ctx, dataset.Inventory); err != nil {
		return nil, nil, fmt.Errorf("failed to load inventory into repository: %w", err)
	}
	if err := orders.LoadOrders(ctx, dataset.Orders); err != nil {
		return nil, nil, fmt.Errorf("failed to load orders into repository: %w", err)
	}

	return readiness.NewService(plans, products, inventory, orders, opts...), func() {}, nil
}

func validateFormat(format string) error {
	switch format {
	case "text", "json", "csv":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (must be text, json, or csv)", format)
	}
}

func (c *ReadinessCommand) showHelp() {
	fmt.Println(`Input Readiness

USAGE:
    inputplan readiness [OPTIONS]

OPTIONS:
    --data <DIR>        Directory with plan_usage.csv and optional products.csv,
                        inventory.csv, orders.csv
    --db <PATH>         SQLite database; combined with --data the CSVs are imported first
    --encoding <NAME>   CSV encoding: utf-8, windows-1252, shift-jis
    --committed <LIST>  Comma-separated order statuses counted as supply (default: ordered)
    --format <FMT>      Output format: text, json, csv (default: text)
    --output <DIR>      Write results to a file in this directory
    --explain           Include inventory rows and order lines behind each product
    --verbose           Enable verbose output
    --help              Show this help message

EXAMPLES:
    inputplan readiness --data ./spring_plan --explain
    inputplan readiness --data ./spring_plan --committed ordered,partial --format csv --output ./out
    inputplan readiness --db inputplan.db --format json`)
}
