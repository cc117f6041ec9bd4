package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmops/inputplan/pkg/application/dto"
	"github.com/farmops/inputplan/pkg/application/services/landedcost"
	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/repositories"
	"github.com/farmops/inputplan/pkg/infrastructure/repositories/csv"
	"github.com/farmops/inputplan/pkg/infrastructure/repositories/sqlite"
	"github.com/farmops/inputplan/pkg/interfaces/cli/output"
)

// FreightConfig holds configuration for the freight command
type FreightConfig struct {
	LinesFile   string // invoice_lines.csv
	Freight     string
	Other       string
	InvoiceID   string
	Vendor      string
	InvoiceDate string // YYYY-MM-DD
	DBPath      string // with InvoiceID, settle and record landed costs here
	Encoding    string
	Weights     entities.WeightTable
	Format      string
	OutputDir   string
	Verbose     bool
	Help        bool
}

// FreightCommand prorates invoice charges across lines by weight
type FreightCommand struct {
	config FreightConfig
}

// NewFreightCommand creates a new freight command with the given configuration
func NewFreightCommand(config FreightConfig) *FreightCommand {
	return &FreightCommand{config: config}
}

// Execute runs the freight command
func (c *FreightCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if c.config.LinesFile == "" {
		return fmt.Errorf("validation error: --lines must be specified")
	}
	if err := validateFormat(c.config.Format); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	freight, err := parseMoney("freight", c.config.Freight)
	if err != nil {
		return err
	}
	other, err := parseMoney("other", c.config.Other)
	if err != nil {
		return err
	}

	loader, err := csv.NewLoader(c.config.Encoding)
	if err != nil {
		return err
	}
	lines, err := loader.LoadInvoiceLines(c.config.LinesFile)
	if err != nil {
		return fmt.Errorf("error loading invoice lines: %w", err)
	}

	settle := c.config.DBPath != "" && c.config.InvoiceID != ""

	var prices repositories.PriceHistoryStore
	if settle {
		store, err := sqlite.New(c.config.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
		prices = store
	}
	service := landedcost.NewService(c.config.Weights, prices)

	var view dto.FreightAllocationView
	if settle {
		invoice := entities.Invoice{
			ID:            c.config.InvoiceID,
			VendorName:    c.config.Vendor,
			Lines:         lines,
			FreightCharge: freight,
			OtherCharges:  other,
		}
		if c.config.InvoiceDate != "" {
			if invoice.InvoiceDate, err = time.Parse("2006-01-02", c.config.InvoiceDate); err != nil {
				return fmt.Errorf("invalid --date: %s (expected YYYY-MM-DD)", c.config.InvoiceDate)
			}
		}

		settlement, err := service.Settle(ctx, invoice)
		if err != nil {
			return fmt.Errorf("failed to settle invoice: %w", err)
		}
		if c.config.Verbose {
			fmt.Printf("💾 Recorded %d landed costs for invoice %s\n\n", len(settlement.Entries), invoice.ID)
		}
		view = dto.NewFreightAllocationView(invoice.ID, settlement.Lines, invoice.TotalCharges())
	} else {
		if err := entities.ValidateFreightLines(lines); err != nil {
			return fmt.Errorf("invalid invoice lines: %w", err)
		}
		total := freight.Add(other)
		allocated := service.Allocate(ctx, lines, total)
		view = dto.NewFreightAllocationView(c.config.InvoiceID, allocated, total)
	}

	return output.GenerateFreight(view, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	})
}

func parseMoney(name, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s: %s", name, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("--%s cannot be negative, got %s", name, s)
	}
	return d, nil
}

func (c *FreightCommand) showHelp() {
	fmt.Println(`Freight Allocation / Landed Cost

USAGE:
    inputplan freight [OPTIONS]

OPTIONS:
    --lines <FILE>      invoice_lines.csv (product_id,product_name,quantity,unit,unit_price)
    --freight <AMT>     Freight charge to allocate
    --other <AMT>       Other shared charges to allocate
    --invoice <ID>      Invoice id
    --vendor <NAME>     Vendor name
    --date <DATE>       Invoice date (YYYY-MM-DD)
    --db <PATH>         SQLite database; with --invoice the landed costs are recorded
    --encoding <NAME>   CSV encoding: utf-8, windows-1252, shift-jis
    --format <FMT>      Output format: text, json, csv (default: text)
    --output <DIR>      Write results to a file in this directory
    --verbose           Enable verbose output
    --help              Show this help message

EXAMPLES:
    inputplan freight --lines ./invoice_lines.csv --freight 450 --other 50
    inputplan freight --lines ./invoice_lines.csv --freight 500 --invoice INV-42 --vendor "Valley Coop" --db inputplan.db`)
}
