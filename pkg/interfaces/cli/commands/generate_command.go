package commands

import (
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmops/inputplan/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Products  int     // Number of products in the catalog
	Fields    int     // Number of crop/pass usages per product (upper bound)
	Inventory float64 // On-hand multiplier (e.g., 0.5 = half coverage, 1.2 = over-stocked)
	Orders    float64 // Share of each shortfall placed on order (0..1+)
	OutputDir string  // Output directory for generated files
	Seed      int64   // Random seed for reproducible generation
	Help      bool
	Verbose   bool
}

// GenerateCommand writes a random but reproducible readiness scenario as CSV
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
}

type generatedProduct struct {
	id       string
	name     string
	unit     string
	category string
	needed   []decimal.Decimal
	crops    []string
	passes   []string
}

var (
	productFamilies = []struct {
		prefix, name, unit, category string
	}{
		{"GLY", "Glyphosate", "gal", "chemical"},
		{"ATR", "Atrazine", "gal", "chemical"},
		{"DIC", "Dicamba", "gal", "chemical"},
		{"UREA", "Urea 46-0-0", "lbs", "fertilizer"},
		{"AMS", "AMS 21-0-0-24", "ton", "fertilizer"},
		{"POT", "Potash 0-0-60", "ton", "fertilizer"},
		{"CSEED", "Corn Seed", "bag", "seed"},
		{"SSEED", "Soybean Seed", "bag", "seed"},
	}
	crops   = []string{"Corn", "Soybeans", "Wheat", "Sorghum"}
	passes  = []string{"Burndown", "Pre-emerge", "Post", "Topdress", "Planting"}
	vendors = []string{"Valley Coop", "Prairie Ag", "Heartland Supply"}
	sheds   = []string{"Main Shed", "North Shed", "Bin 1", "Bin 2", "Chem Room"}
)

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.Fields <= 0 {
		config.Fields = 3
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if cmd.config.Products <= 0 {
		return fmt.Errorf("validation error: --products must be positive")
	}
	if cmd.config.OutputDir == "" {
		return fmt.Errorf("validation error: --output must be specified")
	}

	if cmd.config.Verbose {
		fmt.Printf("🔧 Generating scenario with %d products, %.1fx inventory, %.1fx orders\n",
			cmd.config.Products, cmd.config.Inventory, cmd.config.Orders)
		fmt.Printf("📁 Output directory: %s\n", cmd.config.OutputDir)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	products := cmd.generateProducts()

	steps := []struct {
		file  string
		write func([]*generatedProduct) [][]string
	}{
		{csv.ProductsFile, cmd.productRecords},
		{csv.PlanUsageFile, cmd.planUsageRecords},
		{csv.InventoryFile, cmd.inventoryRecords},
		{csv.OrdersFile, cmd.orderRecords},
	}
	for _, step := range steps {
		if cmd.config.Verbose {
			fmt.Printf("📦 Generating %s...\n", step.file)
		}
		if err := writeCSV(filepath.Join(cmd.config.OutputDir, step.file), step.write(products)); err != nil {
			return fmt.Errorf("failed to generate %s: %w", step.file, err)
		}
	}

	if cmd.config.Verbose {
		fmt.Printf("✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) generateProducts() []*generatedProduct {
	products := make([]*generatedProduct, 0, cmd.config.Products)
	for i := 0; i < cmd.config.Products; i++ {
		family := productFamilies[i%len(productFamilies)]
		p := &generatedProduct{
			id:       fmt.Sprintf("%s-%03d", family.prefix, i+1),
			name:     fmt.Sprintf("%s #%d", family.name, i+1),
			unit:     family.unit,
			category: family.category,
		}
		usages := 1 + cmd.rand.Intn(cmd.config.Fields)
		for u := 0; u < usages; u++ {
			p.needed = append(p.needed, cmd.quantityFor(family.unit))
			p.crops = append(p.crops, crops[cmd.rand.Intn(len(crops))])
			p.passes = append(p.passes, passes[cmd.rand.Intn(len(passes))])
		}
		products = append(products, p)
	}
	return products
}

func (cmd *GenerateCommand) quantityFor(unit string) decimal.Decimal {
	switch unit {
	case "ton":
		return decimal.NewFromInt(int64(5 + cmd.rand.Intn(40)))
	case "lbs":
		return decimal.NewFromInt(int64(500 + cmd.rand.Intn(20000)))
	case "bag":
		return decimal.NewFromInt(int64(20 + cmd.rand.Intn(200)))
	default:
		return decimal.NewFromInt(int64(10 + cmd.rand.Intn(400)))
	}
}

func (p *generatedProduct) total() decimal.Decimal {
	total := decimal.Zero
	for _, n := range p.needed {
		total = total.Add(n)
	}
	return total
}

func (cmd *GenerateCommand) productRecords(products []*generatedProduct) [][]string {
	records := [][]string{{"product_id", "name", "unit", "category"}}
	for _, p := range products {
		records = append(records, []string{p.id, p.name, p.unit, p.category})
	}
	return records
}

func (cmd *GenerateCommand) planUsageRecords(products []*generatedProduct) [][]string {
	records := [][]string{{"product_id", "crop", "pass", "total_needed", "unit"}}
	for _, p := range products {
		for i := range p.needed {
			records = append(records, []string{p.id, p.crops[i], p.passes[i], p.needed[i].String(), p.unit})
		}
	}
	return records
}

// inventoryRecords splits roughly Inventory × requirement over one or two lots
func (cmd *GenerateCommand) inventoryRecords(products []*generatedProduct) [][]string {
	records := [][]string{{"product_id", "quantity", "container_count", "location", "lot_number"}}
	for _, p := range products {
		onHand := cmd.jitter(p.total().Mul(decimal.NewFromFloat(cmd.config.Inventory)))
		if onHand.IsZero() {
			continue
		}
		lots := 1 + cmd.rand.Intn(2)
		first := onHand
		if lots == 2 {
			first = onHand.Div(decimal.NewFromInt(2)).Floor()
		}
		parts := []decimal.Decimal{first}
		if lots == 2 {
			parts = append(parts, onHand.Sub(first))
		}
		for n, q := range parts {
			containers := ""
			if p.unit == "gal" {
				containers = strconv.Itoa(int(q.Div(decimal.NewFromFloat(2.5)).Ceil().IntPart()))
			}
			records = append(records, []string{
				p.id,
				q.String(),
				containers,
				sheds[cmd.rand.Intn(len(sheds))],
				fmt.Sprintf("LOT-%s-%d", p.id, n+1),
			})
		}
	}
	return records
}

// orderRecords places Orders × the remaining shortfall on order; some lines
// land in draft or partial orders so committed-status filtering matters
func (cmd *GenerateCommand) orderRecords(products []*generatedProduct) [][]string {
	records := [][]string{{"order_id", "vendor", "status", "product_id", "ordered_qty", "received_qty", "unit", "unit_price"}}
	statuses := []string{"ordered", "ordered", "ordered", "partial", "draft"}

	// every three products share one order, and an order has a single status
	var status string
	for i, p := range products {
		if i%3 == 0 {
			status = statuses[cmd.rand.Intn(len(statuses))]
		}
		shortfall := p.total().Mul(decimal.NewFromFloat(1 - cmd.config.Inventory))
		ordered := cmd.jitter(shortfall.Mul(decimal.NewFromFloat(cmd.config.Orders)))
		if !ordered.IsPositive() {
			continue
		}
		received := decimal.Zero
		if status == "partial" {
			received = ordered.Div(decimal.NewFromInt(3)).Floor()
			ordered = ordered.Add(received)
		}
		records = append(records, []string{
			fmt.Sprintf("PO-%04d", 1000+i/3),
			vendors[(i/3)%len(vendors)],
			status,
			p.id,
			ordered.String(),
			received.String(),
			p.unit,
			decimal.NewFromFloat(5 + cmd.rand.Float64()*500).Round(2).String(),
		})
	}
	return records
}

// jitter varies q by up to ±10% and rounds to a whole unit
func (cmd *GenerateCommand) jitter(q decimal.Decimal) decimal.Decimal {
	if !q.IsPositive() {
		return decimal.Zero
	}
	factor := decimal.NewFromFloat(0.9 + cmd.rand.Float64()*0.2)
	return q.Mul(factor).Round(0)
}

func writeCSV(filename string, records [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := stdcsv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return file.Close()
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Println(`Readiness Scenario Generator

USAGE:
    inputplan generate [OPTIONS]

OPTIONS:
    --products <N>      Number of products to generate (required)
    --fields <N>        Maximum crop/pass usages per product (default: 3)
    --inventory <F>     On-hand multiplier (e.g., 0.5 = half coverage, 1.2 = over-stocked)
    --orders <F>        Share of the remaining shortfall placed on order (e.g., 0.8)
    --output <DIR>      Output directory for generated files (required)
    --seed <N>          Random seed for reproducible generation (optional)
    --verbose           Enable verbose output
    --help              Show this help message

EXAMPLES:
    inputplan generate --products 40 --inventory 0.5 --orders 0.8 --output ./spring_plan
    inputplan generate --products 2000 --inventory 0.9 --orders 1 --output ./large --seed 12345`)
}
