package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/farmops/inputplan/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string // text, json or csv
	OutputDir string // write to a file here instead of stdout
	Verbose   bool
}

// GenerateReadiness writes a readiness report to stdout or to
// OutputDir/readiness.<format>
func GenerateReadiness(report dto.ReadinessReport, config Config) error {
	return generate(config, "readiness", func(w io.Writer) error {
		return WriteReadiness(w, report, config.Format)
	})
}

// GenerateFreight writes a freight allocation to stdout or to
// OutputDir/freight.<format>
func GenerateFreight(view dto.FreightAllocationView, config Config) error {
	return generate(config, "freight", func(w io.Writer) error {
		return WriteFreight(w, view, config.Format)
	})
}

func generate(config Config, name string, write func(io.Writer) error) error {
	if config.OutputDir == "" {
		return write(os.Stdout)
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	ext := config.Format
	if ext == "text" {
		ext = "txt"
	}
	filename := filepath.Join(config.OutputDir, name+"."+ext)

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	if err := write(file); err != nil {
		return err
	}
	if config.Verbose {
		fmt.Printf("💾 Results saved to: %s\n", filename)
	}
	return nil
}

// WriteReadiness renders a report in the given format
func WriteReadiness(w io.Writer, report dto.ReadinessReport, format string) error {
	switch format {
	case "text":
		return writeReadinessText(w, report)
	case "json":
		return writeJSON(w, report)
	case "csv":
		return writeReadinessCSV(w, report)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteFreight renders a freight allocation in the given format
func WriteFreight(w io.Writer, view dto.FreightAllocationView, format string) error {
	switch format {
	case "text":
		return writeFreightText(w, view)
	case "json":
		return writeJSON(w, view)
	case "csv":
		return writeFreightCSV(w, view)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

func writeReadinessText(w io.Writer, report dto.ReadinessReport) error {
	s := report.Summary
	fmt.Fprintf(w, "📊 Input Readiness Summary\n")
	fmt.Fprintf(w, "==========================\n\n")
	fmt.Fprintf(w, "Products: %d   Ready: %d   On order: %d   Blocking: %d\n\n", s.Total, s.Ready, s.OnOrder, s.Blocking)

	if len(report.Items) == 0 {
		fmt.Fprintln(w, "No planned usage.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Product\tStatus\tRequired\tOn hand\tOn order\tShort\tUnit")
	fmt.Fprintln(tw, "-------\t------\t--------\t-------\t--------\t-----\t----")
	for _, item := range report.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.Label,
			item.Status,
			item.RequiredQty.String(),
			item.OnHandQty.String(),
			item.OnOrderQty.String(),
			item.ShortQty.String(),
			item.PlannedUnit)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, item := range report.Items {
		if item.Explain == nil {
			continue
		}
		fmt.Fprintf(w, "\n🔍 %s (%s)\n", item.Label, item.ProductID)
		for _, row := range item.Explain.InventoryRows {
			fmt.Fprintf(w, "  on hand  %s %s", row.Quantity.String(), item.PlannedUnit)
			if row.Location != "" {
				fmt.Fprintf(w, " @ %s", row.Location)
			}
			fmt.Fprintln(w)
		}
		for _, line := range item.Explain.OrderLines {
			fmt.Fprintf(w, "  on order %s %s from %s (%s, %s)\n",
				line.RemainingQty.String(), line.Unit, vendorOrDash(line.VendorName), line.OrderID, line.Status)
		}
	}
	return nil
}

func vendorOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func writeReadinessCSV(w io.Writer, report dto.ReadinessReport) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"product_id", "label", "status", "required_qty", "on_hand_qty", "on_order_qty", "short_qty", "unit"}}
	for _, item := range report.Items {
		records = append(records, []string{
			string(item.ProductID),
			item.Label,
			item.Status.String(),
			item.RequiredQty.String(),
			item.OnHandQty.String(),
			item.OnOrderQty.String(),
			item.ShortQty.String(),
			string(item.PlannedUnit),
		})
	}
	return cw.WriteAll(records)
}

func writeFreightText(w io.Writer, view dto.FreightAllocationView) error {
	fmt.Fprintf(w, "🚚 Freight Allocation")
	if view.InvoiceID != "" {
		fmt.Fprintf(w, " (%s)", view.InvoiceID)
	}
	fmt.Fprintf(w, "\n=====================\n\n")
	fmt.Fprintf(w, "Total charges: %s   Total weight: %s lbs\n\n", view.TotalCharges.StringFixed(2), view.TotalWeight.String())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Product\tQty\tUnit\tUnit price\tSubtotal\tFreight\tLanded/unit")
	fmt.Fprintln(tw, "-------\t---\t----\t----------\t--------\t-------\t-----------")
	for _, line := range view.Lines {
		name := line.ProductName
		if name == "" {
			name = string(line.ProductID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			name,
			line.Quantity.String(),
			line.Unit,
			line.UnitPrice.StringFixed(2),
			line.Subtotal.StringFixed(2),
			line.AllocatedFreight.StringFixed(2),
			line.LandedUnitCost.StringFixed(2))
	}
	return tw.Flush()
}

func writeFreightCSV(w io.Writer, view dto.FreightAllocationView) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"product_id", "product_name", "quantity", "unit", "unit_price", "subtotal", "weight_lbs", "allocated_freight", "landed_unit_cost"}}
	for _, line := range view.Lines {
		records = append(records, []string{
			string(line.ProductID),
			line.ProductName,
			line.Quantity.String(),
			string(line.Unit),
			line.UnitPrice.String(),
			line.Subtotal.StringFixed(2),
			line.Weight.String(),
			line.AllocatedFreight.StringFixed(2),
			line.LandedUnitCost.StringFixed(2),
		})
	}
	return cw.WriteAll(records)
}
