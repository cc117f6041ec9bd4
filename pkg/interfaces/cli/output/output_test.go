package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmops/inputplan/pkg/application/dto"
	testinghelpers "github.com/farmops/inputplan/pkg/application/services/testing"
	"github.com/farmops/inputplan/pkg/domain/entities"
	"github.com/farmops/inputplan/pkg/domain/services"
)

func springReport(t *testing.T, explain bool) dto.ReadinessReport {
	t.Helper()
	products, plan, inventory, orders := testinghelpers.SpringPlanInput()
	demand := services.NormalizeDemand(plan, services.NewCatalog(products))
	lines := services.FilterCommitted(services.PurchaseOrderAdapter.Flatten(orders))
	result := services.ComputeReadiness(demand, inventory, lines)
	return dto.NewReadinessReport(result, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), explain)
}

func freightView() dto.FreightAllocationView {
	inv := testinghelpers.AMSUreaInvoice()
	lines := services.AllocateFreight(inv.Lines, inv.TotalCharges())
	return dto.NewFreightAllocationView(inv.ID, lines, inv.TotalCharges())
}

func TestWriteReadiness_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReadiness(&buf, springReport(t, true), "text"))

	out := buf.String()
	assert.Contains(t, out, "Products: 3   Ready: 1   On order: 1   Blocking: 1")
	assert.Contains(t, out, "Urea 46-0-0")
	assert.Contains(t, out, "BLOCKING")
	assert.Contains(t, out, "from Valley Coop (PO-100, ordered)")
	assert.Contains(t, out, "@ North Shed")
}

func TestWriteReadiness_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReadiness(&buf, springReport(t, false), "csv"))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "product_id", records[0][0])
	assert.Equal(t, []string{"UREA", "Urea 46-0-0", "BLOCKING", "100", "20", "30", "50", "lbs"}, records[3])
}

func TestWriteReadiness_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReadiness(&buf, springReport(t, false), "json"))

	var decoded dto.ReadinessReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Summary.Total)
	assert.Equal(t, entities.OnOrder, decoded.Items[1].Status)
}

func TestWriteFreight_TextAndCSV(t *testing.T) {
	var text bytes.Buffer
	require.NoError(t, WriteFreight(&text, freightView(), "text"))
	assert.Contains(t, text.String(), "INV-2026-0042")
	assert.Contains(t, text.String(), "433.52")

	var buf bytes.Buffer
	require.NoError(t, WriteFreight(&buf, freightView(), "csv"))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "277.78", records[1][7])
	assert.Equal(t, "528.52", records[2][8])
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorContains(t, WriteReadiness(&buf, springReport(t, false), "xml"), "unsupported output format")
	assert.ErrorContains(t, WriteFreight(&buf, freightView(), "yaml"), "unsupported output format")
}

func TestGenerateReadiness_ToOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, GenerateReadiness(springReport(t, false), Config{Format: "text", OutputDir: dir}))

	data, err := os.ReadFile(filepath.Join(dir, "readiness.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Input Readiness Summary")
}
