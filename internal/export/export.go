// Package export renders reservations into an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"sort"

	"barberia/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	reservationsSheet = "Reservas"
	summarySheet      = "Resumen"
)

var columns = []struct {
	title string
	width float64
}{
	{"Fecha", 12},
	{"Hora", 8},
	{"Tipo", 16},
	{"Cliente", 22},
	{"Teléfono", 15},
	{"Servicio", 25},
	{"Barbero", 18},
	{"Estado", 12},
	{"Entrega", 12},
	{"Productos", 35},
	{"Descuento", 12},
	{"Total", 12},
}

var statusFill = map[string]string{
	models.StatusPending:   "#FFEB9C",
	models.StatusConfirmed: "#C6EFCE",
	models.StatusCancelled: "#FFC7CE",
}

// Filename names a workbook covering from..to.
func Filename(from, to string) string {
	if from == "" && to == "" {
		return "reservas.xlsx"
	}
	return fmt.Sprintf("reservas_%s_%s.xlsx", from, to)
}

// WriteReservations writes a workbook with one row per reservation and a
// summary sheet with totals per status.
func WriteReservations(w io.Writer, period string, reservations []*models.Reservation) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reservationsSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeReservations(f, period, reservations); err != nil {
		return err
	}
	if err := writeSummary(f, reservations); err != nil {
		return err
	}

	_ = f.DeleteSheet("Sheet1")

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeReservations(f *excelize.File, period string, reservations []*models.Reservation) error {
	lastCol, _ := excelize.ColumnNumberToName(len(columns))

	_ = f.SetCellValue(reservationsSheet, "A1", "Periodo: "+period)
	_ = f.MergeCell(reservationsSheet, "A1", lastCol+"1")
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	_ = f.SetCellStyle(reservationsSheet, "A1", "A1", titleStyle)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	for i, c := range columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetCellValue(reservationsSheet, fmt.Sprintf("%s2", name), c.title)
		_ = f.SetColWidth(reservationsSheet, name, name, c.width)
	}
	_ = f.SetCellStyle(reservationsSheet, "A2", lastCol+"2", headerStyle)

	styles := make(map[string]int, len(statusFill))
	for status, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		})
		if err != nil {
			return err
		}
		styles[status] = id
	}

	row := 3
	for _, r := range reservations {
		values := []interface{}{
			r.Date,
			r.Time,
			kindLabel(r.Kind),
			r.CustomerName,
			r.CustomerPhone,
			r.ServiceLabel,
			barberLabel(r),
			r.Status,
			deref(r.DeliveryStatus),
			productList(r.Items),
			money(r.DiscountAmount),
			money(r.Total),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(reservationsSheet, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
		if style, ok := styles[r.Status]; ok {
			_ = f.SetCellStyle(reservationsSheet, cell, fmt.Sprintf("%s%d", lastCol, row), style)
		}
		row++
	}
	return nil
}

func writeSummary(f *excelize.File, reservations []*models.Reservation) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	count := make(map[string]int)
	total := make(map[string]decimal.Decimal)
	for _, r := range reservations {
		count[r.Status]++
		total[r.Status] = total[r.Status].Add(r.Total)
	}
	statuses := make([]string, 0, len(count))
	for s := range count {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)

	_ = f.SetSheetRow(summarySheet, "A1", &[]interface{}{"Estado", "Reservas", "Importe"})
	grand := decimal.Zero
	row := 2
	for _, s := range statuses {
		_ = f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &[]interface{}{s, count[s], money(total[s])})
		if s != models.StatusCancelled {
			grand = grand.Add(total[s])
		}
		row++
	}
	_ = f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &[]interface{}{"Facturado", len(reservations) - count[models.StatusCancelled], money(grand)})

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	_ = f.SetCellStyle(summarySheet, "A1", "C1", bold)
	_ = f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), bold)
	_ = f.SetColWidth(summarySheet, "A", "C", 15)
	return nil
}

func kindLabel(kind string) string {
	if kind == models.KindProductInvoice {
		return "Factura productos"
	}
	return "Cita"
}

func barberLabel(r *models.Reservation) string {
	if r.IsProductInvoice() {
		return ""
	}
	if r.BarberName == "" {
		return "Cualquiera"
	}
	return r.BarberName
}

func productList(items []*models.ReservationItem) string {
	var out string
	for _, it := range items {
		if it.ItemType != models.ItemTypeProduct {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += fmt.Sprintf("%s x%d", it.ItemName, it.Quantity)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// money keeps two decimals as a float so spreadsheet formulas can sum it.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
