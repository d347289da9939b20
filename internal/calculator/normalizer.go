package calculator

import (
	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/parser"
)

// Trattoria owns tables 1..299; every other label belongs to Japa
const (
	trattoriaFirstTable = 1
	trattoriaLastTable  = 299
)

// NormalizeStats counts what the normalizer kept and dropped
type NormalizeStats struct {
	InputRows     int `json:"inputRows"`
	BlankRows     int `json:"blankRows"`
	UnlabeledRows int `json:"unlabeledRows"`
	OutputRows    int `json:"outputRows"`
}

// carry fold state: the last non-blank table label seen in file order
type carry struct {
	label string
}

// next returns the effective label of a row and the updated state
func (c carry) next(cell parser.Cell) (string, carry) {
	label := cell.Trimmed()
	if label == "" {
		return c.label, c
	}
	return label, carry{label: label}
}

// Normalize folds raw rows into normalized rows.
// Blank rows are skipped, blank labels inherit the previous label and rows before the first label are dropped.
func Normalize(rows []parser.RawRow, mapping parser.ColumnMapping) ([]model.NormalizedRow, NormalizeStats) {
	stats := NormalizeStats{InputRows: len(rows)}
	out := make([]model.NormalizedRow, 0, len(rows))

	tableCol := mapping.Header(parser.FieldTable)
	itemsCol := mapping.Header(parser.FieldItems)
	serviceCol := mapping.Header(parser.FieldService)
	receivedCol := mapping.Header(parser.FieldReceived)
	paymentCol := mapping.Header(parser.FieldPayment)

	state := carry{}
	for _, row := range rows {
		if row.IsBlank() {
			stats.BlankRows++
			continue
		}

		var label string
		label, state = state.next(row.Get(tableCol))
		if label == "" {
			stats.UnlabeledRows++
			continue
		}

		out = append(out, model.NormalizedRow{
			TableLabel:     label,
			ItemsValue:     parser.ParseNumber(row.Get(itemsCol)),
			ServiceCharge:  parser.ParseNumber(row.Get(serviceCol)),
			ReceivedAmount: parser.ParseNumber(row.Get(receivedCol)),
			PaymentMethod:  PaymentMethod(row.Get(paymentCol)),
		})
	}

	stats.OutputRows = len(out)
	return out, stats
}

// PaymentMethod trimmed payment method, "Outros" when blank
func PaymentMethod(cell parser.Cell) string {
	method := cell.Trimmed()
	if method == "" {
		return model.PaymentOther
	}
	return method
}

// Classify maps a table label to its restaurant
func Classify(label string) model.Restaurant {
	n, ok := parser.ExtractTableNumber(label)
	if ok && n >= trattoriaFirstTable && n <= trattoriaLastTable {
		return model.RestaurantTrattoria
	}
	return model.RestaurantJapa
}

// ExtractReportDate returns the first date cell that parses, scanning in file order
func ExtractReportDate(rows []parser.RawRow, mapping parser.ColumnMapping) *string {
	dateCol := mapping.Header(parser.FieldDate)
	for _, row := range rows {
		cell := row.Get(dateCol)
		if cell.IsBlank() {
			continue
		}
		if date, ok := parser.ParseReportDate(cell); ok {
			return &date
		}
	}
	return nil
}
