package exporter

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/luc4spas/erp-joy-maker/internal/calculator"
	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/store"
)

// Sheet names of the closing history workbook
const (
	SheetClosings = "Fechamentos"
	SheetPayments = "Pagamentos"
	SheetSummary  = "Resumo"
)

var closingHeaders = []interface{}{
	"Data",
	"Japa Itens", "Japa Taxa", "Japa Total", "Japa Comissão",
	"Trattoria Itens", "Trattoria Taxa", "Trattoria Total", "Trattoria Comissão",
	"Total Geral",
}

// Exporter writes the closing history of a tenant as an xlsx workbook
type Exporter struct {
	store *store.Store
}

// NewExporter creates an exporter
func NewExporter(store *store.Store) *Exporter {
	return &Exporter{store: store}
}

// ExportOptions tenant and inclusive date range; nil bounds are open
type ExportOptions struct {
	UserID string
	From   *string
	To     *string
}

// Export loads the range and builds the workbook
func (e *Exporter) Export(ctx context.Context, opts ExportOptions) (*excelize.File, error) {
	closings, err := e.store.ListClosings(ctx, store.ClosingQueryOptions{UserID: opts.UserID, From: opts.From, To: opts.To})
	if err != nil {
		return nil, err
	}

	expenses, err := e.store.ListExpenses(ctx, opts.UserID, opts.From, opts.To)
	if err != nil {
		return nil, err
	}

	return Build(closings, expenses)
}

// Build lays out closings and the range summary into a new workbook
func Build(closings []model.ClosingRecord, expenses []model.Expense) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetClosings); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetPayments, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	steps := []func(*excelize.File) error{
		func(f *excelize.File) error { return writeClosings(f, closings) },
		func(f *excelize.File) error { return writePayments(f, closings) },
		func(f *excelize.File) error { return writeSummary(f, calculator.SummarizeRange(closings, expenses)) },
	}
	for _, step := range steps {
		if err := step(f); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeClosings(f *excelize.File, closings []model.ClosingRecord) error {
	if err := writeHeader(f, SheetClosings, closingHeaders); err != nil {
		return err
	}

	for i, c := range closings {
		row := []interface{}{
			c.Date,
			c.Japa.ItemsValue, c.Japa.ServiceCharge, c.Japa.Total, c.Japa.Commission,
			c.Trattoria.ItemsValue, c.Trattoria.ServiceCharge, c.Trattoria.Total, c.Trattoria.Commission,
			c.TotalGeneral,
		}
		if err := setRow(f, SheetClosings, i+2, row); err != nil {
			return err
		}
	}

	if len(closings) > 0 {
		if err := setMoneyFormat(f, SheetClosings, "B2", fmt.Sprintf("J%d", len(closings)+1)); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetClosings, "A", "J", 16)
}

func writePayments(f *excelize.File, closings []model.ClosingRecord) error {
	if err := writeHeader(f, SheetPayments, []interface{}{"Data", "Restaurante", "Forma de Pagamento", "Valor"}); err != nil {
		return err
	}

	row := 2
	for _, c := range closings {
		for _, brand := range []struct {
			name   model.Restaurant
			totals model.BrandTotals
		}{
			{name: model.RestaurantJapa, totals: c.Japa},
			{name: model.RestaurantTrattoria, totals: c.Trattoria},
		} {
			for _, method := range sortedKeys(brand.totals.Payments) {
				if err := setRow(f, SheetPayments, row, []interface{}{c.Date, string(brand.name), method, brand.totals.Payments[method]}); err != nil {
					return err
				}
				row++
			}
		}
	}

	if row > 2 {
		if err := setMoneyFormat(f, SheetPayments, "D2", fmt.Sprintf("D%d", row-1)); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetPayments, "A", "D", 20)
}

func writeSummary(f *excelize.File, s calculator.RangeSummary) error {
	lines := [][]interface{}{
		{"Indicador", "Valor"},
		{"Fechamentos", s.RecordCount},
		{"Faturamento", s.Revenue},
		{"Taxa de Serviço", s.ServiceCharge},
		{"Comissão", s.Commission},
		{"Despesas", s.Expenses},
		{"Saldo", s.NetBalance},
		{"Japa Total", s.Japa.Total},
		{"Trattoria Total", s.Trattoria.Total},
	}
	for i, line := range lines {
		if err := setRow(f, SheetSummary, i+1, line); err != nil {
			return err
		}
	}

	if err := setMoneyFormat(f, SheetSummary, "B3", fmt.Sprintf("B%d", len(lines))); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "B", 20)
}

func writeHeader(f *excelize.File, sheet string, headers []interface{}) error {
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// setMoneyFormat applies the two-decimal number format to a range
func setMoneyFormat(f *excelize.File, sheet, from, to string) error {
	format := "#,##0.00"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
