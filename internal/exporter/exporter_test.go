package exporter

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/store"
)

func TestExport_ClosingHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st, err := store.New(filepath.Join(t.TempDir(), "fechamento.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	for _, c := range []model.ClosingRecord{
		{
			UserID: "user-1", Date: "2026-01-13", TotalGeneral: 330,
			Japa:      model.BrandTotals{ItemsValue: 200, Total: 220, Commission: 16, Payments: map[string]float64{"PIX": 220}},
			Trattoria: model.BrandTotals{ItemsValue: 100, Total: 110, Commission: 8, Payments: map[string]float64{"DINHEIRO": 60, "CARTAO": 50}},
		},
		{UserID: "user-1", Date: "2026-01-12", TotalGeneral: 50, Japa: model.BrandTotals{Total: 50}},
		{UserID: "user-1", Date: "2026-02-01", TotalGeneral: 999},
	} {
		c := c
		if err := st.CreateClosing(ctx, &c); err != nil {
			t.Fatalf("create closing: %v", err)
		}
	}
	if err := st.CreateExpense(ctx, &model.Expense{UserID: "user-1", Date: "2026-01-12", Description: "Gelo", Amount: 30}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	from, to := "2026-01-01", "2026-01-31"
	f, err := NewExporter(st).Export(ctx, ExportOptions{UserID: "user-1", From: &from, To: &to})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(SheetClosings)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want header plus 2 closings, got %d rows", len(rows))
	}
	if rows[1][0] != "2026-01-12" || rows[2][0] != "2026-01-13" {
		t.Fatalf("closings should be in date order: %v", rows)
	}

	payments, err := f.GetRows(SheetPayments)
	if err != nil {
		t.Fatalf("get payment rows: %v", err)
	}
	// header + PIX + CARTAO + DINHEIRO
	if len(payments) != 4 || payments[1][2] != "PIX" || payments[2][2] != "CARTAO" {
		t.Fatalf("unexpected payment rows: %v", payments)
	}

	saldo, err := f.GetCellValue(SheetSummary, "B7", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if saldo != "350" {
		t.Fatalf("want net balance 350 got %s", saldo)
	}
}

func TestBuild_EmptyRangeStillWritesHeaders(t *testing.T) {
	t.Parallel()

	f, err := Build(nil, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	reopened, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	if got := reopened.GetSheetList(); len(got) != 3 || got[0] != SheetClosings {
		t.Fatalf("unexpected sheets: %v", got)
	}
	header, err := reopened.GetCellValue(SheetClosings, "J1")
	if err != nil || header != "Total Geral" {
		t.Fatalf("unexpected header %q: %v", header, err)
	}
}
