package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/luc4spas/erp-joy-maker/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "fechamento.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func strPtr(s string) *string { return &s }

func TestStore_ClosingRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	c := model.ClosingRecord{
		UserID:       "user-1",
		Date:         "2026-01-18",
		TotalGeneral: 330,
		Japa: model.BrandTotals{
			ItemsValue: 200, ServiceCharge: 20, Total: 220, Commission: 16,
			Payments: map[string]float64{"PIX": 220},
		},
		Trattoria: model.BrandTotals{
			ItemsValue: 100, ServiceCharge: 10, Total: 110, Commission: 8,
			Payments: map[string]float64{"DINHEIRO": 100, "CARTAO": 10},
		},
	}
	if err := st.CreateClosing(ctx, &c); err != nil {
		t.Fatalf("create closing: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("id should be assigned")
	}

	got, err := st.GetClosing(ctx, "user-1", c.ID)
	if err != nil {
		t.Fatalf("get closing: %v", err)
	}
	if got.Date != "2026-01-18" || got.Trattoria.Commission != 8 || got.Japa.Total != 220 {
		t.Fatalf("unexpected closing: %+v", got)
	}
	if got.Trattoria.Payments["DINHEIRO"] != 100 || len(got.Trattoria.Payments) != 2 {
		t.Fatalf("payments not decoded: %+v", got.Trattoria.Payments)
	}

	if _, err := st.GetClosing(ctx, "user-2", c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other tenant should not see the closing: %v", err)
	}
}

func TestStore_ClosingOnePerDay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	first := model.ClosingRecord{UserID: "user-1", Date: "2026-01-18"}
	if err := st.CreateClosing(ctx, &first); err != nil {
		t.Fatalf("create closing: %v", err)
	}

	dup := model.ClosingRecord{UserID: "user-1", Date: "2026-01-18"}
	if err := st.CreateClosing(ctx, &dup); !errors.Is(err, ErrClosingExists) {
		t.Fatalf("want ErrClosingExists got %v", err)
	}

	other := model.ClosingRecord{UserID: "user-2", Date: "2026-01-18"}
	if err := st.CreateClosing(ctx, &other); err != nil {
		t.Fatalf("another tenant may close the same day: %v", err)
	}
}

func TestStore_ListAndDeleteClosings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	for _, date := range []string{"2026-01-20", "2026-01-12", "2026-01-15", "2026-01-05"} {
		c := model.ClosingRecord{UserID: "user-1", Date: date}
		if err := st.CreateClosing(ctx, &c); err != nil {
			t.Fatalf("create %s: %v", date, err)
		}
	}

	week, err := st.ListClosings(ctx, ClosingQueryOptions{UserID: "user-1", From: strPtr("2026-01-12"), To: strPtr("2026-01-18")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(week) != 2 || week[0].Date != "2026-01-12" || week[1].Date != "2026-01-15" {
		t.Fatalf("unexpected week: %+v", week)
	}

	all, err := st.ListClosings(ctx, ClosingQueryOptions{UserID: "user-1"})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("want 4 got %d", len(all))
	}

	if err := st.DeleteClosing(ctx, "user-1", all[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.DeleteClosing(ctx, "user-1", all[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete want ErrNotFound got %v", err)
	}
}

func TestStore_StaffLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	ana := model.StaffMember{UserID: "user-1", Name: "Ana", Sector: model.SectorWaiter, Brand: model.BrandJapa, Active: true}
	bruno := model.StaffMember{UserID: "user-1", Name: "Bruno", Sector: model.SectorKitchen, Brand: model.BrandBoth, Active: true}
	for _, m := range []*model.StaffMember{&ana, &bruno} {
		if err := st.CreateStaff(ctx, m); err != nil {
			t.Fatalf("create staff: %v", err)
		}
	}

	brand := model.BrandTrattoria
	updated, err := st.UpdateStaff(ctx, "user-1", ana.ID, StaffUpdate{Brand: &brand})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Brand != model.BrandTrattoria || updated.Name != "Ana" || !updated.Active {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := st.DeactivateStaff(ctx, "user-1", bruno.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, err := st.ListStaff(ctx, "user-1", true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != ana.ID || active[0].Sector != model.SectorWaiter {
		t.Fatalf("unexpected active roster: %+v", active)
	}

	all, err := st.ListStaff(ctx, "user-1", false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("deactivated staff should remain on the roster: %+v", all)
	}

	if _, err := st.UpdateStaff(ctx, "user-2", ana.ID, StaffUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other tenant update want ErrNotFound got %v", err)
	}
}

func TestStore_SetPaidUpserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	m := model.StaffMember{UserID: "user-1", Name: "Carla", Sector: model.SectorAdmin, Brand: model.BrandBoth, Active: true}
	if err := st.CreateStaff(ctx, &m); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	first, err := st.SetPaid(ctx, "user-1", model.PaymentConfirmation{StaffID: m.ID, WeekStart: "2026-01-12", Amount: 12.5, Paid: true})
	if err != nil {
		t.Fatalf("set paid: %v", err)
	}
	second, err := st.SetPaid(ctx, "user-1", model.PaymentConfirmation{StaffID: m.ID, WeekStart: "2026-01-12", Amount: 12.5, Paid: false})
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("toggle should update the same record: %s vs %s", first.ID, second.ID)
	}

	list, err := st.ListConfirmations(ctx, "user-1", "2026-01-12", "2026-01-18")
	if err != nil {
		t.Fatalf("list confirmations: %v", err)
	}
	if len(list) != 1 || list[0].Paid {
		t.Fatalf("want a single unpaid confirmation got %+v", list)
	}

	if _, err := st.SetPaid(ctx, "user-2", model.PaymentConfirmation{StaffID: m.ID, WeekStart: "2026-01-12"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other tenant want ErrNotFound got %v", err)
	}
}

func TestStore_Expenses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	for _, e := range []model.Expense{
		{UserID: "user-1", Date: "2026-01-10", Description: "Gás", Amount: 120, Category: "Insumos"},
		{UserID: "user-1", Date: "2026-01-14", Description: "Peixe", Amount: 800, Category: "Fornecedores"},
	} {
		e := e
		if err := st.CreateExpense(ctx, &e); err != nil {
			t.Fatalf("create expense: %v", err)
		}
	}

	got, err := st.ListExpenses(ctx, "user-1", strPtr("2026-01-12"), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Description != "Peixe" {
		t.Fatalf("unexpected expenses: %+v", got)
	}

	if err := st.DeleteExpense(ctx, "user-1", got[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.DeleteExpense(ctx, "user-1", got[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestStore_ImportLogs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	l := model.ImportLog{UserID: "user-1", Filename: "fechamento.xlsx", FileSize: 2048}
	if err := st.CreateImportLog(ctx, &l); err != nil {
		t.Fatalf("create: %v", err)
	}

	l.Status = model.ImportStatusDone
	l.Format = "xlsx"
	l.TotalRows = 40
	l.ValidRows = 38
	if err := st.UpdateImportLog(ctx, &l); err != nil {
		t.Fatalf("update: %v", err)
	}

	logs, err := st.ListImportLogs(ctx, "user-1", 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != model.ImportStatusDone || logs[0].ValidRows != 38 || logs[0].CompletedAt == nil {
		t.Fatalf("unexpected logs: %+v", logs)
	}
}

func TestStore_Rebind(t *testing.T) {
	t.Parallel()

	pg := &Store{driver: DriverPostgres}
	if got := pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"); got != "SELECT * FROM t WHERE a = $1 AND b = $2" {
		t.Fatalf("unexpected rebind: %s", got)
	}

	lite := &Store{driver: DriverSQLite}
	if got := lite.rebind("a = ?"); got != "a = ?" {
		t.Fatalf("sqlite query should be untouched: %s", got)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open("mysql", "dsn"); err == nil {
		t.Fatalf("want error for unsupported driver")
	}
}
