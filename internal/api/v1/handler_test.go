package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luc4spas/erp-joy-maker/internal/importer"
	"github.com/luc4spas/erp-joy-maker/internal/middleware"
	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/rateio"
	"github.com/luc4spas/erp-joy-maker/internal/store"
)

const closingCSV = `data;tipovenda;valor;acrescimo;FR Valor;FR Descricao
18/01/2026;Mesa 12;100,00;10,00;60,00;DINHEIRO
;;;;-10,00;TROCO
;;;;50,00;PIX
18/01/2026;Mesa 305;200,00;20,00;220,00;CARTAO
`

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	handler *Handler
	store   *store.Store
}

func newTestServer(t *testing.T, userID string) *testServer {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "fechamento.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	h := NewHandler(st, nil, rateio.DefaultPolicy())
	h.now = func() time.Time { return time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC) }

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.StaticUser(userID))
	h.RegisterRoutes(api)

	return &testServer{router: r, handler: h, store: st}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, filename, content string, save bool) []importer.ProgressEvent {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte(content))
	if save {
		_ = mw.WriteField("save", "true")
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("import status %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var events []importer.ProgressEvent
	for _, line := range strings.Split(w.Body.String(), "\n") {
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var evt importer.ProgressEvent
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			t.Fatalf("decode event %q: %v", payload, err)
		}
		events = append(events, evt)
	}
	return events
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestAPI_WeeklyFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, "user-1")

	events := s.upload(t, "caixa.csv", closingCSV, true)
	if len(events) == 0 || events[len(events)-1].Type != importer.EventDone {
		t.Fatalf("import should finish with done: %+v", events)
	}

	staff := []struct {
		name   string
		sector model.Sector
		brand  model.Brand
	}{
		{"Ana", model.SectorWaiter, model.BrandTrattoria},
		{"Bruno", model.SectorKitchen, model.BrandBoth},
		{"Caio", model.SectorAdmin, model.BrandBoth},
	}
	ids := map[string]string{}
	for _, m := range staff {
		w := s.do(t, http.MethodPost, "/api/staff", gin.H{"name": m.name, "sector": m.sector, "brand": m.brand})
		if w.Code != http.StatusCreated {
			t.Fatalf("create staff %s: %d %s", m.name, w.Code, w.Body.String())
		}
		ids[m.name] = decode[model.StaffMember](t, w).ID
	}

	w := s.do(t, http.MethodGet, "/api/rateio?date=2026-01-14", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rateio: %d %s", w.Code, w.Body.String())
	}
	res := decode[rateioResponse](t, w)
	if res.WeekStart != "2026-01-12" || res.WeekEnd != "2026-01-18" || res.ClosingDays != 1 {
		t.Fatalf("unexpected week: %+v", res.Result)
	}
	if res.CommissionPool.Trattoria != 8 || res.CommissionPool.Japa != 16 {
		t.Fatalf("unexpected pool: %+v", res.CommissionPool)
	}
	if len(res.Payouts) != 3 || res.Distributed != 14.5 {
		t.Fatalf("unexpected payouts: %+v distributed=%v", res.Payouts, res.Distributed)
	}
	wantOrder := []struct {
		name  string
		total float64
	}{{"Bruno", 8.25}, {"Ana", 4.75}, {"Caio", 1.5}}
	for i, want := range wantOrder {
		if res.Payouts[i].Name != want.name || res.Payouts[i].Total != want.total {
			t.Fatalf("payout %d: want %s %.2f got %+v", i, want.name, want.total, res.Payouts[i])
		}
	}

	// a mid-week date is normalized to the week start
	w = s.do(t, http.MethodPost, "/api/rateio/payments", gin.H{"staffId": ids["Ana"], "weekStart": "2026-01-15", "amount": 4.75, "paid": true})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle paid: %d %s", w.Code, w.Body.String())
	}
	if got := decode[model.PaymentConfirmation](t, w); got.WeekStart != "2026-01-12" || !got.Paid {
		t.Fatalf("unexpected confirmation: %+v", got)
	}

	w = s.do(t, http.MethodGet, "/api/rateio/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export rateio: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "rateio_2026-01-12.csv") {
		t.Fatalf("unexpected disposition %q", w.Header().Get("Content-Disposition"))
	}
	if !strings.Contains(w.Body.String(), "2026-01-12,Ana,Garçom,Trattoria,0.00,4.75,4.75,1,sim") {
		t.Fatalf("paid payout missing from csv:\n%s", w.Body.String())
	}

	// current reflects writes made after the last computation
	w = s.do(t, http.MethodPost, "/api/staff", gin.H{"name": "Davi", "sector": model.SectorWaiter, "brand": model.BrandTrattoria})
	if w.Code != http.StatusCreated {
		t.Fatalf("create staff Davi: %d %s", w.Code, w.Body.String())
	}

	// exporting another week leaves the current week alone
	w = s.do(t, http.MethodGet, "/api/rateio/export?date=2026-01-21", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "rateio_2026-01-19.csv") {
		t.Fatalf("export next week: %d %q", w.Code, w.Header().Get("Content-Disposition"))
	}

	w = s.do(t, http.MethodGet, "/api/rateio/current", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("current rateio: %d", w.Code)
	}
	current := decode[rateioResponse](t, w)
	if current.WeekStart != "2026-01-12" {
		t.Fatalf("current should reuse the last requested week: %+v", current.Result)
	}
	if len(current.Payouts) != 4 {
		t.Fatalf("current should include the new waiter: %+v", current.Payouts)
	}
	var waiters *rateio.Cell
	for i := range current.Cells {
		if current.Cells[i].Sector == model.SectorWaiter && current.Cells[i].Brand == model.BrandTrattoria {
			waiters = &current.Cells[i]
		}
	}
	if waiters == nil || waiters.Headcount != 2 {
		t.Fatalf("want 2 Trattoria waiters got %+v", waiters)
	}
	for _, p := range current.Payouts {
		if p.Name == "Ana" && !p.Paid {
			t.Fatalf("Ana's payment should be reflected: %+v", p)
		}
	}

	w = s.do(t, http.MethodGet, "/api/summary?from=2026-01-01&to=2026-01-31", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: %d %s", w.Code, w.Body.String())
	}

	// the imported day already has a closing
	date := "2026-01-18"
	w = s.do(t, http.MethodPost, "/api/closings", model.Batch{ReportDate: &date})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate closing: want 409 got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/imports", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "caixa.csv") {
		t.Fatalf("imports: %d %s", w.Code, w.Body.String())
	}
}

func TestAPI_RateioWithoutClosings(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, "user-1")
	w := s.do(t, http.MethodGet, "/api/rateio", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rateio: %d %s", w.Code, w.Body.String())
	}
	res := decode[rateioResponse](t, w)
	if res.WeekStart != "2026-01-12" || res.ClosingDays != 0 || len(res.Payouts) != 0 || res.Distributed != 0 {
		t.Fatalf("unexpected empty week: %+v", res)
	}
}

func TestAPI_ClosingsCRUD(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, "user-1")
	date := "2026-01-13"
	batch := model.Batch{
		ReportDate: &date,
		Trattoria: model.RestaurantSummary{
			TotalItemsValue:    100,
			TotalServiceCharge: 10,
			TotalGeneral:       110,
			WaiterCommission:   8,
			ByPaymentMethod:    map[string]model.PaymentMethodAggregate{},
		},
		Japa: model.RestaurantSummary{ByPaymentMethod: map[string]model.PaymentMethodAggregate{}},
	}

	w := s.do(t, http.MethodPost, "/api/closings", batch)
	if w.Code != http.StatusCreated {
		t.Fatalf("create closing: %d %s", w.Code, w.Body.String())
	}
	created := decode[model.ClosingRecord](t, w)

	w = s.do(t, http.MethodGet, "/api/closings/"+created.ID, nil)
	if w.Code != http.StatusOK || decode[model.ClosingRecord](t, w).TotalGeneral != 110 {
		t.Fatalf("get closing: %d %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/closings/export?from=2026-01-01", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), "fechamentos-desde-2026-01-01.xlsx") {
		t.Fatalf("export closings: %d %v", w.Code, w.Header())
	}

	w = s.do(t, http.MethodDelete, "/api/closings/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete closing: %d", w.Code)
	}
	w = s.do(t, http.MethodGet, "/api/closings/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted closing: want 404 got %d", w.Code)
	}
}

func TestAPI_TenantIsolation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, "user-1")
	member := model.StaffMember{UserID: "user-2", Name: "Outro", Sector: model.SectorWaiter, Brand: model.BrandJapa, Active: true}
	if err := s.store.CreateStaff(context.Background(), &member); err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	w := s.do(t, http.MethodPost, "/api/rateio/payments", gin.H{"staffId": member.ID, "weekStart": "2026-01-12", "paid": true})
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign staff: want 404 got %d", w.Code)
	}
	w = s.do(t, http.MethodGet, "/api/staff", nil)
	if strings.Contains(w.Body.String(), "Outro") {
		t.Fatalf("foreign staff leaked: %s", w.Body.String())
	}
}

func TestAPI_Validation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, "user-1")
	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/rateio?date=16/01/2026", nil},
		{http.MethodGet, "/api/rateio/export?date=bad", nil},
		{http.MethodGet, "/api/closings?from=2026-13-01", nil},
		{http.MethodGet, "/api/summary?to=yesterday", nil},
		{http.MethodPost, "/api/rateio/payments", gin.H{"staffId": "x", "weekStart": "soon"}},
		{http.MethodPost, "/api/rateio/payments", gin.H{"weekStart": "2026-01-12"}},
		{http.MethodPost, "/api/staff", gin.H{"name": "Ana", "sector": "Chef", "brand": "Japa"}},
		{http.MethodPost, "/api/staff", gin.H{"name": " ", "sector": "Cozinha", "brand": "Japa"}},
		{http.MethodPost, "/api/expenses", gin.H{"date": "2026-01-12", "description": "gás", "amount": 0}},
		{http.MethodPost, "/api/expenses", gin.H{"date": "12/01/2026", "description": "gás", "amount": 10}},
	}
	for _, tc := range cases {
		w := s.do(t, tc.method, tc.path, tc.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s %s: want 400 got %d (%s)", tc.method, tc.path, w.Code, w.Body.String())
		}
	}
}

func TestAPI_Expenses(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, "user-1")
	w := s.do(t, http.MethodPost, "/api/expenses", gin.H{"date": "2026-01-12", "description": "gás", "amount": 120.456, "category": "cozinha"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create expense: %d %s", w.Code, w.Body.String())
	}
	expense := decode[model.Expense](t, w)
	if expense.Amount != 120.46 {
		t.Fatalf("amount should be rounded to cents: %v", expense.Amount)
	}

	w = s.do(t, http.MethodGet, "/api/summary", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "120.46") {
		t.Fatalf("summary should include the expense: %s", w.Body.String())
	}

	w = s.do(t, http.MethodDelete, "/api/expenses/"+expense.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete expense: %d", w.Code)
	}
}
