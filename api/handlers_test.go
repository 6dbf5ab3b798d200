/*
handlers_test.go - HTTP tests for the API handlers

Each test builds the full router over an in-memory store with a fixed
clock, then drives it with httptest.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/engine"
	"github.com/colinjianingxie/walletfreak-sub000/store/memory"
)

var testNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testCatalog(t *testing.T) *benefits.StaticCatalog {
	t.Helper()
	conf := func(annual int64, f engine.Frequency) engine.Config {
		return engine.Config{AnnualCeiling: decimal.NewFromInt(annual), Frequency: f}
	}
	cat, err := benefits.NewStaticCatalog([]benefits.Benefit{
		{ID: "uber", Name: "Uber Cash", Type: benefits.TypeCredit, Config: conf(120, engine.Monthly)},
		{ID: "saks", Name: "Saks", Type: benefits.TypeCredit, Config: conf(100, engine.SemiAnnual)},
		{ID: "ge", Name: "Global Entry", Type: benefits.TypeCredit, Config: conf(120, engine.Quadrennial)},
	})
	require.NoError(t, err)
	return cat
}

func setupRouter(t *testing.T) (*chi.Mux, *benefits.Service) {
	t.Helper()
	st := memory.New()
	svc := benefits.NewService(testCatalog(t), st, st)
	svc.Clock = engine.FixedClock{At: testNow}
	svc.Logger = quietLogger()

	_, err := svc.CreateCard(context.Background(), benefits.Card{
		ID:         "plat",
		UserID:     "u1",
		Name:       "Platinum",
		Anchor:     engine.KnownAnchor(time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)),
		BenefitIDs: []benefits.BenefitID{"uber", "saks", "ge"},
	})
	require.NoError(t, err)

	return NewRouter(NewHandler(svc, quietLogger()), RouterOptions{}), svc
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndCatalog(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cat := decode[CatalogDTO](t, rec)
	require.Len(t, cat.Benefits, 3)
	assert.Equal(t, "ge", cat.Benefits[0].ID)
	assert.Equal(t, "quadrennial", cat.Benefits[0].Frequency)
	assert.Equal(t, "120.00", cat.Benefits[0].AnnualCeiling)
}

func TestCreateAndGetCard(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/cards", CreateCardRequest{
		ID:         "gold",
		UserID:     "u1",
		Name:       "Gold",
		BenefitIDs: []string{"uber"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decode[CardDTO](t, rec)
	assert.Equal(t, "unknown", card.AnchorDate)
	assert.False(t, card.AnchorKnown)

	rec = do(t, router, http.MethodGet, "/api/cards/gold", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Gold", decode[CardDTO](t, rec).Name)

	tests := []struct {
		name   string
		req    CreateCardRequest
		status int
	}{
		{"duplicate", CreateCardRequest{ID: "gold", UserID: "u1"}, http.StatusConflict},
		{"unknown benefit", CreateCardRequest{ID: "x", UserID: "u1", BenefitIDs: []string{"nope"}}, http.StatusNotFound},
		{"bad anchor", CreateCardRequest{ID: "y", UserID: "u1", AnchorDate: "06/15/2021"}, http.StatusBadRequest},
		{"missing user", CreateCardRequest{ID: "z"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/cards", tt.req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec = do(t, router, http.MethodGet, "/api/cards/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordUsage(t *testing.T) {
	router, _ := setupRouter(t)

	// GIVEN: Uber Cash at $10/month
	// WHEN: $4 is recorded without a window key
	rec := do(t, router, http.MethodPost, "/api/cards/plat/benefits/uber/usage", map[string]any{"amount": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: it lands in the current month
	win := decode[WindowDTO](t, rec)
	assert.Equal(t, "2024_05", win.Key)
	assert.Equal(t, "May 2024", win.Label)
	assert.Equal(t, "4.00", win.Used)
	assert.Equal(t, "6.00", win.Remaining)
	assert.Equal(t, "partial", win.Status)
	assert.Equal(t, "2024-06-01", win.End)
	assert.Equal(t, "2024-05-31", win.LastDay)

	// String amounts and explicit keys work too.
	rec = do(t, router, http.MethodPost, "/api/cards/plat/benefits/uber/usage", map[string]any{"window_key": "2024_05", "amount": "6"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "full", decode[WindowDTO](t, rec).Status)
}

func TestRecordUsage_Errors(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"zero amount", "/api/cards/plat/benefits/uber/usage", map[string]any{"amount": 0}, http.StatusBadRequest},
		{"wrong key shape", "/api/cards/plat/benefits/uber/usage", map[string]any{"window_key": "2024_H1", "amount": 1}, http.StatusBadRequest},
		{"off-grid block", "/api/cards/plat/benefits/ge/usage", map[string]any{"window_key": "2022_2026", "amount": 1}, http.StatusBadRequest},
		{"unknown card", "/api/cards/nope/benefits/uber/usage", map[string]any{"amount": 1}, http.StatusNotFound},
		{"benefit not on card", "/api/cards/plat/benefits/other/usage", map[string]any{"amount": 1}, http.StatusNotFound},
		{"bad body", "/api/cards/plat/benefits/uber/usage", "not an object", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestListWindows(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/cards/plat/benefits/saks/windows?year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[WindowsResponse](t, rec)
	require.Len(t, resp.Windows, 2)
	assert.Equal(t, "2024_H1", resp.Windows[0].Key)
	assert.True(t, resp.Windows[0].Current)
	assert.Equal(t, "50.00", resp.Windows[0].Ceiling)
	assert.Equal(t, "Jul-Dec 2024", resp.Windows[1].Label)

	// Defaults to the current year.
	rec = do(t, router, http.MethodGet, "/api/cards/plat/benefits/uber/windows", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[WindowsResponse](t, rec)
	assert.Equal(t, 2024, resp.Year)
	assert.Len(t, resp.Windows, 12)

	rec = do(t, router, http.MethodGet, "/api/cards/plat/benefits/uber/windows?year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkFullAndIgnore(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodPut, "/api/cards/plat/benefits/saks/full", MarkFullRequest{IsFull: true})
	require.Equal(t, http.StatusOK, rec.Code)
	win := decode[WindowDTO](t, rec)
	assert.Equal(t, "2024_H1", win.Key)
	assert.Equal(t, "full", win.Status)
	assert.Equal(t, "0.00", win.Remaining)

	rec = do(t, router, http.MethodPut, "/api/cards/plat/benefits/uber/ignore", SetIgnoredRequest{IsIgnored: true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/users/u1/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[DashboardDTO](t, rec)

	require.Len(t, dash.Ignored, 1)
	assert.Equal(t, "uber", dash.Ignored[0].BenefitID)
	require.Len(t, dash.Full, 1)
	assert.Equal(t, "saks", dash.Full[0].BenefitID)
	require.Len(t, dash.NeedsAction, 1)
	assert.Equal(t, "ge", dash.NeedsAction[0].BenefitID)
	// Anchor June 2021: blocks run 2021-2025, 2025-2029.
	assert.Equal(t, "2021_2025", dash.NeedsAction[0].Window.Key)

	// saks 100 + ge 120; uber is ignored.
	assert.Equal(t, "220.00", dash.TotalPotentialValue)
	assert.Equal(t, "0.00", dash.TotalExtractedValue)
}

func TestUpdateAnchor(t *testing.T) {
	router, svc := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/api/cards/plat/benefits/uber/usage", map[string]any{"amount": 4})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/cards/plat/anchor", UpdateAnchorRequest{AnchorDate: "2023-02-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2023-02-01", decode[CardDTO](t, rec).AnchorDate)

	usage, err := svc.Usage.Usage(context.Background(), "plat", "uber")
	require.NoError(t, err)
	assert.Empty(t, usage)

	rec = do(t, router, http.MethodPut, "/api/cards/plat/anchor", UpdateAnchorRequest{AnchorDate: "yesterday"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard_UnknownUser(t *testing.T) {
	router, _ := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/api/users/nobody/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[DashboardDTO](t, rec)
	assert.Empty(t, dash.NeedsAction)
	assert.Equal(t, "0.00", dash.TotalPotentialValue)
}
