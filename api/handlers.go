/*
handlers.go - HTTP API handlers for the benefit tracker

ENDPOINTS:
  Catalog:
    GET    /api/catalog                                   List benefits

  Cards:
    POST   /api/cards                                     Create card
    GET    /api/cards/{cardID}                            Get card
    PUT    /api/cards/{cardID}/anchor                     Change anchor (resets usage)

  Windows and usage:
    GET    /api/cards/{cardID}/benefits/{benefitID}/windows?year=YYYY
    POST   /api/cards/{cardID}/benefits/{benefitID}/usage   Add amount to a window
    PUT    /api/cards/{cardID}/benefits/{benefitID}/full    Set "fully used" flag
    PUT    /api/cards/{cardID}/benefits/{benefitID}/ignore  Set ignore flag

  Dashboard:
    GET    /api/users/{userID}/dashboard

REQUEST FLOW:
  1. Parse HTTP request
  2. Call benefits.Service
  3. Serialize response
  4. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Card or benefit not found, benefit not on card
  - 409: Duplicate card ID
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The user ID in the dashboard path is trusted.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *benefits.Service
	Logger  *slog.Logger
}

// NewHandler creates a new handler around a service.
func NewHandler(svc *benefits.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Service: svc, Logger: logger}
}

// =============================================================================
// HEALTH AND CATALOG
// =============================================================================

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.Catalog.Benefits(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dto := CatalogDTO{Benefits: make([]BenefitDTO, 0, len(list))}
	for _, b := range list {
		dto.Benefits = append(dto.Benefits, toBenefitDTO(b))
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// CARD ENDPOINTS
// =============================================================================

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	anchor, err := engine.ParseAnchor(req.AnchorDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid anchor_date", err)
		return
	}

	card := benefits.Card{
		ID:     benefits.CardID(req.ID),
		UserID: benefits.UserID(req.UserID),
		Name:   req.Name,
		Anchor: anchor,
	}
	for _, id := range req.BenefitIDs {
		card.BenefitIDs = append(card.BenefitIDs, benefits.BenefitID(id))
	}

	card, err = h.Service.CreateCard(r.Context(), card)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCardDTO(card))
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.Service.Card(r.Context(), cardID(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCardDTO(card))
}

func (h *Handler) UpdateAnchor(w http.ResponseWriter, r *http.Request) {
	var req UpdateAnchorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	anchor, err := engine.ParseAnchor(req.AnchorDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid anchor_date", err)
		return
	}

	card, err := h.Service.UpdateAnchor(r.Context(), cardID(r), anchor)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCardDTO(card))
}

// =============================================================================
// WINDOW AND USAGE ENDPOINTS
// =============================================================================

// ListWindows returns every window overlapping ?year= (default: this year).
func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	year := h.Service.Now().Year()
	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 || y > 9999 {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = y
	}

	states, err := h.Service.Windows(r.Context(), cardID(r), benefitID(r), year)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WindowsResponse{
		CardID:    string(cardID(r)),
		BenefitID: string(benefitID(r)),
		Year:      year,
		Windows:   toWindowDTOs(states),
	})
}

func (h *Handler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	var req RecordUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	st, err := h.Service.RecordUsage(r.Context(), cardID(r), benefitID(r), engine.Key(req.WindowKey), req.Amount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWindowDTO(st.Window, st.Usage))
}

func (h *Handler) MarkFull(w http.ResponseWriter, r *http.Request) {
	var req MarkFullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	st, err := h.Service.MarkFull(r.Context(), cardID(r), benefitID(r), engine.Key(req.WindowKey), req.IsFull)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWindowDTO(st.Window, st.Usage))
}

func (h *Handler) SetIgnored(w http.ResponseWriter, r *http.Request) {
	var req SetIgnoredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Service.SetIgnored(r.Context(), cardID(r), benefitID(r), req.IsIgnored); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"card_id":    cardID(r),
		"benefit_id": benefitID(r),
		"is_ignored": req.IsIgnored,
	})
}

// =============================================================================
// DASHBOARD
// =============================================================================

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	sum, err := h.Service.Dashboard(r.Context(), benefits.UserID(userID))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(userID, sum))
}

// =============================================================================
// HELPERS
// =============================================================================

func cardID(r *http.Request) benefits.CardID {
	return benefits.CardID(chi.URLParam(r, "cardID"))
}

func benefitID(r *http.Request) benefits.BenefitID {
	return benefits.BenefitID(chi.URLParam(r, "benefitID"))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps domain errors to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case benefits.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, benefits.ErrDuplicateCard):
		writeError(w, http.StatusConflict, "Card already exists", err)
	case benefits.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		h.Logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}
