/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts go out as strings with two decimal places ("16.67") so clients
  never see binary floating point. Request amounts accept either a JSON
  number or a string.

DATES:
  Window boundaries and anchors are YYYY-MM-DD. Window "end" is exclusive;
  "last_day" is the final day inside the window.

VALIDATION:
  Validation is done in handlers and the benefits service, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

// =============================================================================
// CARDS
// =============================================================================

type CardDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	AnchorDate  string    `json:"anchor_date"` // YYYY-MM-DD or "unknown"
	AnchorKnown bool      `json:"anchor_known"`
	BenefitIDs  []string  `json:"benefit_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateCardRequest struct {
	ID         string   `json:"id,omitempty"` // generated when empty
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	AnchorDate string   `json:"anchor_date,omitempty"` // empty or "unknown" when not known
	BenefitIDs []string `json:"benefit_ids"`
}

type UpdateAnchorRequest struct {
	AnchorDate string `json:"anchor_date"`
}

// =============================================================================
// CATALOG
// =============================================================================

type BenefitDTO struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Type            string            `json:"type"`
	Frequency       string            `json:"frequency"`
	AnnualCeiling   string            `json:"annual_ceiling"`
	WindowOverrides map[string]string `json:"window_overrides,omitempty"`
}

type CatalogDTO struct {
	Benefits []BenefitDTO `json:"benefits"`
}

// =============================================================================
// WINDOWS AND USAGE
// =============================================================================

type WindowDTO struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Start     string `json:"start"`
	End       string `json:"end"`
	LastDay   string `json:"last_day"`
	Available bool   `json:"available"`
	Current   bool   `json:"current"`
	Ceiling   string `json:"ceiling"`
	Used      string `json:"used"`
	Remaining string `json:"remaining"`
	Status    string `json:"status"`
}

type WindowsResponse struct {
	CardID    string      `json:"card_id"`
	BenefitID string      `json:"benefit_id"`
	Year      int         `json:"year"`
	Windows   []WindowDTO `json:"windows"`
}

type RecordUsageRequest struct {
	WindowKey string          `json:"window_key,omitempty"` // empty: current window
	Amount    decimal.Decimal `json:"amount"`
}

type MarkFullRequest struct {
	WindowKey string `json:"window_key,omitempty"`
	IsFull    bool   `json:"is_full"`
}

type SetIgnoredRequest struct {
	IsIgnored bool `json:"is_ignored"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

type BenefitViewDTO struct {
	CardID        string    `json:"card_id"`
	CardName      string    `json:"card_name"`
	BenefitID     string    `json:"benefit_id"`
	BenefitName   string    `json:"benefit_name"`
	Type          string    `json:"type"`
	Frequency     string    `json:"frequency"`
	Window        WindowDTO `json:"window"`
	YearToDate    string    `json:"ytd_used"`
	CycleCeiling  string    `json:"cycle_ceiling"`
	DaysRemaining int       `json:"days_remaining"`
	IsIgnored     bool      `json:"is_ignored"`
	Bucket        string    `json:"bucket"`
}

type DashboardDTO struct {
	UserID              string           `json:"user_id"`
	AsOf                time.Time        `json:"as_of"`
	TotalPotentialValue string           `json:"total_potential_value"`
	TotalExtractedValue string           `json:"total_extracted_value"`
	NeedsAction         []BenefitViewDTO `json:"needs_action"`
	Full                []BenefitViewDTO `json:"full"`
	Ignored             []BenefitViewDTO `json:"ignored"`
}

// ErrorResponse is returned for all error cases.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) string { return d.StringFixed(engine.CeilingPlaces) }

func dateString(t time.Time) string { return t.Format(engine.AnchorLayout) }

func toCardDTO(c benefits.Card) CardDTO {
	ids := make([]string, 0, len(c.BenefitIDs))
	for _, id := range c.BenefitIDs {
		ids = append(ids, string(id))
	}
	return CardDTO{
		ID:          string(c.ID),
		UserID:      string(c.UserID),
		Name:        c.Name,
		AnchorDate:  c.Anchor.String(),
		AnchorKnown: c.Anchor.IsKnown(),
		BenefitIDs:  ids,
		CreatedAt:   c.CreatedAt,
	}
}

func toBenefitDTO(b benefits.Benefit) BenefitDTO {
	dto := BenefitDTO{
		ID:            string(b.ID),
		Name:          b.Name,
		Description:   b.Description,
		Type:          string(b.Type),
		Frequency:     string(b.Config.Frequency),
		AnnualCeiling: money(b.Config.AnnualCeiling),
	}
	if len(b.Config.Overrides) > 0 {
		dto.WindowOverrides = make(map[string]string, len(b.Config.Overrides))
		for k, v := range b.Config.Overrides {
			dto.WindowOverrides[string(k)] = money(v)
		}
	}
	return dto
}

func toWindowDTO(w engine.Window, u engine.UsageState) WindowDTO {
	return WindowDTO{
		Key:       string(w.Key),
		Label:     w.Label,
		Start:     dateString(w.Start),
		End:       dateString(w.End),
		LastDay:   dateString(w.LastDay()),
		Available: w.Available,
		Current:   w.Current,
		Ceiling:   money(w.Ceiling),
		Used:      money(u.Used),
		Remaining: money(u.Remaining),
		Status:    u.Status.String(),
	}
}

func toWindowDTOs(states []benefits.WindowState) []WindowDTO {
	out := make([]WindowDTO, 0, len(states))
	for _, s := range states {
		out = append(out, toWindowDTO(s.Window, s.Usage))
	}
	return out
}

func toBenefitViewDTOs(views []benefits.BenefitView) []BenefitViewDTO {
	out := make([]BenefitViewDTO, 0, len(views))
	for _, v := range views {
		out = append(out, BenefitViewDTO{
			CardID:        string(v.CardID),
			CardName:      v.CardName,
			BenefitID:     string(v.BenefitID),
			BenefitName:   v.BenefitName,
			Type:          string(v.Type),
			Frequency:     string(v.Frequency),
			Window:        toWindowDTO(v.Window, v.Usage),
			YearToDate:    money(v.YearToDate),
			CycleCeiling:  money(v.CycleCeiling),
			DaysRemaining: v.DaysRemaining,
			IsIgnored:     v.Ignored,
			Bucket:        string(v.Bucket),
		})
	}
	return out
}

func toDashboardDTO(userID string, s benefits.Summary) DashboardDTO {
	return DashboardDTO{
		UserID:              userID,
		AsOf:                s.AsOf,
		TotalPotentialValue: money(s.TotalPotentialValue),
		TotalExtractedValue: money(s.TotalExtractedValue),
		NeedsAction:         toBenefitViewDTOs(s.NeedsAction),
		Full:                toBenefitViewDTOs(s.Full),
		Ignored:             toBenefitViewDTOs(s.Ignored),
	}
}
