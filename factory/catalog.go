/*
Package factory converts catalog documents into benefits.Benefit values.

PURPOSE:
  Benefit definitions are data, not code. A catalog file (YAML or JSON)
  lists every benefit with its annual ceiling, frequency, and optional
  per-window ceiling overrides. The factory validates each entry and
  produces engine.Config values the window engine can evaluate.

SCHEMA (YAML):
  benefits:
    - id: amex-plat-uber
      name: Uber Cash
      type: credit
      annual_ceiling: 200
      frequency: monthly
      window_overrides:
        "2024_12": 35

STRICT MODE:
  Strict loading rejects unknown frequencies (*engine.UnknownFrequencyError)
  and override keys whose shape can never occur for the benefit's
  frequency (*InvalidOverrideError). Non-strict loading logs a warning,
  falls back to the annual calendar policy for unknown frequencies, and
  keeps unmatched overrides (they never apply).

USAGE:
  loader := factory.NewLoader(true, logger)
  catalog, err := loader.LoadFile("configs/catalog.yaml")

SEE ALSO:
  - engine/config.go: Config and ceiling resolution
  - benefits/catalog.go: StaticCatalog
*/
package factory

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/colinjianingxie/walletfreak-sub000/benefits"
	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

//go:embed defaults.yaml
var defaultCatalog []byte

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// CatalogDoc is the on-disk catalog document.
type CatalogDoc struct {
	Benefits []BenefitDoc `json:"benefits" yaml:"benefits"`
}

// BenefitDoc is one catalog entry.
type BenefitDoc struct {
	ID              string            `json:"id" yaml:"id"`
	Name            string            `json:"name" yaml:"name"`
	Description     string            `json:"description,omitempty" yaml:"description,omitempty"`
	Type            string            `json:"type,omitempty" yaml:"type,omitempty"` // credit (default), perk, insurance
	AnnualCeiling   Amount            `json:"annual_ceiling" yaml:"annual_ceiling"`
	Frequency       string            `json:"frequency" yaml:"frequency"`
	WindowOverrides map[string]Amount `json:"window_overrides,omitempty" yaml:"window_overrides,omitempty"`
}

// Amount is a decimal that decodes from YAML and JSON numbers or strings.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalYAML(n *yaml.Node) error {
	d, err := decimal.NewFromString(strings.TrimSpace(n.Value))
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q", n.Line, n.Value)
	}
	a.Decimal = d
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrInvalidCatalog wraps structural problems in a catalog document.
var ErrInvalidCatalog = errors.New("invalid catalog")

// InvalidOverrideError reports an override key that no window of the
// benefit's frequency can ever have.
type InvalidOverrideError struct {
	BenefitID string
	Key       string
	Frequency engine.Frequency
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("benefit %s: override key %q does not match %s windows", e.BenefitID, e.Key, e.Frequency)
}

// =============================================================================
// LOADER
// =============================================================================

// Format selects the document decoder.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks a format from a file extension. Anything that isn't
// .json is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Loader builds catalogs from documents.
type Loader struct {
	Strict bool
	Logger *slog.Logger
}

// NewLoader creates a loader. A nil logger uses slog.Default().
func NewLoader(strict bool, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{Strict: strict, Logger: logger}
}

// LoadFile reads a catalog file. An empty path loads the built-in catalog.
func (l *Loader) LoadFile(path string) (*benefits.StaticCatalog, error) {
	if path == "" {
		return l.Load(defaultCatalog, FormatYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return l.Load(data, FormatOf(path))
}

// Load parses and indexes a catalog document.
func (l *Loader) Load(data []byte, format Format) (*benefits.StaticCatalog, error) {
	list, err := l.Parse(data, format)
	if err != nil {
		return nil, err
	}
	return benefits.NewStaticCatalog(list)
}

// Parse decodes a document and builds its benefits.
func (l *Loader) Parse(data []byte, format Format) ([]benefits.Benefit, error) {
	var doc CatalogDoc
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
	}
	return l.Build(doc)
}

// Build converts every entry, stopping at the first error.
func (l *Loader) Build(doc CatalogDoc) ([]benefits.Benefit, error) {
	out := make([]benefits.Benefit, 0, len(doc.Benefits))
	for _, d := range doc.Benefits {
		b, err := l.BuildBenefit(d)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// BuildBenefit validates one entry and converts it.
func (l *Loader) BuildBenefit(d BenefitDoc) (benefits.Benefit, error) {
	if d.ID == "" {
		return benefits.Benefit{}, fmt.Errorf("%w: benefit %q has no id", ErrInvalidCatalog, d.Name)
	}
	if d.AnnualCeiling.IsNegative() {
		return benefits.Benefit{}, fmt.Errorf("%w: benefit %s: negative annual_ceiling", ErrInvalidCatalog, d.ID)
	}

	freq, err := l.frequency(d)
	if err != nil {
		return benefits.Benefit{}, err
	}
	typ, err := l.benefitType(d)
	if err != nil {
		return benefits.Benefit{}, err
	}

	cfg := engine.Config{
		AnnualCeiling: d.AnnualCeiling.Decimal,
		Frequency:     freq,
	}
	if len(d.WindowOverrides) > 0 {
		cfg.Overrides = make(map[engine.Key]decimal.Decimal, len(d.WindowOverrides))
	}
	for k, v := range d.WindowOverrides {
		if v.IsNegative() {
			return benefits.Benefit{}, fmt.Errorf("%w: benefit %s: negative override for %s", ErrInvalidCatalog, d.ID, k)
		}
		if !engine.ValidKey(freq, engine.Key(k)) {
			oerr := &InvalidOverrideError{BenefitID: d.ID, Key: k, Frequency: freq}
			if l.Strict {
				return benefits.Benefit{}, oerr
			}
			l.Logger.Warn("override never applies", "benefit_id", d.ID, "error", oerr)
		}
		cfg.Overrides[engine.Key(k)] = v.Decimal
	}

	return benefits.Benefit{
		ID:          benefits.BenefitID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Type:        typ,
		Config:      cfg,
	}, nil
}

func (l *Loader) frequency(d BenefitDoc) (engine.Frequency, error) {
	freq, err := engine.ParseFrequency(d.Frequency)
	if err == nil {
		return freq, nil
	}
	if l.Strict {
		return "", fmt.Errorf("benefit %s: %w", d.ID, err)
	}
	l.Logger.Warn("unknown frequency, using annual calendar", "benefit_id", d.ID, "frequency", d.Frequency)
	return engine.NormalizeFrequency(d.Frequency), nil
}

func (l *Loader) benefitType(d BenefitDoc) (benefits.BenefitType, error) {
	switch t := benefits.BenefitType(strings.ToLower(strings.TrimSpace(d.Type))); t {
	case "":
		return benefits.TypeCredit, nil
	case benefits.TypeCredit, benefits.TypePerk, benefits.TypeInsurance:
		return t, nil
	default:
		if l.Strict {
			return "", fmt.Errorf("%w: benefit %s: unknown type %q", ErrInvalidCatalog, d.ID, d.Type)
		}
		l.Logger.Warn("unknown benefit type, using credit", "benefit_id", d.ID, "type", d.Type)
		return benefits.TypeCredit, nil
	}
}
