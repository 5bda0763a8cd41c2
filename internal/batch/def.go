package batch

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/karupanerura/calc/internal/defaults"
	"github.com/karupanerura/calc/internal/expression"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

const defaultConcurrency = 8

type batchDef struct {
	Constants   string             `json:"constants"`
	Bindings    map[string]float64 `json:"bindings"`
	Concurrency int                `json:"concurrency"`
	FailFast    bool               `json:"fail_fast"`
	Expressions []*entryDef        `json:"expressions"`
}

func (d *batchDef) compile(o options) (*Batch, error) {
	constants := d.Constants
	if o.constants != "" {
		constants = o.constants
	}
	preset, err := defaults.LookupPreset(constants)
	if err != nil {
		return nil, fmt.Errorf("constants: %w", err)
	}
	if len(d.Expressions) == 0 {
		return nil, fmt.Errorf("empty expressions")
	}

	b := Batch{
		Concurrency: d.Concurrency,
		FailFast:    d.FailFast,
		Entries:     make([]*Entry, len(d.Expressions)),
	}
	switch {
	case b.Concurrency == 0:
		b.Concurrency = defaultConcurrency
	case b.Concurrency < 0:
		return nil, fmt.Errorf("concurrency must be positive: %d", b.Concurrency)
	}

	if err := checkBindings(d.Bindings); err != nil {
		return nil, fmt.Errorf("bindings: %w", err)
	}
	if err := checkBindings(o.bindings); err != nil {
		return nil, fmt.Errorf("bindings: %w", err)
	}
	shared := preset.ExtendMap(d.Bindings)
	if len(o.bindings) != 0 {
		shared = shared.ExtendMap(o.bindings)
	}

	seen := make(map[string]bool, len(d.Expressions))
	for i, entryDef := range d.Expressions {
		name := entryDef.Name
		if name == "" {
			name = fmt.Sprintf("expressions[%d]", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("%s: duplicated expression name", name)
		}
		seen[name] = true

		if err := expression.CheckLength(entryDef.Expr, o.maxLength); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		expr, err := expression.ParseExpr(entryDef.Expr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := checkBindings(entryDef.Bindings); err != nil {
			return nil, fmt.Errorf("%s: bindings: %w", name, err)
		}

		valuation := shared
		if len(entryDef.Bindings) != 0 {
			valuation = shared.ExtendMap(entryDef.Bindings)
		}
		b.Entries[i] = &Entry{
			Name:      name,
			Expr:      expr,
			Valuation: valuation,
		}
	}

	return &b, nil
}

func checkBindings(bindings map[string]float64) error {
	for _, name := range lo.Keys(bindings) {
		if !expression.IsIdentifier(name) {
			return fmt.Errorf("invalid variable name: %q", name)
		}
	}
	return nil
}

// entryDef is either a bare expression string or a map with name, expr and
// bindings keys.
type entryDef struct {
	Name     string             `json:"name" mapstructure:"name"`
	Expr     string             `json:"expr" mapstructure:"expr"`
	Bindings map[string]float64 `json:"bindings" mapstructure:"bindings"`
}

var _ json.Unmarshaler = (*entryDef)(nil)

func (d *entryDef) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("unexpected expression structure: %w", err)
	}

	switch v := raw.(type) {
	case string:
		d.Expr = v
		return nil

	case map[string]any:
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			ErrorUnused: true,
			Result:      d,
		})
		if err != nil {
			return err
		}
		if err := decoder.Decode(v); err != nil {
			return fmt.Errorf("invalid expression structure: %w", err)
		}
		if d.Expr == "" {
			return fmt.Errorf("invalid expression structure: expr is required: %s", string(b))
		}
		return nil

	default:
		return fmt.Errorf("invalid expression structure: %s", string(b))
	}
}
