package calc

import (
	_ "embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v2"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Field kinds used by the defaults table.
const (
	KindString  = "string"
	KindNumber  = "number"
	KindStrings = "strings"
	KindWorkers = "workers"
	KindPhases  = "phases"
)

// Field describes one FormData key as clients and the decoder see it.
type Field struct {
	Key  string `yaml:"key" json:"key"`
	Kind string `yaml:"kind" json:"kind"`
	Unit string `yaml:"unit" json:"unit,omitempty"`
}

// EngineSettings holds the fallbacks and thresholds Calculate applies.
type EngineSettings struct {
	DefaultWorker    Worker  `json:"defaultWorker"`
	MinNetWeight     float64 `json:"minNetWeight"`
	MarketGapPercent float64 `json:"marketGapPercent"`
	MaxAmount        float64 `json:"maxAmount"`
}

type yamlWorker struct {
	HourlyRate float64 `yaml:"hourlyRate"`
	Hours      float64 `yaml:"hours"`
}

type defaultsFile struct {
	Engine struct {
		DefaultWorker    yamlWorker `yaml:"defaultWorker"`
		MinNetWeight     float64    `yaml:"minNetWeight"`
		MarketGapPercent float64    `yaml:"marketGapPercent"`
		MaxAmount        float64    `yaml:"maxAmount"`
	} `yaml:"engine"`
	Form struct {
		ProductType        string       `yaml:"productType"`
		VATPercent         float64      `yaml:"vatPercent"`
		ProfitMargin       float64      `yaml:"profitMargin"`
		MinimumMargin      float64      `yaml:"minimumMargin"`
		SeasonalMultiplier float64      `yaml:"seasonalMultiplier"`
		Workers            []yamlWorker `yaml:"workers"`
	} `yaml:"form"`
	Fields []Field `yaml:"fields"`
}

type defaultsTable struct {
	engine EngineSettings
	form   FormData
	fields []Field
	kinds  map[string]string
}

var defaults = mustParseDefaults(defaultsYAML)

func mustParseDefaults(raw []byte) defaultsTable {
	t, err := parseDefaults(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func parseDefaults(raw []byte) (defaultsTable, error) {
	var file defaultsFile
	if err := yaml.UnmarshalStrict(raw, &file); err != nil {
		return defaultsTable{}, fmt.Errorf("parse defaults table: %w", err)
	}
	if file.Engine.MinNetWeight <= 0 {
		return defaultsTable{}, fmt.Errorf("defaults table: minNetWeight must be positive")
	}
	if !(file.Engine.MaxAmount > file.Engine.MinNetWeight) || math.IsInf(file.Engine.MaxAmount, 0) {
		return defaultsTable{}, fmt.Errorf("defaults table: maxAmount must be finite and above minNetWeight")
	}

	t := defaultsTable{
		engine: EngineSettings{
			DefaultWorker:    Worker(file.Engine.DefaultWorker),
			MinNetWeight:     file.Engine.MinNetWeight,
			MarketGapPercent: file.Engine.MarketGapPercent,
			MaxAmount:        file.Engine.MaxAmount,
		},
		form: FormData{
			ProductType:        ProductType(file.Form.ProductType),
			VATPercent:         file.Form.VATPercent,
			ProfitMargin:       file.Form.ProfitMargin,
			MinimumMargin:      file.Form.MinimumMargin,
			SeasonalMultiplier: file.Form.SeasonalMultiplier,
		},
		fields: file.Fields,
		kinds:  make(map[string]string, len(file.Fields)),
	}
	for _, w := range file.Form.Workers {
		t.form.Workers = append(t.form.Workers, Worker(w))
	}
	for _, f := range file.Fields {
		switch f.Kind {
		case KindString, KindNumber, KindStrings, KindWorkers, KindPhases:
		default:
			return defaultsTable{}, fmt.Errorf("defaults table: field %q has unknown kind %q", f.Key, f.Kind)
		}
		t.kinds[f.Key] = f.Kind
	}
	return t, nil
}

// DefaultForm returns the initial values of a fresh form.
func DefaultForm() FormData {
	form := defaults.form
	form.Workers = append([]Worker(nil), defaults.form.Workers...)
	return form
}

// Engine returns the engine's fallbacks and thresholds.
func Engine() EngineSettings {
	return defaults.engine
}

// Fields returns the field table in form order.
func Fields() []Field {
	return append([]Field(nil), defaults.fields...)
}

func fieldKind(key string) (string, bool) {
	kind, ok := defaults.kinds[key]
	return kind, ok
}
