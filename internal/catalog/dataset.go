package catalog

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Digital maturity indexes and stages are ordinals in this range.
const (
	MinMaturity = 1
	MaxMaturity = 4
)

// Dataset is a fully resolved set of entities: every request points at its
// requestor and every skill at its service when the service is known.
type Dataset struct {
	Services   []*Service   `mapstructure:"services"`
	Requestors []*Requestor `mapstructure:"requestors"`
	Providers  []*Provider  `mapstructure:"providers"`
	Requests   []*Request   `mapstructure:"requests"`
}

// LoadDataset reads a YAML or JSON dataset file and resolves its references.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %q: %w", path, err)
	}

	ds, err := ParseDataset(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", path, err)
	}

	return ds, nil
}

// ParseDataset decodes raw YAML (or JSON) bytes into a resolved Dataset.
func ParseDataset(data []byte) (*Dataset, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	ds := &Dataset{}
	cfg := &mapstructure.DecoderConfig{
		Result:           ds,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			costProfileHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}

	if err := decoder.Decode(normalizeTimes(raw)); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	if err := ds.resolve(); err != nil {
		return nil, err
	}

	return ds, nil
}

// Request returns the request with the given id, or nil.
func (d *Dataset) Request(id int) *Request {
	for _, r := range d.Requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Provider returns the provider with the given id, or nil.
func (d *Dataset) Provider(id int) *Provider {
	for _, p := range d.Providers {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (d *Dataset) resolve() error {
	services := make(map[int]*Service, len(d.Services))
	for _, s := range d.Services {
		if _, ok := services[s.ID]; ok {
			return fmt.Errorf("duplicate service id %d", s.ID)
		}
		services[s.ID] = s
	}

	requestors := make(map[int]*Requestor, len(d.Requestors))
	for _, r := range d.Requestors {
		if _, ok := requestors[r.ID]; ok {
			return fmt.Errorf("duplicate requestor id %d", r.ID)
		}
		if !r.CostProfile.Valid() {
			return fmt.Errorf("requestor %d has missing or unknown cost profile (%s)", r.ID, r.CostProfile)
		}
		if r.DigitalMaturityIndex < MinMaturity || r.DigitalMaturityIndex > MaxMaturity {
			return fmt.Errorf("requestor %d digital maturity index %d is outside %d-%d",
				r.ID, r.DigitalMaturityIndex, MinMaturity, MaxMaturity)
		}
		requestors[r.ID] = r
	}

	seen := make(map[int]struct{}, len(d.Providers))
	for _, p := range d.Providers {
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("duplicate provider id %d", p.ID)
		}
		seen[p.ID] = struct{}{}

		// Skills may name services outside the dataset; they stay unresolved.
		for i := range p.Skills {
			p.Skills[i].Service = services[p.Skills[i].ServiceID]
		}
	}

	for _, r := range d.Requests {
		requestor, ok := requestors[r.RequestorID]
		if !ok {
			return fmt.Errorf("request %d references unknown requestor %d", r.ID, r.RequestorID)
		}
		if _, ok := services[r.ServiceID]; !ok {
			return fmt.Errorf("request %d references unknown service %d", r.ID, r.ServiceID)
		}
		r.Requestor = requestor
	}

	return nil
}

var costProfileType = reflect.TypeOf(CostProfile(0))

func costProfileHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t != costProfileType {
		return data, nil
	}
	if f.Kind() != reflect.String {
		return nil, fmt.Errorf("unknown cost profile %v: expected low, medium or high", data)
	}
	return ParseCostProfile(data.(string))
}

// normalizeTimes turns timestamps resolved by the yaml parser back into
// RFC3339 strings so a single decode hook handles both quoted and bare values.
func normalizeTimes(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeTimes(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeTimes(item)
		}
		return val
	default:
		return v
	}
}
