package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnexpectedDimension = errors.New("unexpected aggregate dimension")

type Dimension string

const (
	DimensionProviders Dimension = "providers"
	DimensionDevices   Dimension = "devices"
	DimensionCountries Dimension = "countries"
)

var SupportedDimensions = []Dimension{
	DimensionProviders,
	DimensionDevices,
	DimensionCountries,
}

func (d Dimension) IsValid() bool {
	for _, sd := range SupportedDimensions {
		if d == sd {
			return true
		}
	}
	return false
}

// AggregateResponse holds event counts grouped by one dimension, e.g. counts
// per email service provider.
type AggregateResponse struct {
	Dimension Dimension
	Items     map[string]Counts
}

// UnmarshalJSON expects {"<dimension>": {"<name>": {"<metric>": n}}}. When
// Dimension is preset it must be the payload's only key.
func (r *AggregateResponse) UnmarshalJSON(b []byte) error {
	var raw map[string]map[string]Counts
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if len(raw) != 1 {
		return fmt.Errorf("%w: expect exactly one dimension, got %d", ErrUnexpectedDimension, len(raw))
	}

	for dim, items := range raw {
		if r.Dimension != "" && Dimension(dim) != r.Dimension {
			return fmt.Errorf("%w: expect %q, got %q", ErrUnexpectedDimension, r.Dimension, dim)
		}
		if items == nil {
			return fmt.Errorf("%w: %s", ErrMissingField, dim)
		}
		r.Dimension = Dimension(dim)
		r.Items = items
	}

	return nil
}

func (r AggregateResponse) MarshalJSON() ([]byte, error) {
	items := r.Items
	if items == nil {
		items = map[string]Counts{}
	}
	return json.Marshal(map[string]map[string]Counts{
		string(r.Dimension): items,
	})
}

func (r *AggregateResponse) GetItems() map[string]Counts {
	if r != nil {
		return r.Items
	}
	return nil
}

func (r *AggregateResponse) Get(name string) Counts {
	if r != nil && r.Items != nil {
		return r.Items[name]
	}
	return nil
}
