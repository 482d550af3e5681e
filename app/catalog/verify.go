package catalog

import (
	_ "embed"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

//go:generate go run ./internal/schema schema.json

//go:embed schema.json
var embeddedSchemaData []byte

// Schema returns json schema of the catalog file, generated by internal/schema
func Schema() []byte {
	return embeddedSchemaData
}

// Verify checks catalog content. All orders must have unique numbers and at least one step,
// step ids must be positive and unique within the order.
func Verify(f File) error {
	if len(f.Orders) == 0 {
		return errors.New("at least one order is required")
	}

	seen := make(map[string]bool, len(f.Orders))
	for i, o := range f.Orders {
		if strings.TrimSpace(o.OrderNumber) == "" {
			return errors.Errorf("order %d: order number is required", i+1)
		}
		if o.OrderNumber != strings.TrimSpace(o.OrderNumber) {
			// scanned input is trimmed, such order could never match
			return errors.Errorf("order %q: order number has leading or trailing spaces", o.OrderNumber)
		}
		if seen[o.OrderNumber] {
			return errors.Errorf("order %q: duplicate order number", o.OrderNumber)
		}
		seen[o.OrderNumber] = true

		if strings.TrimSpace(o.ProductName) == "" {
			return errors.Errorf("order %q: product name is required", o.OrderNumber)
		}
		if err := verifySteps(o.Steps); err != nil {
			return errors.Wrapf(err, "order %q", o.OrderNumber)
		}
	}
	return nil
}

func verifySteps(steps []Step) error {
	if len(steps) == 0 {
		return errors.New("at least one step is required")
	}

	ids := make(map[int]bool, len(steps))
	for i, s := range steps {
		if s.ID <= 0 {
			return errors.Errorf("step %d: id must be positive, got %d", i+1, s.ID)
		}
		if ids[s.ID] {
			return errors.Errorf("step %d: duplicate id %d", i+1, s.ID)
		}
		ids[s.ID] = true

		if strings.TrimSpace(s.Title) == "" {
			return errors.Errorf("step %d: title is required", s.ID)
		}
		if s.ImageURL != "" {
			if err := verifyImageURL(s.ImageURL); err != nil {
				return errors.Wrapf(err, "step %d", s.ID)
			}
		}
	}
	return nil
}

func verifyImageURL(u string) error {
	parsed, err := url.Parse(u)
	if err != nil {
		return errors.Wrapf(err, "invalid image url %q", u)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.Errorf("image url %q should be absolute http(s) url", u)
	}
	if parsed.Host == "" {
		return errors.Errorf("image url %q has no host", u)
	}
	return nil
}
