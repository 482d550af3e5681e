// Package catalog provides the immutable set of work orders and their ordered steps.
// The default catalog is embedded, a custom one can be loaded from a yaml file.
package catalog

import (
	_ "embed"
	"os"

	log "github.com/go-pkgz/lgr"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var defaultCatalog []byte

// Step is a single instruction within a work order. ID is unique within the order,
// position in WorkOrder.Steps defines execution order.
type Step struct {
	ID          int    `yaml:"id" json:"id" jsonschema:"minimum=1,description=step id, unique within the order"`
	Title       string `yaml:"title" json:"title" jsonschema:"minLength=1"`
	Description string `yaml:"description" json:"description"`
	ImageURL    string `yaml:"imageUrl,omitempty" json:"imageUrl,omitempty" jsonschema:"format=uri,description=optional reference image"`
}

// WorkOrder is an order number with its product and ordered steps
type WorkOrder struct {
	OrderNumber string `yaml:"orderNumber" json:"orderNumber" jsonschema:"minLength=1,description=scanned order number, exact match"`
	ProductName string `yaml:"productName" json:"productName" jsonschema:"minLength=1"`
	Steps       []Step `yaml:"steps" json:"steps" jsonschema:"minItems=1"`
}

// File is the top level structure of the catalog yaml file
type File struct {
	Orders []WorkOrder `yaml:"orders" json:"orders" jsonschema:"minItems=1"`
}

// StepIndex returns position of the step with given id, -1 if not found
func (w WorkOrder) StepIndex(id int) int {
	for i, s := range w.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// HasStep checks if step id belongs to the order
func (w WorkOrder) HasStep(id int) bool {
	return w.StepIndex(id) >= 0
}

// Catalog is a read-only, thread safe set of work orders
type Catalog struct {
	orders []WorkOrder
	index  map[string]int // order number -> position in orders
}

// New makes catalog from the list of orders, validating them first
func New(orders []WorkOrder) (*Catalog, error) {
	if err := Verify(File{Orders: orders}); err != nil {
		return nil, err
	}
	res := &Catalog{orders: make([]WorkOrder, len(orders)), index: make(map[string]int, len(orders))}
	for i, o := range orders {
		o.Steps = append([]Step(nil), o.Steps...)
		res.orders[i] = o
		res.index[o.OrderNumber] = i
	}
	return res, nil
}

// Default returns the embedded sample catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads catalog from yaml file
func Load(fname string) (*Catalog, error) {
	data, err := os.ReadFile(fname) // nolint gosec
	if err != nil {
		return nil, errors.Wrapf(err, "can't read catalog %s", fname)
	}
	res, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load catalog %s", fname)
	}
	log.Printf("[INFO] catalog %s loaded, %d orders", fname, len(res.orders))
	return res, nil
}

// Parse makes catalog from yaml content
func Parse(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "can't parse catalog yaml")
	}
	return New(f.Orders)
}

// Find returns work order by its number. Match is exact and case-sensitive.
func (c *Catalog) Find(orderNumber string) (WorkOrder, bool) {
	i, ok := c.index[orderNumber]
	if !ok {
		return WorkOrder{}, false
	}
	res := c.orders[i]
	res.Steps = append([]Step(nil), res.Steps...)
	return res, true
}

// List returns all orders in declaration order
func (c *Catalog) List() []WorkOrder {
	res := make([]WorkOrder, len(c.orders))
	for i, o := range c.orders {
		o.Steps = append([]Step(nil), o.Steps...)
		res[i] = o
	}
	return res
}

// Numbers returns all order numbers in declaration order
func (c *Catalog) Numbers() []string {
	res := make([]string, 0, len(c.orders))
	for _, o := range c.orders {
		res = append(res, o.OrderNumber)
	}
	return res
}
