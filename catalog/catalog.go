// Package catalog provides the storefront's static product list.
//
// A Catalog is built once at start-up and never changes afterwards; the
// cart engine reads products from it but does not re-validate against it.
package catalog

import (
	_ "embed"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-memdb"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog string

const productTable = "product"

// Product is an immutable catalog entry. Price is in the smallest currency unit.
type Product struct {
	ID    int64  `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Price int64  `yaml:"price" json:"price"`
	Image string `yaml:"image" json:"image"`
}

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// Catalog is a read-only, id-indexed product list.
type Catalog struct {
	products []Product
	db       *memdb.MemDB
}

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		productTable: {
			Name: productTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
			},
		},
	},
}

// New validates products and builds a Catalog preserving their order.
//
// Every invalid entry is reported, not just the first one.
func New(products []Product) (*Catalog, error) {
	policy := bluemonday.StrictPolicy()
	cleaned := make([]Product, len(products))
	seen := make(map[int64]bool, len(products))

	var errs error
	for i, p := range products {
		p.Name = strings.TrimSpace(html.UnescapeString(policy.Sanitize(p.Name)))
		p.Image = strings.TrimSpace(p.Image)
		cleaned[i] = p

		if p.ID == 0 {
			errs = multierr.Append(errs, fmt.Errorf("product #%d: id is required", i))
		} else if seen[p.ID] {
			errs = multierr.Append(errs, fmt.Errorf("product #%d: duplicate id %d", i, p.ID))
		}
		seen[p.ID] = true
		if p.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("product #%d (id %d): name is required", i, p.ID))
		}
		if p.Price < 0 {
			errs = multierr.Append(errs, fmt.Errorf("product #%d (id %d): price must be non-negative, got %d", i, p.ID, p.Price))
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid catalog: %w", errs)
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("create catalog index: %w", err)
	}
	txn := db.Txn(true)
	for i := range cleaned {
		p := cleaned[i]
		if err := txn.Insert(productTable, &p); err != nil {
			txn.Abort()
			return nil, fmt.Errorf("index product %d: %w", p.ID, err)
		}
	}
	txn.Commit()

	return &Catalog{products: cleaned, db: db}, nil
}

// Load parses a YAML catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return New(nil)
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(file.Products)
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in souvenir catalog.
func Default() *Catalog {
	c, err := Load(strings.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in catalog is invalid: %v", err))
	}
	return c
}

// Lookup finds a product by id.
func (c *Catalog) Lookup(id int64) (Product, bool) {
	txn := c.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(productTable, "id", id)
	if err != nil || raw == nil {
		return Product{}, false
	}
	return *raw.(*Product), true
}

// Products returns the catalog in declared order.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}
