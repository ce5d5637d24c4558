// Package catalog seeds the product table from gzipped CSV files kept on
// S3 or the local filesystem.
package catalog

import (
	"context"

	"cashier/internal/model"
)

// Loader defines the interface for loading catalog seed files.
type Loader interface {
	// Load reads a gzipped CSV file and returns the products it describes.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// Importer seeds an empty catalog.
type Importer interface {
	// Seed loads files and inserts their products when the catalog is
	// empty. It returns the number of products inserted.
	Seed(ctx context.Context, files []string) (int, error)
}

// ProductStore is the slice of the product repository the importer needs.
type ProductStore interface {
	Count(ctx context.Context) (int, error)
	CreateBatch(ctx context.Context, products []model.Product) (int, error)
}
