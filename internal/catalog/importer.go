package catalog

import (
	"context"
	"fmt"
	"sync"

	"cashier/internal/model"

	"github.com/rs/zerolog"
)

// importer implements Importer.
type importer struct {
	store  ProductStore
	loader Loader
	logger zerolog.Logger
}

// NewImporter creates a catalog importer.
func NewImporter(store ProductStore, loader Loader, logger zerolog.Logger) Importer {
	return &importer{
		store:  store,
		loader: loader,
		logger: logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Seed loads all files concurrently and inserts their products in file
// order. A catalog that already holds products is left untouched.
func (i *importer) Seed(ctx context.Context, files []string) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}

	count, err := i.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		i.logger.Info().Int("existing_products", count).Msg("catalog already populated, skipping seed")
		return 0, nil
	}

	products, err := i.loadAll(ctx, files)
	if err != nil {
		return 0, err
	}
	if len(products) == 0 {
		i.logger.Warn().Strs("files", files).Msg("catalog seed files are empty")
		return 0, nil
	}

	inserted, err := i.store.CreateBatch(ctx, products)
	if err != nil {
		return 0, fmt.Errorf("failed to insert catalog seed: %w", err)
	}

	i.logger.Info().
		Int("file_count", len(files)).
		Int("products_inserted", inserted).
		Msg("catalog seeded")

	return inserted, nil
}

func (i *importer) loadAll(ctx context.Context, files []string) ([]model.Product, error) {
	type loadResult struct {
		index    int
		products []model.Product
		err      error
	}

	resultChan := make(chan loadResult, len(files))
	var wg sync.WaitGroup

	for idx, path := range files {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			products, err := i.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, products: products, err: err}
		}(idx, path)
	}

	wg.Wait()
	close(resultChan)

	// Collect results in order
	results := make([]loadResult, len(files))
	for result := range resultChan {
		results[result.index] = result
	}

	var all []model.Product
	for idx, result := range results {
		if result.err != nil {
			i.logger.Error().Err(result.err).Str("file", files[idx]).Msg("failed to load catalog file")
			return nil, fmt.Errorf("failed to load catalog file %s: %w", files[idx], result.err)
		}
		all = append(all, result.products...)
	}

	return all, nil
}
