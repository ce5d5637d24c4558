package catalog

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"cashier/internal/model"

	"github.com/shopspring/decimal"
)

// Columns of a seed file, in order. image_url may be omitted.
const (
	colName = iota
	colPrice
	colStock
	colDescription
	colImageURL
)

// maxPrice is the first amount a NUMERIC(10,2) column cannot hold.
var maxPrice = decimal.New(1, 8)

// decodeProducts reads gzipped CSV rows of name,price,stock,description[,image_url].
// A first row starting with "name" is treated as a header.
func decodeProducts(ctx context.Context, r io.Reader, source string) ([]model.Product, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	reader := csv.NewReader(gzipReader)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var products []model.Product
	for line := 1; ; line++ {
		// Check context cancellation periodically
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", source, err)
		}

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "name") {
			continue
		}

		product, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, line, err)
		}
		products = append(products, product)
	}

	return products, nil
}

func parseRecord(record []string) (model.Product, error) {
	if len(record) < colImageURL || len(record) > colImageURL+1 {
		return model.Product{}, fmt.Errorf("expected 4 or 5 fields, got %d", len(record))
	}

	name := strings.TrimSpace(record[colName])
	if name == "" {
		return model.Product{}, errors.New("name is required")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(record[colPrice]))
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid price %q", record[colPrice])
	}
	if price.IsNegative() || !price.Equal(price.Round(2)) || price.GreaterThanOrEqual(maxPrice) {
		return model.Product{}, fmt.Errorf("price %s must be non-negative, below %s, with at most two decimals", price, maxPrice)
	}

	stock, err := strconv.Atoi(strings.TrimSpace(record[colStock]))
	if err != nil || stock < 0 || stock > math.MaxInt32 {
		return model.Product{}, fmt.Errorf("invalid stock %q", record[colStock])
	}

	description := strings.TrimSpace(record[colDescription])
	if description == "" {
		return model.Product{}, errors.New("description is required")
	}

	product := model.Product{
		Name:        name,
		Price:       price,
		Description: description,
		Stock:       stock,
	}
	if len(record) > colImageURL {
		if url := strings.TrimSpace(record[colImageURL]); url != "" {
			product.ImageURL = &url
		}
	}

	return product, nil
}
