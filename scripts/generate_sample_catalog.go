//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Writes gzipped catalog seed files for local development. Point
// CATALOG_SEED_FILES at the generated paths to import them on startup.
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	catalogs := map[string][][]string{
		"drinks.csv.gz": {
			{"Espresso", "2.50", "120", "Double shot"},
			{"Flat White", "3.40", "80", "Espresso with steamed milk"},
			{"Iced Tea", "2.90", "40", "Peach, served cold"},
			{"Sparkling Water", "1.80", "60", "330ml bottle"},
		},
		"bakery.csv.gz": {
			{"Croissant", "2.20", "30", "All butter", "https://cdn.example.com/croissant.png"},
			{"Blueberry Muffin", "3.20", "24", "Baked daily"},
			{"Banana Bread", "2.75", "12", "Slice, contains walnuts"},
		},
		"merch.csv.gz": {
			{"Keep Cup", "12.00", "15", "Reusable 12oz cup"},
			{"Tote Bag", "8.50", "20", "Organic cotton"},
		},
	}

	for filename, rows := range catalogs {
		filePath := filepath.Join(dataDir, filename)

		if err := createCatalogFile(filePath, rows); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(rows))
	}

	fmt.Println("\nSample catalog files created successfully!")
	fmt.Printf("\nCATALOG_SEED_FILES=%s,%s,%s\n",
		filepath.Join(dataDir, "drinks.csv.gz"),
		filepath.Join(dataDir, "bakery.csv.gz"),
		filepath.Join(dataDir, "merch.csv.gz"))
}

func createCatalogFile(filePath string, rows [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if err := w.Write([]string{"name", "price", "stock", "description", "image_url"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write products: %w", err)
	}

	return nil
}
