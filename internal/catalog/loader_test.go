package catalog

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gzipBytes compresses content the way seed files are stored.
func gzipBytes(t *testing.T, content string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	_, err := gzipWriter.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gzipWriter.Close())

	return buf.Bytes()
}

// createTestCatalogFile writes a gzipped CSV seed file into a temp dir.
func createTestCatalogFile(t *testing.T, filename, content string) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(filePath, gzipBytes(t, content), 0o600))

	return filePath
}

func TestFileLoader_Load_Success(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestCatalogFile(t, "catalog.csv.gz",
		"name,price,stock,description,image_url\n"+
			"Espresso,2.50,40,Single shot,https://img.test/espresso.png\n"+
			"\"Croissant, butter\",1.80,12,Baked daily\n"+
			"Water, 0.99, 100, Still 500ml,\n")

	products, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "Espresso", products[0].Name)
	assert.True(t, decimal.RequireFromString("2.50").Equal(products[0].Price))
	assert.Equal(t, 40, products[0].Stock)
	require.NotNil(t, products[0].ImageURL)
	assert.Equal(t, "https://img.test/espresso.png", *products[0].ImageURL)

	assert.Equal(t, "Croissant, butter", products[1].Name)
	assert.Nil(t, products[1].ImageURL)

	assert.Equal(t, "Still 500ml", products[2].Description)
	assert.Nil(t, products[2].ImageURL)
}

func TestFileLoader_Load_WithoutHeader(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestCatalogFile(t, "catalog.csv.gz", "Tea,1.20,5,Earl grey\n")

	products, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Tea", products[0].Name)
}

func TestFileLoader_Load_EmptyFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestCatalogFile(t, "empty.csv.gz", "")

	products, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestFileLoader_Load_InvalidRows(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{name: "Too few fields", content: "Tea,1.20,5\n", errContains: "expected 4 or 5 fields"},
		{name: "Blank name", content: " ,1.20,5,Earl grey\n", errContains: "name is required"},
		{name: "Bad price", content: "Tea,cheap,5,Earl grey\n", errContains: "invalid price"},
		{name: "Negative price", content: "Tea,-1.00,5,Earl grey\n", errContains: "non-negative"},
		{name: "Sub-cent price", content: "Tea,1.005,5,Earl grey\n", errContains: "at most two decimals"},
		{name: "Negative stock", content: "Tea,1.20,-5,Earl grey\n", errContains: "invalid stock"},
		{name: "Stock beyond integer column", content: "Tea,1.20,2147483648,Earl grey\n", errContains: "invalid stock"},
		{name: "Price beyond numeric column", content: "Tea,100000000.00,5,Earl grey\n", errContains: "below 100000000"},
		{name: "Blank description", content: "Tea,1.20,5, \n", errContains: "description is required"},
		{name: "Line number reported", content: "name,price,stock,description\nTea,1.20,5,Earl grey\nCoffee,x,1,Black\n", errContains: "line 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewFileLoader(zerolog.Nop())
			filePath := createTestCatalogFile(t, "bad.csv.gz", tt.content)

			products, err := loader.Load(context.Background(), filePath)

			require.Error(t, err)
			assert.Nil(t, products)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	products, err := loader.Load(context.Background(), "/nonexistent/catalog.csv.gz")

	require.Error(t, err)
	assert.Nil(t, products)
	assert.Contains(t, err.Error(), "failed to open catalog file")
}

func TestFileLoader_Load_NotGzipped(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := filepath.Join(t.TempDir(), "plain.csv")
	require.NoError(t, os.WriteFile(filePath, []byte("Tea,1.20,5,Earl grey\n"), 0o600))

	_, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create gzip reader")
}

func TestFileLoader_Load_ContextCancelled(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	var content bytes.Buffer
	for range 5000 {
		content.WriteString("Tea,1.20,5,Earl grey\n")
	}
	filePath := createTestCatalogFile(t, "large.csv.gz", content.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	products, err := loader.Load(ctx, filePath)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, products)
}
