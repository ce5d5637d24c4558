//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"

	"cashier/internal/config"

	"github.com/jackc/pgx/v5"
)

// Connects with the same DB_* settings as the server and prints row counts.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	db := cfg.Database
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		db.User, db.Password, db.Host, db.Port, db.Database)

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully connected to database: %s\n\n", dbName)

	for _, table := range []string{"users", "products", "orders", "order_items"} {
		var n int
		query := "SELECT COUNT(*) FROM " + pgx.Identifier{table}.Sanitize()
		if err := conn.QueryRow(ctx, query).Scan(&n); err != nil {
			fmt.Printf("  - %-12s unavailable (%v)\n", table, err)
			continue
		}
		fmt.Printf("  - %-12s %d rows\n", table, n)
	}
}
