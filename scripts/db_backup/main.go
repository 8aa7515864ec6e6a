package main

import (
	"context"
	"fmt"
	"os"

	"github.com/garnizeh/staffdir/internal/config"
	"github.com/garnizeh/staffdir/internal/db"
)

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Database.Driver != "sqlite" {
		fmt.Fprintf(os.Stderr, "Backup supports the sqlite driver only; use pg_dump for %s.\n", cfg.Database.Driver)
		os.Exit(1)
	}
	src := cfg.Database.Path
	dst := src + ".bak"

	// VACUUM INTO refuses to overwrite an existing file
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := db.New(ctx, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	// consistent snapshot even while the server is running
	if _, err := conn.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup written to %s.\n", dst)
}
