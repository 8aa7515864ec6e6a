package main

import (
	"context"
	"fmt"
	"os"

	"github.com/garnizeh/staffdir/internal/config"
	"github.com/garnizeh/staffdir/internal/storage"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Database.Driver == "memory" {
		fmt.Fprintln(os.Stderr, "Nothing to initialize for the memory driver.")
		os.Exit(1)
	}

	// storage.Open applies pending migrations for the SQL drivers
	backend, err := storage.Open(ctx, cfg.Database, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	fmt.Println("Database initialized successfully.")
}
