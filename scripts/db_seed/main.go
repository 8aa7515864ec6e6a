package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/garnizeh/staffdir/internal/auth"
	"github.com/garnizeh/staffdir/internal/config"
	"github.com/garnizeh/staffdir/internal/directory"
	"github.com/garnizeh/staffdir/internal/storage"
	"github.com/garnizeh/staffdir/pkg/models"
)

var sample = []models.EmployeeInput{
	{Name: "Ana Silva", Email: "ana.silva@example.com", Mobile: "5511987654321", Designation: "HR", Course: "MBA", Gender: models.GenderFemale},
	{Name: "Juliana Reis", Email: "juliana.reis@example.com", Mobile: "5511912345678", Designation: "Manager", Course: "MCA", Gender: models.GenderFemale},
	{Name: "Bob Martins", Email: "bob.martins@example.com", Mobile: "5521998877665", Designation: "Sales", Course: "BCA", Gender: models.GenderMale},
	{Name: "Carlos Souza", Email: "carlos.souza@example.com", Mobile: "5531988776655", Designation: "Engineer", Course: "BSc", Gender: models.GenderMale},
	{Name: "Sam Lee", Email: "sam.lee@example.com", Mobile: "5541977665544", Designation: "Designer", Course: "BSc", Gender: models.GenderOther},
}

func main() {
	username := flag.String("user", "admin", "Username to create")
	password := flag.String("password", "", "Password for the user (skipped when empty)")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	backend, err := storage.Open(ctx, cfg.Database, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB open error: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	if *password != "" {
		p := auth.NewProvider(backend.Users, cfg.JWTSecret, cfg.TokenDuration)
		switch err := p.Register(ctx, *username, *password); {
		case err == nil:
			fmt.Printf("Created user %s.\n", *username)
		case errors.Is(err, auth.ErrUsernameTaken):
			fmt.Printf("User %s already exists.\n", *username)
		default:
			fmt.Fprintf(os.Stderr, "Seed user error: %v\n", err)
			os.Exit(1)
		}
	}

	svc := directory.NewService(backend.Employees)
	created := 0
	for _, in := range sample {
		if _, err := svc.Create(ctx, in); err != nil {
			if errors.Is(err, directory.ErrConstraintViolation) {
				continue
			}
			fmt.Fprintf(os.Stderr, "Seed employee %s error: %v\n", in.Email, err)
			os.Exit(1)
		}
		created++
	}

	fmt.Printf("Seeded %d employees.\n", created)
}
