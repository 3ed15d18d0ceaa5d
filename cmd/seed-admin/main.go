package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-parfum-store.git/internal/auth"
	"github.com/ariefcatur/go-parfum-store.git/internal/config"
	"github.com/ariefcatur/go-parfum-store.git/internal/postgres"
)

// Seeder akun admin back-office. Jalankan sekali pas setup:
//
//	ADMIN_EMAIL=admin@shop.test ADMIN_PASSWORD=... go run ./cmd/seed-admin
func main() {
	_ = godotenv.Load()

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO admins(id, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		uuid.NewString(), email, hash)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	log.Printf("admin %s ready", email)
}
