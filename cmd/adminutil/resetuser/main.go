package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/scubahq/tradevault/internal/db"
	"github.com/scubahq/tradevault/internal/store"
)

func main() {
	userID := flag.Int64("user", 0, "Discord user id to reset")
	flag.Parse()

	if *userID == 0 {
		log.Fatalf("usage: go run cmd/adminutil/resetuser/main.go -user 123456789012345678")
	}

	_ = godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	db.Init(dbURL)
	defer db.Close()

	st := store.New(db.Conn)
	if err := st.ResetUser(context.Background(), *userID); err != nil {
		log.Fatalf("failed to reset user %d: %v", *userID, err)
	}

	// Trade history is kept on purpose; only stats, listings and vouches go.
	fmt.Printf("User %d reset.\n", *userID)
}
