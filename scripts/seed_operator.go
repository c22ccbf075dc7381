package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/candidate-dashboard/adapters/persistence"
	"github.com/khoahotran/candidate-dashboard/internal/config"
	"github.com/khoahotran/candidate-dashboard/internal/domain/operator"
	"github.com/khoahotran/candidate-dashboard/pkg/auth"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

func main() {
	fmt.Println("adding operator into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	email := strings.ToLower(strings.TrimSpace(os.Getenv("OPERATOR_EMAIL")))
	password := os.Getenv("OPERATOR_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("OPERATOR_EMAIL and OPERATOR_PASSWORD are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	ctx := context.Background()
	pool, err := persistence.NewPostgresPool(ctx, cfg, logger.NewNop())
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	op := &operator.Operator{ID: uuid.New(), Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	if err := persistence.NewPostgresOperatorRepo(pool).Upsert(ctx, op); err != nil {
		log.Fatalf("cannot add operator: %v", err)
	}

	fmt.Printf("added or updated operator '%s' (%s) successfully!\n", op.Email, op.ID)
}
