package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"sorastudio/internal/infra"
	"sorastudio/internal/sqlinline"
)

func main() {
	var (
		idFlag      string
		nameFlag    string
		creditsFlag int
	)

	flag.StringVar(&idFlag, "id", "", "account ID (UUID); generated when empty")
	flag.StringVar(&nameFlag, "name", "", "display name to set on the account")
	flag.IntVar(&creditsFlag, "credits", 1, "credits to add to the balance")
	flag.Parse()

	accountID := strings.TrimSpace(idFlag)
	if accountID == "" {
		accountID = uuid.NewString()
	} else if _, err := uuid.Parse(accountID); err != nil {
		exitWithError(fmt.Errorf("invalid account id %q: %w", accountID, err))
	}
	if creditsFlag < 0 {
		exitWithError(errors.New("-credits must not be negative"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "grantcredit").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	execCtx, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()
	row := runner.QueryRow(execCtx, sqlinline.QUpsertAccountAndGrant, accountID, strings.TrimSpace(nameFlag), creditsFlag)

	var (
		id      string
		name    string
		balance int
	)
	if err := row.Scan(&id, &name, &balance); err != nil {
		exitWithError(fmt.Errorf("failed to grant credits: %w", err))
	}

	fmt.Printf("Account %s (%s) now has %d credits\n", id, name, balance)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
