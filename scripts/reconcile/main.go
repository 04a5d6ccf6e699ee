package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Ledger reconciliation: replays every user's ledger transactions and
// compares the sum against the stored wallet balance, and checks that each
// transaction's balance_after equals balance_before + amount. Read-only;
// discrepancies are reported, never fixed automatically.
func main() {
	_ = godotenv.Load()

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_NAME", "trading_contests"),
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}

	broken := checkArithmetic(db)
	drifted := checkBalances(db)

	if broken == 0 && drifted == 0 {
		log.Println("Ledger reconciliation passed: all balances match")
		return
	}
	log.Fatalf("Ledger reconciliation FAILED: %d broken transactions, %d drifted wallets", broken, drifted)
}

// checkArithmetic verifies balance_after = balance_before + amount per row.
func checkArithmetic(db *sql.DB) int {
	rows, err := db.Query(`
		SELECT id, user_id, balance_before, amount, balance_after
		FROM ledger_transactions
		WHERE status = 'COMPLETED'
		  AND balance_after <> balance_before + amount
		ORDER BY created_at`)
	if err != nil {
		log.Fatalf("Failed to query transactions: %v", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id string
		var userID int64
		var before, amount, after string
		if err := rows.Scan(&id, &userID, &before, &amount, &after); err != nil {
			log.Fatalf("Failed to scan transaction: %v", err)
		}
		log.Printf("BROKEN transaction %s (user %d): %s + %s != %s", id, userID, before, amount, after)
		count++
	}
	return count
}

// checkBalances verifies each wallet equals the sum of its completed
// signed amounts.
func checkBalances(db *sql.DB) int {
	rows, err := db.Query(`
		SELECT w.user_id, w.balance, COALESCE(SUM(t.amount), 0) AS replayed
		FROM credit_wallets w
		LEFT JOIN ledger_transactions t
		  ON t.user_id = w.user_id AND t.status = 'COMPLETED'
		GROUP BY w.user_id, w.balance
		HAVING w.balance <> COALESCE(SUM(t.amount), 0)
		ORDER BY w.user_id`)
	if err != nil {
		log.Fatalf("Failed to query wallets: %v", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var userID int64
		var balance, replayed string
		if err := rows.Scan(&userID, &balance, &replayed); err != nil {
			log.Fatalf("Failed to scan wallet: %v", err)
		}
		log.Printf("DRIFTED wallet for user %d: stored %s, ledger replay %s", userID, balance, replayed)
		count++
	}
	return count
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
