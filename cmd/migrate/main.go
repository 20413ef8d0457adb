// cmd/migrate/main.go
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/finalxcard/invest-api/internal/config"
	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/migration"
	"github.com/finalxcard/invest-api/internal/utils"
)

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Config yükle
	cfg := config.LoadConfig()

	// Database bağlantısı
	database, err := db.Connect(cfg.GetDSN())
	if err != nil {
		fmt.Printf("Database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	runner := migration.NewRunner(database, "./migrations")

	switch command {
	case "init":
		if err := runner.Initialize(); err != nil {
			fmt.Printf("Initialization failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migration system initialized successfully!")
	case "status":
		handleStatus(runner)
	case "up":
		applied, err := runner.RunUp()
		if err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d migration(s) applied successfully\n", applied)
	case "seed":
		if err := seedDemoUsers(database); err != nil {
			fmt.Printf("Seed failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`
Migration CLI Tool

USAGE:
    go run cmd/migrate/main.go <command>

COMMANDS:
    init       Initialize migration tracking table
    status     Show migration status
    up         Apply all pending migrations
    seed       Insert demo users (development only)

EXAMPLES:
    go run cmd/migrate/main.go init
    go run cmd/migrate/main.go status
    go run cmd/migrate/main.go up
`)
}

// seedDemoUsers development ortamı için örnek kullanıcılar ekler
// Kayıt/kimlik akışı harici serviste olduğundan lokal testte kullanıcılar buradan gelir
func seedDemoUsers(database *sql.DB) error {
	demo := []struct {
		firstName string
		lastName  string
		email     string
		balance   float64
	}{
		{"Ali", "Yılmaz", "ali@example.com", 10000},
		{"Ayşe", "Demir", "ayse@example.com", 5000},
		{"Mehmet", "Kaya", "mehmet@example.com", 2500},
	}

	query := `
		INSERT INTO users (first_name, last_name, email, referral_code, main_balance)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, referral_code
	`

	for _, u := range demo {
		code := utils.NewReferralCode()

		var id int
		err := database.QueryRow(query, u.firstName, u.lastName, u.email, code, u.balance).Scan(&id, &code)
		if err == sql.ErrNoRows {
			fmt.Printf("  %-20s already exists, skipped\n", u.email)
			continue
		}
		if err != nil {
			return fmt.Errorf("kullanıcı eklenemedi (%s): %w", u.email, err)
		}

		fmt.Printf("  #%d %-20s referral_code=%s balance=%.2f\n", id, u.email, code, u.balance)
	}

	fmt.Println("Demo users seeded successfully!")
	return nil
}

func handleStatus(runner *migration.Runner) {
	status, err := runner.GetStatus()
	if err != nil {
		fmt.Printf("Failed to get migration status: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Current Version: %d\n", status.CurrentVersion)
	fmt.Printf("  Applied: %d\n", status.AppliedCount)
	fmt.Printf("  Pending: %d\n", status.PendingCount)

	if len(status.Migrations) > 0 {
		fmt.Printf("\nMigrations:\n")
		fmt.Println("  VERSION          | STATUS   | NAME")
		fmt.Println("  -----------------|----------|--------------------")

		for _, m := range status.Migrations {
			statusIcon := "PENDING"
			appliedAt := ""
			if m.Applied {
				statusIcon = "APPLIED"
				if m.AppliedAt != nil {
					appliedAt = fmt.Sprintf(" (%s)", m.AppliedAt.Format("2006-01-02 15:04"))
				}
			}
			fmt.Printf("  %14d | %-8s | %s%s\n", m.Version, statusIcon, m.Name, appliedAt)
		}
	}

	if status.PendingCount > 0 {
		fmt.Printf("\nYou have %d pending migration(s). Run 'up' to apply them.\n", status.PendingCount)
	} else {
		fmt.Printf("\nAll migrations are up to date!\n")
	}
}
