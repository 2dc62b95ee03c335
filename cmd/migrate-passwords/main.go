// Migration script to hash existing passwords
// cmd/migrate-passwords/main.go
package main

import (
	"log"

	"rkive-api/config"
	"rkive-api/services"
)

func main() {
	config.Load()

	// Initialize database
	config.InitDB()

	report, err := services.NewAccountService(config.DB).MigratePlaintextPasswords()
	if err != nil {
		log.Fatal("Failed to migrate passwords:", err)
	}
	for _, email := range report.Failed {
		log.Printf("Failed to update password for %s", email)
	}

	log.Printf("Password migration completed: %d rehashed, %d skipped, %d failed",
		report.Rehashed, report.Skipped, len(report.Failed))
}
