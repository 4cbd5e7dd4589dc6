// Command admin manages the administrator roster: accounts created here
// receive complaint notifications and can log into the dashboard.
package main

import (
	"fmt"
	"log"
	"os"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/storage"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "add":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin add <email> <password>")
			os.Exit(1)
		}
		email, password := os.Args[2], os.Args[3]
		if err := addAdmin(storageSvc, email, password); err != nil {
			log.Fatalf("Error adding admin: %v", err)
		}
		fmt.Printf("Admin %s has been created or updated.\n", email)
	case "list":
		emails, err := storageSvc.ListAdminEmails()
		if err != nil {
			log.Fatalf("Error listing admins: %v", err)
		}
		if len(emails) == 0 {
			fmt.Println("No admins configured.")
			return
		}
		for _, email := range emails {
			fmt.Println(email)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func addAdmin(s storage.Storage, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.UpsertAdmin(email, string(hash))
	return err
}
