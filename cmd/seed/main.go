package main

import (
	"log"
	"os"

	"healthlink-be/internal/entity"
	"healthlink-be/internal/model"
	"healthlink-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding development accounts...")

	seeds := []struct {
		Email    string
		Password string
		FullName string
		Role     string
	}{
		{Email: "dr.house@healthlink.dev", Password: "doctor123", FullName: "Gregory House", Role: entity.UserRoleDoctor},
		{Email: "dr.wilson@healthlink.dev", Password: "doctor123", FullName: "James Wilson", Role: entity.UserRoleDoctor},
		{Email: "patient.one@healthlink.dev", Password: "patient123", FullName: "Alex Morgan", Role: entity.UserRolePatient},
		{Email: "patient.two@healthlink.dev", Password: "patient123", FullName: "Sam Rivera", Role: entity.UserRolePatient},
	}

	for _, s := range seeds {
		var existing model.User
		if err := db.Where("email = ?", s.Email).First(&existing).Error; err == nil {
			log.Printf("User '%s' already exists, skipping...", s.Email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Error hashing password for '%s': %v", s.Email, err)
		}

		user := model.User{
			Id:           uuid.New(),
			Email:        s.Email,
			PasswordHash: string(hash),
			FullName:     s.FullName,
			Role:         s.Role,
		}

		if err := db.Create(&user).Error; err != nil {
			log.Printf("Error creating user '%s': %v", s.Email, err)
		} else {
			log.Printf("Created user: %s (%s)", s.FullName, s.Role)
		}
	}

	color.Green("✅ Seeding completed!")
}
