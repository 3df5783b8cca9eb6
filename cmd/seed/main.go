package main

import (
	"context"
	"log"
	"os"

	"gorm.io/gorm"

	"cuprewards/internal/auth"
	"cuprewards/internal/config"
	"cuprewards/internal/crypto"
	"cuprewards/internal/db"
	"cuprewards/internal/model"
	"cuprewards/internal/repository"
)

var demoSites = []model.Site{
	{Name: "Downtown", Address: "12 Market Street"},
	{Name: "Riverside", Address: "48 Quay Road"},
	{Name: "Airport", Address: "Terminal 2, Arrivals"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.PendingSignup{},
		&model.CustomerProfile{},
		&model.StaffProfile{},
		&model.StaffSite{},
		&model.Site{},
		&model.Transaction{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	cipher, err := crypto.NewCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to init cipher: %v", err)
	}
	userRepo := repository.NewUserRepository(gormDB)

	adminEmail := getEnv("ADMIN_EMAIL", "admin@cuprewards.local")
	adminPassword := getEnv("ADMIN_PASSWORD", "change-me-now")

	emailHash := crypto.LookupHash(adminEmail)
	if _, err := userRepo.FindByEmailHash(ctx, emailHash); err == nil {
		log.Printf("Admin user %s already exists, skipping", adminEmail)
	} else if err != gorm.ErrRecordNotFound {
		log.Fatalf("Failed to check admin user: %v", err)
	} else {
		emailEnc, err := cipher.Encrypt(adminEmail)
		if err != nil {
			log.Fatalf("Failed to encrypt admin email: %v", err)
		}
		passwordHash, err := auth.HashPassword(adminPassword)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
		admin := &model.User{
			Role:         model.RoleAdmin,
			EmailEnc:     emailEnc,
			EmailHash:    emailHash,
			PasswordHash: &passwordHash,
			Active:       true,
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		log.Printf("Created admin user %s", adminEmail)
	}

	var siteCount int64
	if err := gormDB.Model(&model.Site{}).Count(&siteCount).Error; err != nil {
		log.Fatalf("Failed to count sites: %v", err)
	}
	if siteCount > 0 {
		log.Printf("Found %d existing sites, skipping demo sites", siteCount)
	} else {
		siteRepo := repository.NewSiteRepository(gormDB)
		for i := range demoSites {
			if err := siteRepo.Create(ctx, &demoSites[i]); err != nil {
				log.Fatalf("Failed to create site %q: %v", demoSites[i].Name, err)
			}
		}
		log.Printf("Created %d demo sites", len(demoSites))
	}

	log.Println("Seed completed")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
