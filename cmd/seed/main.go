// Seeds a development database with an admin account, the service catalog,
// and a sample marketing partner.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"aiplatform/internal/domain"
	"aiplatform/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	users := postgres.NewUserRepository(db)
	partners := postgres.NewPartnerRepository(db)
	services := postgres.NewServiceRepository(db)

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin-change-me"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := &domain.User{
		ID:           uuid.New(),
		Email:        "admin@aiplatform.local",
		Name:         "Platform Admin",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		Status:       domain.UserStatusActive,
		Plan:         "free",
		Balance:      decimal.Zero,
		TotalSpent:   decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Printf("Admin user not created (may already exist): %v", err)
	} else {
		log.Printf("Admin user created: %s", admin.Email)
	}

	catalog := []domain.Service{
		{
			Name:        "AI Chatbot Pro",
			Description: "Conversational AI assistant with custom training",
			Price:       decimal.NewFromInt(29),
			Features:    domain.FeatureList{"Unlimited conversations", "Custom knowledge base", "API access"},
			Popular:     true,
		},
		{
			Name:        "Image Generator",
			Description: "Text-to-image generation with style presets",
			Price:       decimal.NewFromInt(49),
			Features:    domain.FeatureList{"1000 images per month", "HD resolution", "Commercial license"},
		},
		{
			Name:        "Voice Synthesis",
			Description: "Natural text-to-speech in 40 languages",
			Price:       decimal.NewFromInt(39),
			Features:    domain.FeatureList{"500 minutes per month", "Voice cloning", "SSML support"},
		},
		{
			Name:        "Document Analyzer",
			Description: "Extract and summarize content from documents",
			Price:       decimal.NewFromInt(59),
			Features:    domain.FeatureList{"OCR included", "Batch processing", "Export to CSV"},
		},
	}
	for i := range catalog {
		catalog[i].ID = uuid.New()
		catalog[i].CreatedAt = now
		if err := services.Create(ctx, &catalog[i]); err != nil {
			log.Printf("Service %q not created: %v", catalog[i].Name, err)
			continue
		}
		log.Printf("Service created: %s ($%s)", catalog[i].Name, catalog[i].Price.StringFixed(2))
	}

	partnerHash, _ := bcrypt.GenerateFromPassword([]byte("partner-change-me"), bcrypt.DefaultCost)
	partner := &domain.MarketingPartner{
		ID:                uuid.New(),
		Name:              "Sarah Ahmed",
		Email:             "sarah@agency.example",
		Phone:             "+20 100 123 4567",
		Company:           "Adify Media",
		PasswordHash:      string(partnerHash),
		Status:            domain.PartnerStatusActive,
		ReferralCode:      "SARAH25",
		TotalCommission:   decimal.Zero,
		AvailableEarnings: decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := partners.Create(ctx, partner); err != nil {
		log.Printf("Sample partner not created (may already exist): %v", err)
	} else {
		log.Printf("Sample partner created: %s (code %s)", partner.Email, partner.ReferralCode)
	}

	log.Println("Seed complete")
}
