package main

import (
	"context"
	"fmt"
	"log"

	"github.com/marbabud/domownik/internal/config"
	"github.com/marbabud/domownik/internal/database"
	"github.com/marbabud/domownik/internal/models"
	"github.com/marbabud/domownik/internal/protocols"
	"github.com/marbabud/domownik/internal/store"
	"github.com/marbabud/domownik/internal/utils"
)

func main() {
	fmt.Println("🌱 DOMOWNIK Demo Data Seeder")

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.UserAccount{},
		&models.StoredDocument{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	fmt.Println("✅ Migrations complete")

	var userCount int64
	db.Model(&models.UserAccount{}).Count(&userCount)
	if userCount > 0 {
		fmt.Printf("⚠️  Database already has %d users. Aborting, nothing modified.\n", userCount)
		return
	}

	// Demo accounts, one per role
	demoUsers := []struct {
		username, password, name, role string
	}{
		{"admin", "admin123", "Administrator", models.RoleAdmin},
		{"ewa", "ewa123", "Ewa Kowalska", models.RoleSprzedawca},
		{"jan", "jan123", "Jan Nowak", models.RoleMonter},
	}

	for _, u := range demoUsers {
		hashed, err := utils.HashPassword(u.password)
		if err != nil {
			log.Fatalf("❌ Failed to hash password: %v", err)
		}
		user := models.UserAccount{
			Username:    u.username,
			Password:    hashed,
			DisplayName: u.name,
			Role:        u.role,
			IsActive:    true,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("❌ Failed to create user %s: %v", u.username, err)
		}
		fmt.Printf("👤 Created user %s (%s)\n", u.username, u.role)
	}

	// Sample protocols: one draft plus one finalized record per kind
	ctx := context.Background()
	repo := protocols.NewRepository(store.NewGormStore(db.DB))

	draftID, err := repo.CreateDraft(ctx, store.Doc{
		"pomieszczenie": "Sypialnia",
		"imie_nazwisko": "Anna Wiśniewska",
		"telefon":       "500100200",
	}, "jan", protocols.KindDrzwi)
	if err != nil {
		log.Fatalf("❌ Failed to create draft: %v", err)
	}
	fmt.Printf("📝 Created draft %s\n", draftID)

	samples := []struct {
		kind   protocols.Kind
		fields store.Doc
	}{
		{protocols.KindDrzwi, store.Doc{
			"pomieszczenie":    "Salon",
			"imie_nazwisko":    "Anna Wiśniewska",
			"telefon":          "500100200",
			"szerokosc_otworu": "90",
			"wysokosc_otworu":  "206",
			"mierzona_od":      "posadzki",
			"typ_drzwi":        "przylgowe",
			"oscieznica":       "regulowana",
			"strona_otwierania": map[string]bool{
				"lewe_przyl": true,
			},
		}},
		{protocols.KindDrzwiWejsciowe, store.Doc{
			"pomieszczenie":    "Wejście główne",
			"nazwisko":         "Kaczmarek",
			"telefon":          "600300400",
			"szerokosc_otworu": "100",
			"wysokosc_otworu":  "210",
			"okapnik":          "tak",
		}},
		{protocols.KindPodlogi, store.Doc{
			"pomieszczenie":  "Pokój dziecięcy",
			"imie_nazwisko":  "Łukasz Zieliński",
			"telefon":        "700500600",
			"system_montazu": "click",
			"nw":             4,
			"l":              12,
		}},
	}

	for _, s := range samples {
		id, code, err := repo.CreateMeasuredRecord(ctx, s.fields, "jan", s.kind)
		if err != nil {
			log.Fatalf("❌ Failed to seed %s record: %v", s.kind, err)
		}
		fmt.Printf("📄 Seeded %s record %s (kod: %s)\n", s.kind, id, code)
	}

	fmt.Println("✅ Demo data ready")
}
