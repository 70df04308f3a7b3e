package main

import (
	"context"
	"log"
	"time"

	"tripmarket/internal/database"
	"tripmarket/internal/domain"
	"tripmarket/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	db, err := database.Connect("tripmarket.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM packages")
	db.Exec("DELETE FROM users")

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	packages := repository.NewPackageRepository(db)

	log.Println("Creating users...")

	admin := seedUser(ctx, users, "admin@tripmarket.io", "admin123", "Admin", domain.RoleAdmin)
	vendor := seedUser(ctx, users, "vendor@tripmarket.io", "vendor123", "Savanna Tours", domain.RoleVendor)
	traveler := seedUser(ctx, users, "traveler@tripmarket.io", "traveler123", "Ada Okafor", domain.RoleTraveler)
	log.Printf("users: admin=%d vendor=%d traveler=%d", admin.ID, vendor.ID, traveler.ID)

	log.Println("Creating packages...")

	start := time.Now().UTC().AddDate(0, 0, 7)
	end := start.AddDate(0, 3, 0)

	capacity := 10
	slots := capacity
	safari := &domain.TravelPackage{
		VendorID:       vendor.ID,
		Title:          "Serengeti Safari Adventure",
		Description:    "Five days across the Serengeti with a local guide.",
		Destination:    "Tanzania",
		Price:          1450,
		Currency:       "USD",
		Status:         domain.PackagePublished,
		Capacity:       &capacity,
		AvailableSlots: &slots,
		StartDate:      &start,
		EndDate:        &end,
	}
	if err := packages.Create(ctx, safari); err != nil {
		log.Fatal(err)
	}

	villa := &domain.TravelPackage{
		VendorID:    vendor.ID,
		Title:       "Zanzibar Beach Villa",
		Description: "Private villa, whole-property rental, one party per date.",
		Destination: "Zanzibar",
		Price:       320,
		Currency:    "USD",
		Status:      domain.PackagePublished,
		StartDate:   &start,
		EndDate:     &end,
	}
	if err := packages.Create(ctx, villa); err != nil {
		log.Fatal(err)
	}

	log.Printf("packages: safari=%d villa=%d", safari.ID, villa.ID)
	log.Println("Seed complete.")
}

func seedUser(ctx context.Context, users *repository.UserRepository, email, password, name string, role domain.UserRole) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Name:         name,
	}
	if err := users.Create(ctx, u); err != nil {
		log.Fatal(err)
	}
	return u
}
