package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"paddock/config"
	"paddock/database"
	"paddock/models"
	"paddock/utils"
)

// Imports listings from a CSV for an existing owner:
//
//	go run ./scripts -file vehicles.csv -owner owner@example.com
func main() {
	path := flag.String("file", "vehicles.csv", "CSV file to import")
	ownerEmail := flag.String("owner", "", "email of the owning member")
	flag.Parse()

	if *ownerEmail == "" {
		log.Fatal("-owner is required")
	}

	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()
	utils.InitIntegrations()
	db := database.Database.Db

	var owner models.User
	if err := db.Where("email = ? AND is_deleted = ?", strings.ToLower(*ownerEmail), false).First(&owner).Error; err != nil {
		log.Fatalf("Owner %s not found: %v", *ownerEmail, err)
	}

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	rows, err := utils.ParseVehicleCSV(file)
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	log.Printf("Total rows to import: %d", len(rows))

	inserted := 0
	updated := 0
	skipped := 0

	for _, row := range rows {
		if row.Err != nil {
			log.Printf("Skipping line %d: %v", row.Line, row.Err)
			skipped++
			continue
		}

		vehicle := row.Vehicle
		vehicle.OwnerID = owner.ID

		var existing models.Vehicle
		result := db.Where("owner_id = ? AND title = ? AND is_deleted = ?", owner.ID, vehicle.Title, false).First(&existing)

		if result.Error != nil {
			if !vehicle.HasLocation() && utils.DefaultGeocoder.Configured() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				lat, lng, err := utils.DefaultGeocoder.Geocode(ctx, vehicle.LocationQuery())
				cancel()
				if err != nil {
					log.Printf("Geocoding line %d failed: %v", row.Line, err)
				} else {
					vehicle.Latitude, vehicle.Longitude = lat, lng
				}
			}
			if err := db.Create(&vehicle).Error; err != nil {
				log.Printf("Error inserting %q (line %d): %v", vehicle.Title, row.Line, err)
				skipped++
				continue
			}
			inserted++
			continue
		}

		if err := db.Model(&models.Vehicle{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"description":      vehicle.Description,
			"make":             vehicle.Make,
			"model":            vehicle.VehicleModel,
			"year":             vehicle.Year,
			"category":         vehicle.Category,
			"transmission":     vehicle.Transmission,
			"horsepower":       vehicle.Horsepower,
			"daily_rate_cents": vehicle.DailyRateCents,
			"min_rental_days":  vehicle.MinRentalDays,
			"track_ready":      vehicle.TrackReady,
			"city":             vehicle.City,
			"state":            vehicle.State,
			"address":          vehicle.Address,
			"latitude":         vehicle.Latitude,
			"longitude":        vehicle.Longitude,
			"features":         vehicle.Features,
		}).Error; err != nil {
			log.Printf("Error updating %q (line %d): %v", vehicle.Title, row.Line, err)
			skipped++
			continue
		}
		updated++
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Inserted: %d", inserted)
	log.Printf("Updated: %d", updated)
	log.Printf("Skipped: %d", skipped)
	log.Printf("Total processed: %d", inserted+updated+skipped)
}
