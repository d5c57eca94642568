package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/samirrijal/halalfinder/internal/adapters/postgres"
	"github.com/samirrijal/halalfinder/internal/core/domain"
	"github.com/samirrijal/halalfinder/internal/pkg/config"
)

// Manifest is the seed file format: countries containing cities containing
// venues. IDs are assigned by the database; natural keys (names) dedupe
// repeat runs.
type Manifest struct {
	Source    string         `json:"source"`
	Countries []CountryEntry `json:"countries"`
}

type CountryEntry struct {
	Name      string      `json:"name"`
	FlagEmoji string      `json:"flag_emoji"`
	Status    string      `json:"status"`
	Cities    []CityEntry `json:"cities"`
}

type CityEntry struct {
	Name   string       `json:"name"`
	Venues []VenueEntry `json:"venues"`
}

type VenueEntry struct {
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	OverallRating float64 `json:"overall_rating"`
	ReviewCount   int     `json:"review_count"`

	PrayerFacilitiesRating   *float64 `json:"prayer_facilities_rating,omitempty"`
	CleanlinessRating        *float64 `json:"cleanliness_rating,omitempty"`
	HalalCertificationRating *float64 `json:"halal_certification_rating,omitempty"`
	FoodQualityRating        *float64 `json:"food_quality_rating,omitempty"`
}

func main() {
	cfg, err := config.Load("halalfinder-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	manifestPath := "seed.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("HalalFinder seeder: %d countries from %s", len(manifest.Countries), manifest.Source)

	venues := postgres.NewVenueRepo(db)
	for _, country := range manifest.Countries {
		if err := seedCountry(ctx, db, venues, country); err != nil {
			log.Printf("ERROR [%s]: %v", country.Name, err)
		}
	}

	log.Println("seeding complete")
}

func seedCountry(ctx context.Context, db *postgres.DB, venues *postgres.VenueRepo, country CountryEntry) error {
	status := country.Status
	if status == "" {
		status = "active"
	}

	var countryID int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO countries (name, flag_emoji, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET flag_emoji = EXCLUDED.flag_emoji, status = EXCLUDED.status
		RETURNING id
	`, country.Name, country.FlagEmoji, status).Scan(&countryID)
	if err != nil {
		return err
	}

	total := 0
	for _, city := range country.Cities {
		var cityID int64
		err := db.Pool.QueryRow(ctx, `
			INSERT INTO cities (country_id, name)
			VALUES ($1, $2)
			ON CONFLICT (country_id, name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, countryID, city.Name).Scan(&cityID)
		if err != nil {
			return err
		}

		batch := make([]domain.Venue, 0, len(city.Venues))
		for _, v := range city.Venues {
			batch = append(batch, toVenue(v, cityID))
		}
		if err := venues.UpsertBatch(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
	}

	log.Printf("OK  %s: %d cities, %d venues", country.Name, len(country.Cities), total)
	return nil
}

func toVenue(e VenueEntry, cityID int64) domain.Venue {
	v := domain.Venue{
		Type:        domain.VenueType(e.Type),
		Name:        e.Name,
		Address:     e.Address,
		CityID:      strconv.FormatInt(cityID, 10),
		Rating:      e.OverallRating,
		ReviewCount: e.ReviewCount,
	}
	if e.Latitude != nil && e.Longitude != nil {
		v.Location = &domain.GeoPoint{Lat: *e.Latitude, Lon: *e.Longitude}
	}
	if e.PrayerFacilitiesRating != nil || e.CleanlinessRating != nil {
		v.Mosque = &domain.MosqueRatings{
			PrayerFacilities: deref(e.PrayerFacilitiesRating),
			Cleanliness:      deref(e.CleanlinessRating),
		}
	}
	if e.HalalCertificationRating != nil || e.FoodQualityRating != nil {
		v.Restaurant = &domain.RestaurantRatings{
			HalalCertification: deref(e.HalalCertificationRating),
			FoodQuality:        deref(e.FoodQualityRating),
		}
	}
	return v
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
