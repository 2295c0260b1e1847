package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jpark/addressbook-backend/config"
	"github.com/jpark/addressbook-backend/internal/app/model"
	"github.com/jpark/addressbook-backend/internal/app/repository"
	"github.com/jpark/addressbook-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Seeds the address book either from an .xlsx workbook (columns: Street,
// City, State, Zip Code, Latitude, Longitude) or, with no argument, from a
// small built-in demo set.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	addressRepo := repository.NewAddressRepository(db.GetDB())

	var addresses []model.Address
	if len(os.Args) > 1 {
		filePath := os.Args[1]
		fmt.Printf("Reading XLSX file: %s\n", filePath)
		addresses, err = readAddressesFromXLSX(filePath)
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}
	} else {
		addresses = demoAddresses()
		fmt.Println("No file given, using built-in demo data")
	}

	fmt.Printf("Total addresses to import: %d\n", len(addresses))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 1000
	if err := addressRepo.BulkCreate(addresses, batchSize); err != nil {
		log.Fatal("Failed to bulk create addresses:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total addresses imported: %d\n", len(addresses))
}

func readAddressesFromXLSX(filePath string) ([]model.Address, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var addresses []model.Address
	skippedCount := 0
	invalidCoordCount := 0

	for i, row := range rows {
		// First row is the header
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 6 {
			skippedCount++
			continue
		}

		street := strings.TrimSpace(row[0])
		city := strings.TrimSpace(row[1])
		state := strings.TrimSpace(row[2])
		zipCode := strings.TrimSpace(row[3])
		latitudeStr := strings.TrimSpace(row[4])
		longitudeStr := strings.TrimSpace(row[5])

		if street == "" || city == "" {
			skippedCount++
			continue
		}

		lat, errLat := strconv.ParseFloat(latitudeStr, 64)
		lon, errLon := strconv.ParseFloat(longitudeStr, 64)
		if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			invalidCoordCount++
			skippedCount++
			continue
		}

		addresses = append(addresses, model.Address{
			Street:    street,
			City:      city,
			State:     state,
			ZipCode:   zipCode,
			Latitude:  lat,
			Longitude: lon,
		})
	}

	fmt.Printf("Parsed %d addresses (%d skipped, %d with invalid coordinates)\n",
		len(addresses), skippedCount, invalidCoordCount)

	return addresses, nil
}

func demoAddresses() []model.Address {
	return []model.Address{
		{Street: "350 5th Ave", City: "New York", State: "NY", ZipCode: "10118", Latitude: 40.7484, Longitude: -73.9857},
		{Street: "1600 Pennsylvania Ave NW", City: "Washington", State: "DC", ZipCode: "20500", Latitude: 38.8977, Longitude: -77.0365},
		{Street: "221B Baker St", City: "London", State: "Greater London", ZipCode: "NW1 6XE", Latitude: 51.5237, Longitude: -0.1585},
		{Street: "5 Avenue Anatole France", City: "Paris", State: "Ile-de-France", ZipCode: "75007", Latitude: 48.8584, Longitude: 2.2945},
		{Street: "1 Chome-1-2 Oshiage", City: "Tokyo", State: "Tokyo", ZipCode: "131-0045", Latitude: 35.7101, Longitude: 139.8107},
		{Street: "Bennelong Point", City: "Sydney", State: "NSW", ZipCode: "2000", Latitude: -33.8568, Longitude: 151.2153},
		{Street: "Praca Marechal Aguas", City: "Rio de Janeiro", State: "RJ", ZipCode: "20021-340", Latitude: -22.9519, Longitude: -43.2105},
		{Street: "1 Infinite Loop", City: "Cupertino", State: "CA", ZipCode: "95014", Latitude: 37.3318, Longitude: -122.0312},
	}
}
