package main

import (
	"encoding/csv"
	"internhub/config"
	"internhub/database"
	"internhub/models"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Imports accounts from a CSV with the header
// firstName,lastName,email,role,password,sectors
// where sectors is a ";" separated list of sector names (instructors only).
// Existing emails are updated; unknown sectors are created.
func main() {
	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	path := "users.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.TrimSpace(h)] = i
	}
	log.Printf("Total rows to import: %d", len(records)-1)

	inserted, updated, skipped := 0, 0, 0
	sectorCache := make(map[string]models.Sector)

	for i, row := range records[1:] {
		email := strings.ToLower(getField(row, headerIndex, "email"))
		role, ok := models.ParseRole(getField(row, headerIndex, "role"))
		if email == "" || !ok {
			log.Printf("Row %d skipped: missing email or unknown role", i+2)
			skipped++
			continue
		}

		var sectors []models.Sector
		if role == models.RoleInstructor {
			for _, name := range strings.Split(getField(row, headerIndex, "sectors"), ";") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				sector, err := findOrCreateSector(db, sectorCache, name)
				if err != nil {
					log.Printf("Row %d: sector %q failed: %v", i+2, name, err)
					continue
				}
				sectors = append(sectors, sector)
			}
		}

		var existing models.User
		result := db.Where("LOWER(email) = ?", email).First(&existing)
		if result.Error != nil {
			password := getField(row, headerIndex, "password")
			if len(password) < 8 {
				log.Printf("Row %d skipped: password must be at least 8 characters", i+2)
				skipped++
				continue
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), config.AppConfig.SaltRound)
			if err != nil {
				log.Printf("Row %d: error hashing password: %v", i+2, err)
				skipped++
				continue
			}
			user := models.User{
				FirstName: getField(row, headerIndex, "firstName"),
				LastName:  getField(row, headerIndex, "lastName"),
				Email:     email,
				Password:  string(hashed),
				Role:      role,
				Sectors:   sectors,
			}
			if err := db.Create(&user).Error; err != nil {
				log.Printf("Error inserting user %s: %v", email, err)
				continue
			}
			inserted++
			continue
		}

		existing.FirstName = getField(row, headerIndex, "firstName")
		existing.LastName = getField(row, headerIndex, "lastName")
		existing.Role = role
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&existing).Association("Sectors").Replace(sectors)
		})
		if err != nil {
			log.Printf("Error updating user %s: %v", email, err)
			continue
		}
		updated++
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Inserted: %d", inserted)
	log.Printf("Updated: %d", updated)
	log.Printf("Skipped: %d", skipped)
}

func findOrCreateSector(db *gorm.DB, cache map[string]models.Sector, name string) (models.Sector, error) {
	key := strings.ToLower(name)
	if s, ok := cache[key]; ok {
		return s, nil
	}
	var sector models.Sector
	err := db.Where("LOWER(name) = ?", key).Attrs(models.Sector{Name: name}).FirstOrCreate(&sector).Error
	if err != nil {
		return sector, err
	}
	cache[key] = sector
	return sector, nil
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
