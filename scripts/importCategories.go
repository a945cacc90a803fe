package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strings"

	"lms/config"
	"lms/database"
	courseModels "lms/models/course"
	"lms/utils"

	"gorm.io/gorm"
)

// Imports course categories from a CSV with "name" and "description" columns,
// then recomputes total_lessons for every course.
func main() {
	file := flag.String("file", "categories.csv", "CSV file with name,description columns")
	refreshOnly := flag.Bool("refresh-lessons", false, "skip the import and only refresh lesson counts")
	flag.Parse()

	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	if !*refreshOnly {
		importCategories(db, *file)
	}

	updated, err := utils.RefreshAllLessonCounts(db)
	if err != nil {
		log.Fatalf("Failed to refresh lesson counts: %v", err)
	}
	log.Printf("Lesson counts refreshed, %d courses changed", updated)
}

func importCategories(db *gorm.DB, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	log.Printf("Total rows to import: %d", len(records)-1)

	inserted, updated, skipped := 0, 0, 0
	for _, row := range records[1:] {
		name := getField(row, headerIndex, "name")
		if name == "" {
			skipped++
			continue
		}
		description := getField(row, headerIndex, "description")

		var existing courseModels.Category
		if err := db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&existing).Error; err != nil {
			if err := db.Create(&courseModels.Category{Name: name, Description: description}).Error; err != nil {
				log.Printf("Error inserting category %q: %v", name, err)
				continue
			}
			inserted++
			continue
		}

		if existing.Description == description {
			skipped++
			continue
		}
		if err := db.Model(&existing).Update("description", description).Error; err != nil {
			log.Printf("Error updating category %q: %v", name, err)
			continue
		}
		updated++
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Inserted: %d", inserted)
	log.Printf("Updated: %d", updated)
	log.Printf("Skipped: %d", skipped)
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
