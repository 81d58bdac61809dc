package categories

import (
	"encoding/json"
	"log"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hifzku_backend/internals/features/clubs/categories/model"
)

type CategorySeed struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Gender      string `json:"gender"`
}

// SeedCategoriesFromJSON: idempoten (ON CONFLICT category_name DO NOTHING).
func SeedCategoriesFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file kategori:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("❌ Gagal membaca file JSON: %v", err)
		return
	}
	var inputs []CategorySeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		log.Printf("❌ Gagal decode JSON: %v", err)
		return
	}

	rows := make([]model.CategoryModel, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, model.CategoryModel{
			CategoryName:        in.Name,
			CategoryDisplayName: in.DisplayName,
			CategoryGender:      model.CategoryGender(in.Gender),
		})
	}
	if len(rows) == 0 {
		return
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_name"}},
		DoNothing: true,
	}).Create(&rows)
	if res.Error != nil {
		log.Printf("❌ Gagal insert kategori: %v", res.Error)
		return
	}
	log.Printf("✅ %d kategori baru", res.RowsAffected)
}
