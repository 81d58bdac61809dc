package subjects

import (
	"encoding/json"
	"log"
	"os"

	"gorm.io/gorm"

	"hifzku_backend/internals/features/clubs/subjects/model"
)

type SubjectSeed struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func SeedSubjectsFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Membaca file subject:", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("❌ Gagal membaca file JSON: %v", err)
		return
	}
	var inputs []SubjectSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		log.Printf("❌ Gagal decode JSON: %v", err)
		return
	}

	for _, in := range inputs {
		var count int64
		if err := db.Model(&model.SubjectModel{}).Where("subject_name = ?", in.Name).Count(&count).Error; err != nil {
			log.Printf("❌ Gagal cek subject '%s': %v", in.Name, err)
			continue
		}
		if count > 0 {
			continue
		}
		row := model.SubjectModel{SubjectName: in.Name, SubjectDescription: in.Description}
		if err := db.Create(&row).Error; err != nil {
			log.Printf("❌ Gagal insert subject '%s': %v", in.Name, err)
			continue
		}
		log.Printf("✅ Berhasil insert subject '%s'", in.Name)
	}
}
