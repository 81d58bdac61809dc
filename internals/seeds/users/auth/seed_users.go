package user

import (
	"encoding/json"
	"log"
	"os"
	"strings"

	"gorm.io/gorm"

	"hifzku_backend/internals/configs"
	authService "hifzku_backend/internals/features/users/auth/service"
	"hifzku_backend/internals/features/users/user/model"
)

type UserSeed struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SeedUsersFromJSON: file opsional; SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD selalu ikut bila diset.
func SeedUsersFromJSON(db *gorm.DB, filePath string) {
	var inputs []UserSeed

	if file, err := os.ReadFile(filePath); err == nil {
		log.Println("📥 Membaca file user:", filePath)
		if err := json.Unmarshal(file, &inputs); err != nil {
			log.Fatalf("❌ Gagal decode JSON: %v", err)
		}
	} else {
		log.Printf("ℹ️ %s tidak dibaca: %v", filePath, err)
	}

	if email := configs.GetEnv("SEED_ADMIN_EMAIL"); email != "" {
		inputs = append(inputs, UserSeed{
			UserName: configs.GetEnv("SEED_ADMIN_NAME", "Administrator"),
			Email:    email,
			Password: configs.GetEnv("SEED_ADMIN_PASSWORD"),
			Role:     "admin",
		})
	}

	for _, data := range inputs {
		email := strings.ToLower(strings.TrimSpace(data.Email))
		if email == "" || len(data.Password) < 8 {
			log.Printf("⚠️ Seed user '%s' dilewati: email/password tidak valid", data.Email)
			continue
		}

		var count int64
		if err := db.Model(&model.UserModel{}).Where("user_email = ?", email).Count(&count).Error; err != nil {
			log.Printf("❌ Gagal cek user '%s': %v", email, err)
			continue
		}
		if count > 0 {
			log.Printf("ℹ️ User dengan email '%s' sudah ada, dilewati.", email)
			continue
		}

		// 🔐 Hash password sebelum disimpan
		hashedPassword, err := authService.HashPassword(data.Password)
		if err != nil {
			log.Printf("❌ Gagal hash password untuk '%s': %v", email, err)
			continue
		}

		newUser := model.UserModel{
			UserName:     data.UserName,
			UserEmail:    email,
			UserPassword: hashedPassword,
			UserRole:     data.Role,
			UserIsActive: true,
		}
		if err := db.Create(&newUser).Error; err != nil {
			log.Printf("❌ Gagal insert user '%s': %v", email, err)
		} else {
			log.Printf("✅ Berhasil insert user '%s'", email)
		}
	}
}
