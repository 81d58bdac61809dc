package seeds

import (
	"gorm.io/gorm"

	categories "hifzku_backend/internals/seeds/clubs/categories"
	subjects "hifzku_backend/internals/seeds/clubs/subjects"
	users "hifzku_backend/internals/seeds/users/auth"
)

func RunAllSeeds(db *gorm.DB) {
	//* Master data
	categories.SeedCategoriesFromJSON(db, "internals/seeds/clubs/categories/data_categories.json")
	subjects.SeedSubjectsFromJSON(db, "internals/seeds/clubs/subjects/data_subjects.json")

	//* User
	users.SeedUsersFromJSON(db, "internals/seeds/users/auth/data_users.json")
}
