// file: internals/helpers/pg_error.go
package helper

import (
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SQLState mengambil kode error Postgres dari pgx atau lib/pq (kosong jika bukan error PG).
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation: 23505 atau hasil TranslateError GORM.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || SQLState(err) == "23505"
}

func MapPGError(err error) (int, string) {
	// 23503 = foreign_key_violation
	// 23505 = unique_violation
	// 23514 = check_violation
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "data tidak ditemukan"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "Data duplikat (unique violation)."
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return http.StatusBadRequest, "Referensi tidak ditemukan (FK violation)."
	}
	switch SQLState(err) {
	case "23503":
		return http.StatusBadRequest, "Referensi tidak ditemukan (FK violation)."
	case "23505":
		return http.StatusConflict, "Data duplikat (unique violation)."
	case "23514":
		return http.StatusBadRequest, "Nilai di luar batas (check violation)."
	}
	return http.StatusInternalServerError, fiber.ErrInternalServerError.Message
}

func WritePGError(c *fiber.Ctx, err error) error {
	code, msg := MapPGError(err)
	if code >= 500 {
		log.Printf("[DB] %s %s: %v", c.Method(), c.Path(), err)
	}
	return JsonError(c, code, msg)
}
