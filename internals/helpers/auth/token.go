// file: internals/helpers/auth/token.go
package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// BuildAccessClaims: klaim access token (sub, role, club_ids).
func BuildAccessClaims(a Actor, now time.Time, ttl time.Duration) jwt.MapClaims {
	ids := make([]string, 0, len(a.ClubIDs))
	for _, id := range a.ClubIDs {
		ids = append(ids, id.String())
	}
	return jwt.MapClaims{
		"typ":       "access",
		"sub":       a.UserID.String(),
		"user_name": a.Name,
		"role":      a.Role,
		"club_ids":  ids,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
}

// SignAccessToken: HS256.
func SignAccessToken(a Actor, secret string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, errors.New("JWT secret is empty")
	}
	claims := BuildAccessClaims(a, now, ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	return signed, now.Add(ttl), err
}

// ParseAccessToken: verifikasi tanda tangan + exp, lalu bangun Actor dari klaim.
func ParseAccessToken(raw, secret string) (*Actor, time.Time, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, time.Time{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, time.Time{}, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != "" && typ != "access" {
		return nil, time.Time{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	uid, err := uuid.Parse(sub)
	if err != nil {
		return nil, time.Time{}, ErrInvalidToken
	}
	a := &Actor{UserID: uid}
	a.Role, _ = claims["role"].(string)
	a.Name, _ = claims["user_name"].(string)
	if raw, ok := claims["club_ids"].([]any); ok {
		for _, v := range raw {
			s, _ := v.(string)
			if id, err := uuid.Parse(s); err == nil {
				a.ClubIDs = append(a.ClubIDs, id)
			}
		}
	}

	var exp time.Time
	if v, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(v), 0)
	}
	return a, exp, nil
}
