// Package auth implements credential handling and token issuance.
package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

// JwtIssuer is stamped into every token this service signs and checked
// back on every request.
const JwtIssuer = "JobTrail"

// AccessTokenTTL bounds how long an issued token stays valid.
const AccessTokenTTL = 24 * time.Hour

var secretKey = os.Getenv("SECRET_KEY")

// GenerateToken signs an access token carrying the user id as subject.
func GenerateToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    JwtIssuer,
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("Failed to sign token: %s", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a signed token, rejecting any signing
// method other than HMAC.
func ValidateToken(encoded string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(encoded, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Invalid token")
		}
		return []byte(secretKey), nil
	})
}
