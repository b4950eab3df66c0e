// devtoken mints HS256 bearer tokens for local development against
// AUTH_MODE=jwt. Production traffic authenticates with Firebase ID tokens;
// this tool never touches those.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	userID := flag.String("user", "", "user id to embed as the sub claim (required)")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to JWT_SECRET)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		log.Fatal("-user is required")
	}
	if *secret == "" {
		log.Fatal("set -secret or the JWT_SECRET environment variable")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": *userID,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(*ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(*secret))
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(signed)
}
