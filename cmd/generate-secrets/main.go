package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fastrail/booking-backend/pkg/jwt"
	"github.com/joho/godotenv"
)

func main() {
	var staffID, name, roles string
	var ttl time.Duration
	flag.StringVar(&staffID, "staff-id", "", "Issue an access token for this staff id using JWT_SECRET")
	flag.StringVar(&name, "name", "", "Staff display name carried in the token")
	flag.StringVar(&roles, "roles", jwt.RoleStaff, "Comma separated roles")
	flag.DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	flag.Parse()

	if staffID == "" {
		printSecret()
		return
	}

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "fastrail"
	}

	token, err := jwt.NewService(secret, issuer, ttl).GenerateAccessToken(staffID, name, strings.Split(roles, ","))
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}

func printSecret() {
	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator for FastRail")
	fmt.Println("===========================================")
	fmt.Println()

	secret, err := newJWTSecret(32) // 256-bit
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("Add this to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", secret)
	fmt.Println()
	fmt.Println("Keep this secret safe and never commit it to version control.")
	fmt.Println("Issue a gate staff token with: generate-secrets -staff-id <id> -name <name>")
	fmt.Println("===========================================")
}

// newJWTSecret returns n random bytes hex encoded, suitable for JWT_SECRET
func newJWTSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
