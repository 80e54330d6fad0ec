package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
)

// Issues a session credential signed with JWT_SECRET_KEY, for local testing.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Define command line flags
	userID := flag.String("user", "", "User ID for the token")
	email := flag.String("email", "", "Email for the token")
	role := flag.String("role", string(domain.RoleAdmin), "One of ADMIN, DENTIST, RECEPTIONIST")
	expirationHours := flag.Int("exp", 24, "Token expiration in hours")
	tenantID := flag.String("tenant", "", "Tenant ID for the token (empty for the bootstrap admin)")
	flag.Parse()

	if *userID == "" {
		log.Fatal("User ID is required")
	}

	normalized := strings.ToUpper(strings.TrimSpace(*role))
	if !domain.IsValidRole(normalized) {
		log.Fatalf("Invalid role %q", *role)
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}

	codec, err := auth.NewTokenCodec(secret, time.Duration(*expirationHours)*time.Hour)
	if err != nil {
		log.Fatalf("Error creating codec: %v", err)
	}

	tokenString, err := codec.Issue(auth.Claims{
		UserID:   *userID,
		Email:    *email,
		Role:     domain.Role(normalized),
		TenantID: *tenantID,
	})
	if err != nil {
		log.Fatalf("Error signing token: %v", err)
	}

	fmt.Printf("Generated JWT Token:\n%s\n", tokenString)
}
