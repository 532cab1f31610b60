// Command opstoken mints an access token for calling the operator
// endpoints (manual pass triggers, status, settings).
//
// Usage:
//
//	opstoken -user=ops-runbook -ttl=30m
//	opstoken -role=employee -user=<user-uuid> -employee=<employee-uuid>
//	opstoken -revoke=<token>
//
// The signing secret is JWT_SECRET_KEY, read from the environment or .env.
// The token is printed alone on stdout so it can be captured by a shell.
//
// -revoke writes the token to the Redis revocation store shared with the API
// (REDIS_ADDR, REDIS_USER, REDIS_PASSWORD, REDIS_DB), so it is rejected until
// it expires.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/user"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/jwt"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "operator", "Subject written to the user_id claim")
	role := flag.String("role", string(user.RoleOperator), "Role claim: operator|owner|manager|employee")
	employeeID := flag.String("employee", "", "Employee id claim (required for role=employee)")
	ttl := flag.Duration("ttl", time.Hour, "Token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET_KEY"), "Signing secret (defaults to JWT_SECRET_KEY)")
	revoke := flag.String("revoke", "", "Revoke this token instead of minting one")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "error: JWT_SECRET_KEY is not set and -secret was not given")
		os.Exit(1)
	}

	if *revoke != "" {
		if err := revokeToken(*secret, *revoke); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "token revoked")
		return
	}
	if *ttl <= 0 {
		fmt.Fprintln(os.Stderr, "error: -ttl must be positive")
		os.Exit(1)
	}

	r := user.Role(*role)
	if !r.IsValid() {
		fmt.Fprintf(os.Stderr, "error: unknown role %q\n", *role)
		os.Exit(1)
	}
	if r == user.RoleEmployee && *employeeID == "" {
		fmt.Fprintln(os.Stderr, "error: -employee is required for role=employee")
		os.Exit(1)
	}

	var empID *string
	if *employeeID != "" {
		empID = employeeID
	}

	svc := jwt.NewJWTService(*secret, ttl.String())
	token, expiresAt, err := svc.GenerateAccessToken(*userID, empID, r)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "role=%s expires=%s\n", r, time.Unix(expiresAt, 0).Format(time.RFC3339))
	fmt.Println(token)
}

func revokeToken(secret, token string) error {
	redisDB, err := strconv.Atoi(envOr("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	client, err := database.NewRedisClient(database.RedisOptions{
		Addr:     os.Getenv("REDIS_ADDR"),
		Username: os.Getenv("REDIS_USER"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		return fmt.Errorf("REDIS_ADDR is not set; revocations are only shared through Redis")
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The expiration setting is unused when revoking.
	svc := jwt.NewJWTService(secret, "1h", jwt.WithRevocationStore(jwt.NewRedisRevocationStore(client)))
	return svc.RevokeToken(ctx, token)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
