// Command devtoken mints a bearer token signed with JWT_SECRET so the API
// can be exercised locally without an identity provider.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/AnshRaj112/hostel-survival-kit/internal/auth"
	"github.com/AnshRaj112/hostel-survival-kit/internal/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	uid := pflag.StringP("uid", "u", "", "user id to put in the token subject (required)")
	name := pflag.StringP("name", "n", "", "display name claim")
	ttl := pflag.DurationP("ttl", "t", 24*time.Hour, "token lifetime")
	secret := pflag.String("secret", cfg.JWTSecret, "signing secret (defaults to JWT_SECRET)")
	pflag.Parse()

	if *uid == "" {
		fmt.Fprintln(os.Stderr, "devtoken: --uid is required")
		pflag.Usage()
		os.Exit(2)
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "devtoken: no secret; set JWT_SECRET or pass --secret")
		os.Exit(2)
	}

	token, err := auth.NewJWTVerifier(*secret, cfg.JWTIssuer, cfg.JWTAudience).Mint(*uid, *name, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
