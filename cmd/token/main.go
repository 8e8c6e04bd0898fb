// Command token prints a signed access token for local testing. Production
// tokens come from the auth service.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/SChris-dev/EcoShop-API/config"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/pkg/auth"
)

func main() {
	var (
		configPath string
		userID     int64
		admin      bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Int64Var(&userID, "user", 2, "User id to embed in the token")
	flag.BoolVar(&admin, "admin", false, "Issue an admin token")
	flag.Parse()

	if err := run(configPath, shared.Principal{UserID: userID, IsAdmin: admin}); err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, p shared.Principal) error {
	if p.UserID <= 0 {
		return fmt.Errorf("user id must be positive")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	token, err := issuer.Issue(p)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Println(token)
	return nil
}
