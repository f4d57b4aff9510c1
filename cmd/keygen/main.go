package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/auth"
)

func main() {
	// Load .env from project root
	_ = godotenv.Load("../.env")

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// run prints a fresh JWT_SECRET and, when a password is given, its bcrypt hash
func run(w io.Writer, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: keygen [admin-password]")
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return err
	}
	if os.Getenv("JWT_SECRET") != "" {
		fmt.Fprintln(w, "# JWT_SECRET is already set; replacing it logs every user out")
	}
	fmt.Fprintf(w, "JWT_SECRET=%s\n", hex.EncodeToString(secret))

	if len(args) == 1 {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "# bcrypt hash for master_users.password_hash\n%s\n", hash)
	}
	return nil
}
