// Command adduser creates user accounts out-of-band.
//
// There is deliberately no signup endpoint — students and teachers are
// provisioned by whoever runs the server:
//
//	go run ./cmd/adduser -username alice -password s3cret
//	go run ./cmd/adduser -username teacher -password s3cret -admin
//
// The password is bcrypt-hashed here; the database never sees plaintext.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sakif/codespace/internal/auth"
	"github.com/sakif/codespace/internal/config"
	"github.com/sakif/codespace/internal/model"
	"github.com/sakif/codespace/internal/repository/sqlite"
)

func main() {
	username := flag.String("username", "", "username for the new account (required)")
	password := flag.String("password", "", "password for the new account (required)")
	admin := flag.Bool("admin", false, "grant the account teacher/admin rights")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "adduser: -username and -password are required")
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "adduser: loading .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "adduser: %v\n", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adduser: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	hash, err := auth.NewPasswordService().Hash(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "adduser: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user := &model.User{
		Username:     *username,
		PasswordHash: hash,
		IsAdmin:      *admin,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "adduser: creating user: %v\n", err)
		os.Exit(1)
	}

	role := "student"
	if *admin {
		role = "admin"
	}
	fmt.Printf("created %s account %q (id %s)\n", role, user.Username, user.ID)
}
