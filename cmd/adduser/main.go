package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/isdelr/budget-manager-be/internal/database"
	"github.com/isdelr/budget-manager-be/internal/services"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// dbEnv holds the database settings shared with the server's configuration.
type dbEnv struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	URL    string `env:"DATABASE_URL"    envDefault:"./budget.db"`
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()
	var defaults dbEnv
	if err := env.Parse(&defaults); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email address")
	fullName := fs.String("name", "", "Full name (optional)")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	driver := fs.String("driver", defaults.Driver, "Database driver (sqlite or postgres)")
	dsn := fs.String("db", defaults.URL, "Database file or connection URL")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> -email <email> [-password <password>] [-name <full name>] [-driver <driver>] [-db <dsn>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user, email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	db, err := database.New(*driver, *dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	ctx := context.Background()
	activity := services.NewActivityService(db)
	users := services.NewUserService(db, nil, activity)

	user, err := users.CreateUser(ctx, services.RegisterInput{
		Username: *username,
		Password: password,
		Email:    *email,
		FullName: *fullName,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			return fmt.Errorf("user %s already exists", *username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	if err := activity.CreateActivity(ctx, "auth.register", services.LevelInfo, "Account created by an operator.", &user.ID); err != nil {
		fmt.Fprintf(stderr, "Warning: failed to record activity: %v\n", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Username, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
