package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeMC777/storefront-ecom/internal/config"
	"github.com/MikeMC777/storefront-ecom/internal/db"
	"github.com/MikeMC777/storefront-ecom/internal/logs"
	"github.com/MikeMC777/storefront-ecom/internal/user"
)

// runSetAdmin creates the account or promotes an existing one to admin and
// resets its password. It returns the process exit code.
func runSetAdmin(arg string) int {
	email, password, ok := strings.Cut(arg, ":")
	email = user.NormalizeEmail(email)
	if !ok || email == "" || len(password) < 8 {
		fmt.Fprintln(os.Stderr, "usage: storefront -set-admin email:password (password of at least 8 characters)")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	log, err := logs.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("[SET-ADMIN] connect", "err", err)
		return 1
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Error("[SET-ADMIN] schema", "err", err)
		return 1
	}

	if err := setAdmin(ctx, user.NewPGRepo(pool), email, password); err != nil {
		log.Error("[SET-ADMIN] failed", "email", email, "err", err)
		return 1
	}
	log.Info("[SET-ADMIN] done", slog.String("email", email))
	return 0
}

func setAdmin(ctx context.Context, users user.Repository, email, password string) error {
	hash, err := user.HashPassword(password)
	if err != nil {
		return err
	}
	u, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return users.Create(ctx, &user.User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			Role:         user.RoleAdmin,
		})
	case err != nil:
		return err
	}
	u.Role = user.RoleAdmin
	u.PasswordHash = hash
	return users.Update(ctx, u, true)
}
