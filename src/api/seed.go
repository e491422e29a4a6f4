package api

import (
	"context"
	"errors"
	"log"
)

// SeedDefaultAdmin creates the configured admin account on first boot.
func SeedDefaultAdmin(ctx context.Context, cfg Config, store UserStore) error {
	if !cfg.SeedAdmin {
		return nil
	}
	if cfg.AdminPassword == "" {
		log.Println("[WARN] ADMIN_SEED is enabled but ADMIN_PASSWORD is empty; skipping seed")
		return nil
	}

	if _, err := store.Get(ctx, cfg.AdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := store.Create(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil
		}
		return err
	}
	log.Printf("Seeded admin user %q", cfg.AdminUsername)
	return nil
}
