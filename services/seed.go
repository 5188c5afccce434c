package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/database"
	"github.com/tooldesk/tooldesk/backend/errs"
	"github.com/tooldesk/tooldesk/backend/models"
)

// SeedAdmin creates the admin user on first start. An existing user with the
// same username is left untouched, including its password.
func SeedAdmin(ctx context.Context, db database.Database, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}

	input := models.NewUser{Username: username, Password: password}
	if err := models.Validate(&input); err != nil {
		return false, err
	}
	if _, err := db.UserRepo().Add(ctx, input); err != nil {
		if errs.IsAlreadyExists(err) {
			return false, nil
		}
		return false, fmt.Errorf("seed admin user: %w", err)
	}

	log.Info().Str("username", username).Msg("Seeded admin user")
	return true, nil
}
