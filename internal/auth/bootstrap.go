package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/ecom-backend/internal/users"
	"github.com/angelmondragon/ecom-backend/pkg/config"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BootstrapAdmin provisions the configured admin account when no ADMIN user
// exists yet. Running it again is a no-op.
func (s *service) BootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if !cfg.Enabled {
		return nil
	}
	email := normalizeEmail(cfg.AdminEmail)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "bootstrap admin email is required")
	}
	name := strings.TrimSpace(cfg.AdminName)
	if name == "" {
		name = email
	}

	passwordHash, err := s.passwords.Hash(cfg.AdminPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hash bootstrap admin password")
	}

	var (
		created uuid.UUID
		reason  string
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		exists, err := repo.ExistsWithRole(ctx, enums.UserRoleAdmin)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check admin accounts")
		}
		if exists {
			reason = "admin_exists"
			return nil
		}

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			reason = "email_taken"
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check admin email")
		}

		id := uuid.New()
		subject := id.String()
		if _, err := repo.Create(ctx, users.CreateUserDTO{
			ID:           id,
			ExternalID:   &subject,
			Email:        email,
			Name:         name,
			PasswordHash: &passwordHash,
			Role:         enums.UserRoleAdmin,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin")
		}
		created = id
		return nil
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		if created != uuid.Nil {
			s.logg.Info(s.logg.WithUserID(ctx, created.String()), "admin.bootstrap.created")
		} else {
			s.logg.Info(s.logg.WithField(ctx, "reason", reason), "admin.bootstrap.skipped")
		}
	}
	return nil
}
