package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgAuth "github.com/angelmondragon/ecom-backend/pkg/auth"
	"github.com/angelmondragon/ecom-backend/pkg/db"
	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service resolves verified identities to local accounts and maintains
// profiles.
type Service interface {
	Resolve(ctx context.Context, identity pkgAuth.Identity) (*UserDTO, error)
	Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*UserDTO, error)
}

// ServiceParams bundles the dependencies of the user service.
type ServiceParams struct {
	Tx        txRunner
	Repo      *Repository
	AdminRole string
	Logger    *logger.Logger
}

type service struct {
	tx        txRunner
	repo      *Repository
	adminRole string
	logg      *logger.Logger
}

// NewService builds the identity resolver.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{
		tx:        params.Tx,
		repo:      params.Repo,
		adminRole: params.AdminRole,
		logg:      params.Logger,
	}, nil
}

// DeriveRole maps a realm role list to the local role. Any entry equal to the
// admin marker, ignoring case and the ROLE_ prefix, grants ADMIN.
func DeriveRole(roles []string, adminMarker string) enums.UserRole {
	marker := normalizeRole(adminMarker)
	if marker == "" {
		return enums.UserRoleCustomer
	}
	for _, role := range roles {
		if normalizeRole(role) == marker {
			return enums.UserRoleAdmin
		}
	}
	return enums.UserRoleCustomer
}

func normalizeRole(role string) string {
	value := strings.ToUpper(strings.TrimSpace(role))
	return strings.TrimPrefix(value, enums.AuthorityPrefix)
}

// Resolve maps a verified identity onto its account. Local identities name
// the account id directly. Identity-provider subjects are looked up by
// external id, then linked to an account with the same verified email, and
// otherwise provisioned. Provider roles are synced onto the account.
func (s *service) Resolve(ctx context.Context, identity pkgAuth.Identity) (*UserDTO, error) {
	subject := strings.TrimSpace(identity.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity subject missing")
	}
	if identity.Local {
		return s.resolveLocal(ctx, subject)
	}
	role := DeriveRole(identity.Roles, s.adminRole)

	var (
		resolved    *models.User
		provisioned bool
		previous    enums.UserRole
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		user, err := repo.FindByExternalID(ctx, subject)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user by subject")
		}

		if user == nil {
			user, err = s.linkByEmail(ctx, repo, subject, identity)
			if err != nil {
				return err
			}
		}

		if user == nil {
			user, err = s.provision(ctx, repo, subject, identity, role)
			if err != nil {
				return err
			}
			provisioned = true
			resolved = user
			return nil
		}

		if user.Role != role {
			previous = user.Role
			if err := repo.UpdateRole(ctx, user.ID, role); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sync user role")
			}
			user.Role = role
		}
		resolved = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithUserID(ctx, resolved.ID.String())
		switch {
		case provisioned:
			s.logg.Info(s.logg.WithField(logCtx, "role", resolved.Role), "user.provisioned")
		case previous != "":
			s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
				"previous_role": previous,
				"role":          resolved.Role,
			}), "user.role_synced")
		}
	}
	return FromModel(resolved), nil
}

// resolveLocal loads the account a locally minted token was issued for. The
// stored role wins over the token's, which was copied from it at sign-in.
func (s *service) resolveLocal(ctx context.Context, subject string) (*UserDTO, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "malformed token subject")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user by id")
	}
	return FromModel(user), nil
}

// linkByEmail attaches a provider subject to an account holding the same
// email. The provider must vouch for the email, and the account must not be
// linked to another subject already.
func (s *service) linkByEmail(ctx context.Context, repo *Repository, subject string, identity pkgAuth.Identity) (*models.User, error) {
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, nil
	}
	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user by email")
	}
	if user.ExternalID != nil && *user.ExternalID != subject {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is linked to another identity")
	}
	if !identity.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email exists; verify the email with the identity provider to link it")
	}
	if err := repo.LinkExternalID(ctx, user.ID, subject); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link identity")
	}
	user.ExternalID = &subject
	return user, nil
}

func (s *service) provision(ctx context.Context, repo *Repository, subject string, identity pkgAuth.Identity, role enums.UserRole) (*models.User, error) {
	email := normalizeEmail(identity.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identity token carries no email")
	}
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = email
	}

	user, err := repo.Create(ctx, CreateUserDTO{
		ExternalID: &subject,
		Email:      email,
		Name:       name,
		Role:       role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user was provisioned concurrently, retry the request")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	if role == enums.UserRoleCustomer {
		if err := repo.CreatePendingOrder(ctx, user.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pending order")
		}
	}
	return user, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

// UpdateProfile applies the optional name, email and image fields.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*UserDTO, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		update.Name = &name
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		update.Email = &email
	}
	if update.ImageURL != nil {
		image := strings.TrimSpace(*update.ImageURL)
		update.ImageURL = &image
	}

	var updated *models.User
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateProfile(ctx, userID, update); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			if db.IsUniqueViolation(err, "users_email_key") {
				return pkgerrors.Wrap(pkgerrors.CodeNotAcceptable, err, "email already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
		}
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
