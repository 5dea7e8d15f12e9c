package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/ecom-backend/internal/users"
	pkgAuth "github.com/angelmondragon/ecom-backend/pkg/auth"
	"github.com/angelmondragon/ecom-backend/pkg/config"
	"github.com/angelmondragon/ecom-backend/pkg/db"
	"github.com/angelmondragon/ecom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/angelmondragon/ecom-backend/pkg/logger"
	"github.com/angelmondragon/ecom-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid username or password"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the local credential flows.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error)
	Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResponse, error)
	BootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Tx             txRunner
	UserRepo       *users.Repository
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	AdminRole      string
	Logger         *logger.Logger
	Clock          func() time.Time
}

type service struct {
	tx          txRunner
	users       *users.Repository
	jwtCfg      config.JWTConfig
	passwords   *security.Hasher
	adminRole   string
	logg        *logger.Logger
	now         func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		tx:          params.Tx,
		users:       params.UserRepo,
		jwtCfg:      params.JWTConfig,
		passwords:   security.NewHasher(params.PasswordConfig),
		adminRole:   params.AdminRole,
		logg:        params.Logger,
		now:         clock,
	}, nil
}

// SignUp creates a CUSTOMER account together with its first pending order.
func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	passwordHash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	var created uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeNotAcceptable, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		id := uuid.New()
		subject := id.String()
		user, err := repo.Create(ctx, users.CreateUserDTO{
			ID:           id,
			ExternalID:   &subject,
			Email:        email,
			Name:         name,
			PasswordHash: &passwordHash,
			Role:         enums.UserRoleCustomer,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "users_email_key") {
				return pkgerrors.Wrap(pkgerrors.CodeNotAcceptable, err, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		if err := repo.CreatePendingOrder(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pending order")
		}
		created = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, created.String()), "user.signed_up")
	}
	return &SignUpResponse{ID: created}, nil
}

// Authenticate checks local credentials. Unknown emails and wrong passwords
// are indistinguishable to the caller.
func (s *service) Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthenticateResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := s.passwords.Verify(req.Password, *user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if s.passwords.NeedsRehash(*user.PasswordHash) {
		s.rehash(ctx, user.ID, req.Password)
	}

	resp := &AuthenticateResponse{UserID: user.ID, Role: user.Role}
	if s.jwtCfg.Secret != "" {
		token, err := pkgAuth.MintLocalToken(s.jwtCfg, s.now(), pkgAuth.LocalTokenPayload{
			UserID:    user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			AdminRole: s.adminRole,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
		}
		resp.AccessToken = token
	}
	return resp, nil
}

// rehash upgrades a hash produced with outdated argon2 parameters. Failures
// only cost the upgrade, so they are logged and swallowed.
func (s *service) rehash(ctx context.Context, userID uuid.UUID, password string) {
	hash, err := s.passwords.Hash(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"user_id": userID.String(),
			"error":   err.Error(),
		}), "auth.password_rehash_failed")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
