package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sariqm/brandmate/internal/cache"
	"github.com/sariqm/brandmate/internal/models"
	mongorepo "github.com/sariqm/brandmate/internal/repositories/mongo"
	"github.com/sariqm/brandmate/internal/utils"
)

const tokenTTL = 60 * time.Minute

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	// Login verifies credentials and returns a signed access token.
	Login(ctx context.Context, email, password string) (string, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	Delete(ctx context.Context, email string) error
}

type userService struct {
	users  mongorepo.UserRepository
	lookup cache.UserLookup // nil when Redis is not configured
	secret []byte
}

func NewUserService(users mongorepo.UserRepository, lookup cache.UserLookup, secret []byte) UserService {
	return &userService{users: users, lookup: lookup, secret: secret}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	const op = "UserService.Register"

	if name == "" || email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_name, user_email, and password are required", nil)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "user already exists", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check existing user", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	u := &models.User{
		UserName:  name,
		UserEmail: email,
		Password:  hash,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.users.Insert(ctx, u); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}
	return u, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "UserService.Login"

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", utils.E(utils.CodeUnauthorized, op, "invalid email or password", nil)
		}
		return "", utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}
	if err := utils.CheckPassword(u.Password, password); err != nil {
		return "", utils.E(utils.CodeUnauthorized, op, "invalid email or password", nil)
	}

	now := time.Now().UTC()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.UserEmail,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}
	return signed, nil
}

func (s *userService) GetByToken(ctx context.Context, token string) (*models.User, error) {
	const op = "UserService.GetByToken"

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid || claims.Subject == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid token", err)
	}

	email := claims.Subject
	if s.lookup != nil {
		if u, hit, err := s.lookup.Get(ctx, email); err == nil && hit {
			return u, nil
		}
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	if s.lookup != nil {
		_ = s.lookup.Set(ctx, u)
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	const op = "UserService.GetByID"

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, email string) error {
	const op = "UserService.Delete"

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	if err := s.users.Delete(ctx, u.UserID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete user", err)
	}
	if s.lookup != nil {
		_ = s.lookup.Invalidate(ctx, email)
	}
	return nil
}
