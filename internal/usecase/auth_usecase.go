package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"jobscout/internal/pkg/jwt"
	"jobscout/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

type AuthUsecase interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type Auth struct {
	users repository.UserRepository
	jwt   jwt.Service

	// Bootstrap credential checked when the user table has no match.
	adminUser     string
	adminPassword string
}

func NewAuthUsecase(users repository.UserRepository, jwtSvc jwt.Service, adminUser, adminPassword string) *Auth {
	return &Auth{users: users, jwt: jwtSvc, adminUser: adminUser, adminPassword: adminPassword}
}

func (u *Auth) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrUnauthorized
	}

	if usr, err := u.users.GetByUsername(ctx, username); err == nil {
		if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)) != nil {
			return "", ErrUnauthorized
		}
		return u.token(usr.Username)
	}

	if u.adminPassword != "" &&
		subtle.ConstantTimeCompare([]byte(username), []byte(u.adminUser)) == 1 &&
		subtle.ConstantTimeCompare([]byte(password), []byte(u.adminPassword)) == 1 {
		return u.token(u.adminUser)
	}

	return "", ErrUnauthorized
}

func (u *Auth) token(username string) (string, error) {
	tok, err := u.jwt.Generate(username)
	if err != nil {
		return "", ErrInternal
	}
	return tok, nil
}
