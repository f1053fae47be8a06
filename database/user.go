package database

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erikbos/cinetrack/database/model"
	"github.com/erikbos/cinetrack/idhash"
)

// ValidateUser checks if the user exists and the password is correct.
func ValidateUser(ctx context.Context, repo UserRepo, username, password string) (*model.User, error) {
	user, err := repo.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, model.ErrInvalidPassword
	}
	return user, nil
}

// RegisterUser inserts a new user with a bcrypt hashed password.
func RegisterUser(ctx context.Context, repo UserRepo, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &model.User{
		ID:       idhash.Hash(username),
		Username: username,
		Password: string(hashedPassword),
		Created:  now,
	}
	if err := repo.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login validates the password of a user and records the login time. If autoRegister
// is set unknown users are created on their first login.
func Login(ctx context.Context, repo UserRepo, username, password string, autoRegister bool) (*model.User, error) {
	user, err := ValidateUser(ctx, repo, username, password)
	if errors.Is(err, model.ErrUserNotFound) && autoRegister {
		user, err = RegisterUser(ctx, repo, username, password)
	}
	if err != nil {
		return nil, err
	}
	user.LastLogin = time.Now().UTC()
	if err := repo.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
