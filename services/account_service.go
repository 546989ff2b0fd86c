package services

import (
	"context"
	"fmt"

	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/errors"
)

type IAccountService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (Token, error)
	Login(ctx context.Context, req auth.LoginRequest) (Token, error)
}

type AccountService struct {
	users         contract.UserStore
	authenticator *auth.Authenticator
}

type Token string

func NewAccountService(users contract.UserStore, authenticator *auth.Authenticator) IAccountService {
	return &AccountService{users: users, authenticator: authenticator}
}

func (s *AccountService) Register(ctx context.Context, req auth.RegisterRequest) (Token, error) {
	// 1. Validate business rules (email format, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateRegister(req); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash
	userID, err := s.users.CreateUser(ctx, req.Name, req.Email, hashedPassword)
	if err != nil {
		return "", err // Will propagate ErrUserAlreadyExists if email is taken
	}

	// 4. Generate the initial session token
	token, err := s.authenticator.GenerateToken(userID.String(), req.Email)
	if err != nil {
		return "", err
	}
	return Token(token), nil
}

func (s *AccountService) Login(ctx context.Context, req auth.LoginRequest) (Token, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return "", errors.ErrInvalidCredentials
	}

	// 1. Retrieve user by email from storage
	account, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(req.Password, account.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	// 3. Issue the JWT token
	token, err := s.authenticator.GenerateToken(account.ID.String(), account.Email)
	if err != nil {
		return "", err
	}
	return Token(token), nil
}
