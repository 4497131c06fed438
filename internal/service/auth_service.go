package service

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"regexp"

	"chatme/internal/comms"
	"chatme/internal/domain"
	"chatme/internal/security"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService handles signup, login, logout, and profile onboarding. New
// users are mirrored to the communications platform so the chat SDK can
// address them immediately.
type AuthService struct {
	users    domain.UserRepository
	tokens   *security.TokenService
	hash     *security.PasswordHasher
	provider comms.Provider
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, hash *security.PasswordHasher, provider comms.Provider) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hash:     hash,
		provider: provider,
	}
}

type SignupInput struct {
	FullName string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// TokenResponse pairs the session token with the resolved user.
type TokenResponse struct {
	AccessToken string
	User        *domain.User
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*TokenResponse, error) {
	if in.FullName == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("full name, email, and password are required: %w", domain.ErrInvalidInput)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", domain.ErrInvalidInput)
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, fmt.Errorf("invalid email format: %w", domain.ErrInvalidInput)
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FullName:   in.FullName,
		Email:      in.Email,
		Password:   hashed,
		ProfilePic: randomAvatar(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.upsertProfile(ctx, user)

	return s.tokenFor(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("invalid email or password: %w", domain.ErrInvalidInput)
	}
	if err := s.hash.Verify(in.Password, user.Password); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", domain.ErrInvalidInput)
	}

	return s.tokenFor(user)
}

func (s *AuthService) Logout(ctx context.Context, user *domain.User) error {
	return s.users.SetOnlineStatus(ctx, user.ID, false)
}

type OnboardInput struct {
	FullName string
	Bio      string
	Location string
}

// Onboard completes the profile after signup and re-mirrors it to the
// communications platform.
func (s *AuthService) Onboard(ctx context.Context, user *domain.User, in OnboardInput) (*domain.User, error) {
	if in.FullName == "" || in.Bio == "" || in.Location == "" {
		return nil, fmt.Errorf("full name, bio, and location are required: %w", domain.ErrInvalidInput)
	}

	user.FullName = in.FullName
	user.Bio = in.Bio
	user.Location = in.Location
	user.IsOnboarded = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.upsertProfile(ctx, user)
	return user, nil
}

// ChatToken mints a platform token so the SPA can open the chat SDK as the
// current user.
func (s *AuthService) ChatToken(user *domain.User) (string, error) {
	token, err := s.provider.CreateToken(user.ID.Hex())
	if err != nil {
		return "", fmt.Errorf("mint chat token: %v: %w", err, domain.ErrUpstream)
	}
	return token, nil
}

func (s *AuthService) tokenFor(user *domain.User) (*TokenResponse, error) {
	token, err := s.tokens.CreateForUser(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	return &TokenResponse{AccessToken: token, User: user}, nil
}

// upsertProfile mirrors the user to the platform. Failures are logged, never
// surfaced: the account exists regardless and the mirror catches up on the
// next profile change.
func (s *AuthService) upsertProfile(ctx context.Context, user *domain.User) {
	err := s.provider.UpsertUser(ctx, comms.Profile{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Image: user.ProfilePic,
	})
	if err != nil {
		log.Printf("upsert comms profile for %s: %v", user.ID.Hex(), err)
	}
}

func randomAvatar() string {
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", rand.IntN(100)+1)
}
