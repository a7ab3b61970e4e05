package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/upro/upro-api/internal/pkg/jwt"
	"github.com/upro/upro-api/internal/pkg/password"
)

// Service handles registration and token issuance
type Service struct {
	repo        Repository
	jwtService  *jwt.Service
	adminEmails map[string]struct{}
}

// NewService creates account service. Accounts registered with one of
// adminEmails receive the admin role.
func NewService(repo Repository, jwtService *jwt.Service, adminEmails []string) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[normalizeEmail(e)] = struct{}{}
	}
	return &Service{repo: repo, jwtService: jwtService, adminEmails: admins}
}

// Register creates a new account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	role := RoleMember
	if _, ok := s.adminEmails[email]; ok {
		role = RoleAdmin
	}

	now := time.Now().UTC()
	a := &Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	log.Info().Str("account_id", a.ID.String()).Str("role", string(a.Role)).Msg("account registered")
	return s.issueTokens(a)
}

// Login authenticates by email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	a, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(req.Password, a.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(a)
}

// Refresh issues a new token pair for a valid refresh token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	a, err := s.repo.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	return s.issueTokens(a)
}

// Me returns the account by ID
func (s *Service) Me(ctx context.Context, accountID uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, accountID)
}

func (s *Service) issueTokens(a *Account) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(a.ID, string(a.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(a.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Account: NewAccountResponse(a),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
			TokenType:    "Bearer",
		},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
