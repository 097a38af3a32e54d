package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/beverage-storefront/domain/apperror"
	domain "github.com/example/beverage-storefront/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort is the port other modules use to reach the access gate.
type AuthPort interface {
	Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) (*ListUsersResponse, error)
	CountUsers(ctx context.Context) (int64, error)
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	if container == nil {
		panic("auth adapter requires non-nil ServiceContainer")
	}
	return &AuthAdapter{
		container: container,
	}
}

// callService invokes a request-reply service and decodes its reply into resp.
func callService[T any](ctx context.Context, container mono.ServiceContainer, service string, req any, resp *T) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Register creates an account.
func (a *AuthAdapter) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	var resp UserResponse
	if err := callService(ctx, a.container, "register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for tokens.
func (a *AuthAdapter) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	var resp TokenResponse
	if err := callService(ctx, a.container, "login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new pair.
func (a *AuthAdapter) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	req := RefreshRequest{RefreshToken: refreshToken}
	var resp TokenResponse
	if err := callService(ctx, a.container, "refresh-token", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := callService(ctx, a.container, "validate-token", &req, &resp); err != nil {
		return nil, err
	}

	if !resp.Valid {
		return nil, apperror.Unauthorized("token validation failed: %s", resp.Error)
	}

	return &domain.Claims{
		UserID: resp.UserID,
		Email:  resp.Email,
		Role:   resp.Role,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*UserResponse, error) {
	req := GetUserRequest{UserID: userID}
	var resp UserResponse
	if err := callService(ctx, a.container, "get-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListUsers returns one page of accounts.
func (a *AuthAdapter) ListUsers(ctx context.Context, page, limit int) (*ListUsersResponse, error) {
	req := ListUsersRequest{Page: page, Limit: limit}
	var resp ListUsersResponse
	if err := callService(ctx, a.container, "list-users", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CountUsers returns the number of registered accounts.
func (a *AuthAdapter) CountUsers(ctx context.Context) (int64, error) {
	var resp CountUsersResponse
	if err := callService(ctx, a.container, "count-users", &CountUsersRequest{}, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}
