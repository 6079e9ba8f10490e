package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/appealsdesk/appeals-registry/internal"
	"github.com/appealsdesk/appeals-registry/internal/permission"
)

// User is the authenticated principal with its flattened permission state,
// loaded fresh on every request so grant and revoke changes bind live.
type User struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	Surname      string   `json:"surname,omitempty"`
	Name         string   `json:"name,omitempty"`
	SectionID    *int64   `json:"section_id,omitempty"`
	IsAdmin      bool     `json:"is_admin"`
	IsSuperAdmin bool     `json:"is_super_admin"`
	Rank         int      `json:"rank"`
	IsActive     bool     `json:"is_active"`
	Roles        []string `json:"roles"`
	Permissions  []string `json:"permissions"`
}

// Can answers a single permission check with the admin bypass applied first.
func (u *User) Can(code string) bool {
	return permission.Can(u.IsAdmin, u.Permissions, code)
}

func (u *User) CanAny(codes ...string) bool {
	return permission.CanAny(u.IsAdmin, u.Permissions, codes...)
}

func (u *User) Actor() internal.Actor {
	return internal.Actor{
		ID:           u.ID,
		Username:     u.Username,
		IsAdmin:      u.IsAdmin,
		IsSuperAdmin: u.IsSuperAdmin,
		Rank:         u.Rank,
	}
}

type userCtxKey struct{}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(userCtxKey{}).(*User)
	return u, ok
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims represents JWT token claims
type Claims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenGenerator creates and validates signed tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64, username string) (string, error)
	GenerateRefreshToken(userID int64, username string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

// AuthService performs authentication-related business logic.
type AuthService interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithPermissions(userID int64) (*User, error)
}
