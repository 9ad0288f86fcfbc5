package types

import "github.com/golang-jwt/jwt/v5"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Message      string `json:"message"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims are the custom claims carried by the access token.
type Claims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"usr,omitempty"`
	Email  string `json:"eml"`
	Role   Role   `json:"rol"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller, taken from the access token.
type Principal struct {
	UserID int64
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManage reports whether the caller may act on a resource owned by ownerID.
func (p Principal) CanManage(ownerID int64) bool {
	return p.IsAdmin() || p.UserID == ownerID
}
