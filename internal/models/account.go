package models

import "time"

type Account struct {
	UserID       string    `db:"userid"     json:"userid"`
	PasswordHash string    `db:"pw"         json:"-"`
	Username     string    `db:"username"   json:"username"`
	Points       int       `db:"points"     json:"points"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// swagger:model SignUpRequest
type SignUpRequest struct {
	UserID   string `json:"userid"   example:"userid"`
	Password string `json:"pw"       example:"passw0rd"`
	Username string `json:"username" example:"username"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	UserID   string `json:"userid" example:"userid"`
	Password string `json:"pw"     example:"passw0rd"`
}

type SignUpResponse struct {
	UserID string `json:"userid"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ProfileResponse struct {
	UserID   string `json:"userid"`
	Username string `json:"username"`
}

type PointsResponse struct {
	Points int `json:"points"`
}
