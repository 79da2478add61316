package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64     `json:"id" db:"id"`
	OpenID       string    `json:"openId" db:"open_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Password     string    `json:"-" db:"password"`
	LoginMethod  string    `json:"loginMethod" db:"login_method"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
	LastSignedIn time.Time `json:"lastSignedIn" db:"last_signed_in"`
}
