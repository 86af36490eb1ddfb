package models

import "time"

// Account is a storefront registration persisted under KeyAccounts.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	PasswordHash string    `json:"password_hash"`
	IDFileData   string    `json:"id_file_data,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public strips credentials and the ID document before the account leaves the server.
func (a Account) Public() Account {
	a.PasswordHash = ""
	a.IDFileData = ""
	return a
}

// Session is the value stored under KeySessionPrefix+token.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Demo      bool      `json:"demo"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
