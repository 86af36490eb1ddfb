package models

// User is a dashboard account shown in the role tables.
type User struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	Email           string `json:"email" yaml:"email"`
	Role            string `json:"role" yaml:"role"`
	Status          string `json:"status" yaml:"status"`
	JoinedAt        string `json:"joined_at" yaml:"joined_at"`
	LifetimeRevenue int64  `json:"lifetime_revenue" yaml:"lifetime_revenue"`
}

func (u User) GetID() string { return u.ID }

func (u User) Active() bool { return u.Status == UserActive }

// UserPatch carries the fields an edit may change; nil fields are left alone.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}
