package model

import "time"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
	RoleWorker   = "worker"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	UserName     string    `json:"userName"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserRef is a partial user attached to an order.
type UserRef struct {
	ID       string `json:"id,omitempty"`
	UserName string `json:"userName,omitempty"`
}
