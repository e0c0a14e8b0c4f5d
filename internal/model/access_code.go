package model

import "time"

// RoleHolder is the placeholder value of the role selector; it never names a real role.
const RoleHolder = "holder"

type AccessCode struct {
	ID             string    `json:"id"`
	CustomName     string    `json:"customName"`
	Email          string    `json:"email"`
	ContractNumber string    `json:"contractNumber"`
	Role           string    `json:"role"`
	SecretCode     string    `json:"secretCode"`
	ExpirationDate time.Time `json:"expirationDate"`
	Used           bool      `json:"used"`
	CreatedAt      time.Time `json:"createdAt"`
}
