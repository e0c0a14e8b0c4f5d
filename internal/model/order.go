package model

import (
	"time"
)

type OrderStatus string

const (
	StatusPlaced     OrderStatus = "PLACED"
	StatusAccepted   OrderStatus = "ACCEPTED"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusDeclined   OrderStatus = "DECLINED"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusPayed      OrderStatus = "PAYED"
)

// ActiveStatuses are the statuses the completion sweep picks up.
var ActiveStatuses = []OrderStatus{StatusPlaced, StatusInProgress, StatusAccepted}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPlaced, StatusAccepted, StatusInProgress, StatusDeclined, StatusCompleted, StatusPayed:
		return true
	}
	return false
}

type Order struct {
	ID             string      `json:"id"`
	OrderName      string      `json:"orderName"`
	CompletionDate time.Time   `json:"completionDate"`
	RevisionDays   int         `json:"revisionDays"`
	Description    string      `json:"description"`
	FootageLink    string      `json:"footageLink"`
	Status         OrderStatus `json:"orderStatus"`
	CustomerID     string      `json:"customerId"`
	WorkerID       string      `json:"workerId"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`

	// Optional projections of the related users.
	CreatedBy *UserRef `json:"createdBy,omitempty"`
	Worker    *UserRef `json:"worker,omitempty"`
}

// OrderPatch carries an update. Nil fields are left unchanged.
type OrderPatch struct {
	OrderName      *string    `json:"orderName"`
	CustomerID     *string    `json:"customerId"`
	WorkerID       *string    `json:"workerId"`
	CompletionDate *time.Time `json:"completionDate"`
	RevisionDays   *int       `json:"revisionDays" validate:"omitempty,min=0"`
	Description    *string    `json:"description"`
	FootageLink    *string    `json:"footageLink" validate:"omitempty,url"`
}
