// Package lifecycle holds the order status transition table.
package lifecycle

import (
	"errors"
	"fmt"

	"workorders/internal/model"
)

var ErrTransitionNotAllowed = errors.New("status transition not allowed")

type Trigger string

const (
	TriggerReassign Trigger = "reassign"
	TriggerEdit     Trigger = "edit"
	TriggerAccept   Trigger = "accept"
	TriggerDecline  Trigger = "decline"
	TriggerStart    Trigger = "start"
	TriggerComplete Trigger = "complete"
	TriggerExpire   Trigger = "expire"
	TriggerPay      Trigger = "pay"
)

// Party says which side of an order may fire a trigger.
type Party int

const (
	PartyAny Party = iota
	PartyCustomer
	PartyWorker
	PartySystem
)

// Effect is a side effect the caller has to apply together with the status change.
type Effect int

const (
	EffectAssignWorker Effect = iota + 1
	EffectNotifyCustomer
	EffectNotifyWorker
)

type Transition struct {
	To      model.OrderStatus
	Keep    bool // status is left as is
	By      Party
	Effects []Effect
	Notice  model.NotificationType
}

type key struct {
	from    model.OrderStatus
	trigger Trigger
}

var table = map[key]Transition{}

func add(t Trigger, tr Transition, from ...model.OrderStatus) {
	for _, s := range from {
		table[key{s, t}] = tr
	}
}

var allStatuses = []model.OrderStatus{
	model.StatusPlaced, model.StatusAccepted, model.StatusInProgress,
	model.StatusDeclined, model.StatusCompleted, model.StatusPayed,
}

func init() {
	add(TriggerReassign, Transition{
		To:      model.StatusPlaced,
		By:      PartyAny,
		Effects: []Effect{EffectAssignWorker, EffectNotifyWorker},
		Notice:  model.NotificationOrderPlaced,
	}, model.StatusPlaced, model.StatusDeclined)

	add(TriggerEdit, Transition{Keep: true, By: PartyAny}, allStatuses...)

	add(TriggerAccept, Transition{
		To:      model.StatusAccepted,
		By:      PartyWorker,
		Effects: []Effect{EffectNotifyCustomer},
		Notice:  model.NotificationOrderAccepted,
	}, model.StatusPlaced)

	add(TriggerDecline, Transition{
		To:      model.StatusDeclined,
		By:      PartyWorker,
		Effects: []Effect{EffectNotifyCustomer},
		Notice:  model.NotificationOrderDeclined,
	}, model.StatusPlaced)

	add(TriggerStart, Transition{
		To:      model.StatusInProgress,
		By:      PartyWorker,
		Effects: []Effect{EffectNotifyCustomer},
		Notice:  model.NotificationOrderInProgress,
	}, model.StatusAccepted)

	add(TriggerComplete, Transition{
		To:      model.StatusCompleted,
		By:      PartyAny,
		Effects: []Effect{EffectNotifyCustomer, EffectNotifyWorker},
		Notice:  model.NotificationOrderCompleted,
	}, model.ActiveStatuses...)

	add(TriggerExpire, Transition{
		To:      model.StatusCompleted,
		By:      PartySystem,
		Effects: []Effect{EffectNotifyCustomer, EffectNotifyWorker},
		Notice:  model.NotificationOrderCompleted,
	}, model.ActiveStatuses...)

	add(TriggerPay, Transition{
		To:      model.StatusPayed,
		By:      PartyCustomer,
		Effects: []Effect{EffectNotifyWorker},
		Notice:  model.NotificationOrderPayed,
	}, model.StatusCompleted)
}

// Next looks up the transition for firing t on an order in status from.
func Next(from model.OrderStatus, t Trigger) (Transition, error) {
	tr, ok := table[key{from, t}]
	if !ok {
		return Transition{}, fmt.Errorf("%s from %s: %w", t, from, ErrTransitionNotAllowed)
	}
	return tr, nil
}

// Target returns the status an order ends up in after tr.
func (tr Transition) Target(from model.OrderStatus) model.OrderStatus {
	if tr.Keep {
		return from
	}
	return tr.To
}

func (tr Transition) Has(e Effect) bool {
	for _, x := range tr.Effects {
		if x == e {
			return true
		}
	}
	return false
}

// Sources lists every status t may be fired from.
func Sources(t Trigger) []model.OrderStatus {
	var out []model.OrderStatus
	for _, s := range allStatuses {
		if _, ok := table[key{s, t}]; ok {
			out = append(out, s)
		}
	}
	return out
}

// UpdateTrigger picks the trigger for a field update: editing an unclaimed or declined
// order with a different worker re-lists it for that worker.
func UpdateTrigger(current model.OrderStatus, assignedWorker, requestedWorker string) Trigger {
	if (current == model.StatusDeclined || current == model.StatusPlaced) && requestedWorker != assignedWorker {
		return TriggerReassign
	}
	return TriggerEdit
}

// ParseTrigger accepts the triggers a user may fire explicitly.
func ParseTrigger(s string) (Trigger, bool) {
	switch t := Trigger(s); t {
	case TriggerAccept, TriggerDecline, TriggerStart, TriggerComplete, TriggerPay:
		return t, true
	}
	return "", false
}
