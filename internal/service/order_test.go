package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workorders/internal/lifecycle"
	"workorders/internal/model"
	"workorders/internal/service/servicetest"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newOrderFixture(t *testing.T) (*OrderService, *servicetest.DB) {
	t.Helper()
	db := servicetest.NewDB()
	for _, u := range []model.User{
		{ID: "c1", Email: "c1@example.com", UserName: "Carol", Role: model.RoleCustomer},
		{ID: "w1", Email: "w1@example.com", UserName: "Walt", Role: model.RoleWorker},
		{ID: "w2", Email: "w2@example.com", UserName: "Wendy", Role: model.RoleWorker},
		{ID: "adm", Email: "admin@example.com", UserName: "Root", Role: model.RoleAdmin},
	} {
		db.AddUser(u)
	}
	svc := NewOrderService(db.Orders(), db.Users(), NewNotificationService(db.Notifications()))
	svc.now = func() time.Time { return testNow }
	return svc, db
}

func order(id, customer, worker string, status model.OrderStatus, due time.Time) model.Order {
	return model.Order{
		ID:             id,
		OrderName:      "order " + id,
		CompletionDate: due,
		Status:         status,
		CustomerID:     customer,
		WorkerID:       worker,
	}
}

func TestOrderService_Create(t *testing.T) {
	svc, db := newOrderFixture(t)

	o, err := svc.Create(context.Background(), NewOrder{
		OrderName:      "Wedding cut",
		CustomerID:     "c1",
		WorkerID:       "w1",
		CompletionDate: testNow.Add(48 * time.Hour),
		RevisionDays:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlaced, o.Status)
	assert.NotEmpty(t, o.ID)

	notes := db.SentNotifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "w1", notes[0].UserID)
	assert.Equal(t, model.NotificationOrderPlaced, notes[0].Type)
	assert.Equal(t, o.ID, notes[0].OrderID)
	assert.Len(t, db.OutboxEvents(), 1)
}

func TestOrderService_CreateUnknownWorker(t *testing.T) {
	svc, db := newOrderFixture(t)

	_, err := svc.Create(context.Background(), NewOrder{OrderName: "x", CustomerID: "c1", WorkerID: "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Zero(t, db.OrderCount())
}

func TestOrderService_GetByID(t *testing.T) {
	svc, db := newOrderFixture(t)
	db.AddOrder(order("o1", "c1", "w1", model.StatusPlaced, testNow))

	o, err := svc.GetByID(context.Background(), "o1", false)
	require.NoError(t, err)
	assert.Nil(t, o.CreatedBy)

	o, err = svc.GetByID(context.Background(), "o1", true)
	require.NoError(t, err)
	require.NotNil(t, o.CreatedBy)
	assert.Equal(t, "c1", o.CreatedBy.ID)
	assert.Equal(t, "w1", o.Worker.ID)

	missing, err := svc.GetByID(context.Background(), "nope", true)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderService_ListByUser(t *testing.T) {
	svc, db := newOrderFixture(t)
	ctx := context.Background()

	db.AddOrder(order("o1", "c1", "w1", model.StatusPlaced, testNow))
	db.AddOrder(order("o2", "c1", "w1", model.StatusAccepted, testNow.Add(time.Hour)))
	db.AddOrder(order("o3", "w2", "w1", model.StatusPlaced, testNow))

	t.Run("worker orders", func(t *testing.T) {
		got := svc.ListByUser(ctx, "w1", false)
		assert.Len(t, got, 3)
	})

	t.Run("falls back to placed orders", func(t *testing.T) {
		got := svc.ListByUser(ctx, "c1", true)
		require.Len(t, got, 2)
		require.NotNil(t, got[0].CreatedBy)
		assert.Equal(t, "Carol", got[0].CreatedBy.UserName)
	})

	t.Run("worker orders win over placed ones", func(t *testing.T) {
		db.AddOrder(order("o4", "c1", "w2", model.StatusPlaced, testNow))
		got := svc.ListByUser(ctx, "w2", false)
		require.Len(t, got, 1)
		assert.Equal(t, "o4", got[0].ID)
	})

	t.Run("nobody", func(t *testing.T) {
		assert.Empty(t, svc.ListByUser(ctx, "adm", false))
	})

	t.Run("store failure yields nil", func(t *testing.T) {
		db.Err = servicetest.ErrStoreDown()
		defer func() { db.Err = nil }()
		assert.Nil(t, svc.ListByUser(ctx, "w1", false))
	})
}

func TestOrderService_ListAccepted(t *testing.T) {
	svc, db := newOrderFixture(t)
	ctx := context.Background()

	db.AddOrder(order("o1", "c1", "w1", model.StatusPlaced, testNow))
	db.AddOrder(order("o2", "c1", "w1", model.StatusAccepted, testNow))

	got := svc.ListAcceptedByUser(ctx, "w1", false)
	require.Len(t, got, 1)
	assert.Equal(t, "o2", got[0].ID)

	assert.Len(t, svc.ListAcceptedByEmail(ctx, "w1@example.com"), 1)
	assert.Nil(t, svc.ListAcceptedByEmail(ctx, "nobody@example.com"))
	assert.Len(t, svc.ListByEmail(ctx, "c1@example.com"), 2)
	assert.Nil(t, svc.ListByEmail(ctx, "nobody@example.com"))
}

func TestOrderService_UpdateReassignsDeclined(t *testing.T) {
	svc, db := newOrderFixture(t)
	db.AddOrder(order("o1", "c1", "w1", model.StatusDeclined, testNow.Add(time.Hour)))

	w2 := "w2"
	name := "Recut"
	o, err := svc.Update(context.Background(), "o1", Actor{ID: "c1", Role: model.RoleCustomer},
		model.OrderPatch{WorkerID: &w2, OrderName: &name})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlaced, o.Status)
	assert.Equal(t, "w2", o.WorkerID)
	assert.Equal(t, "Recut", o.OrderName)

	stored, _ := db.Order("o1")
	assert.Equal(t, model.StatusPlaced, stored.Status)

	notes := db.SentNotifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "w2", notes[0].UserID)
	assert.Equal(t, model.NotificationOrderPlaced, notes[0].Type)
}

func TestOrderService_UpdateKeepsStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     model.OrderStatus
		workerID   *string
		wantWorker string
	}{
		{name: "placed same worker", status: model.StatusPlaced, workerID: ptr("w1"), wantWorker: "w1"},
		{name: "declined no worker in patch", status: model.StatusDeclined, wantWorker: "w1"},
		{name: "accepted other worker", status: model.StatusAccepted, workerID: ptr("w2"), wantWorker: "w1"},
		{name: "in progress", status: model.StatusInProgress, workerID: ptr("w2"), wantWorker: "w1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := newOrderFixture(t)
			db.AddOrder(order("o1", "c1", "w1", tt.status, testNow))

			days := 5
			o, err := svc.Update(context.Background(), "o1", Actor{ID: "c1"},
				model.OrderPatch{WorkerID: tt.workerID, RevisionDays: &days})
			require.NoError(t, err)
			assert.Equal(t, tt.status, o.Status)
			assert.Equal(t, tt.wantWorker, o.WorkerID)
			assert.Equal(t, 5, o.RevisionDays)
			assert.Empty(t, db.SentNotifications())
		})
	}
}

func TestOrderService_UpdateErrors(t *testing.T) {
	svc, db := newOrderFixture(t)
	db.AddOrder(order("o1", "c1", "w1", model.StatusPlaced, testNow))
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", Actor{ID: "c1"}, model.OrderPatch{})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.Update(ctx, "o1", Actor{ID: "w2", Role: model.RoleWorker}, model.OrderPatch{})
	assert.ErrorIs(t, err, ErrNotParty)

	ghost := "ghost"
	_, err = svc.Update(ctx, "o1", Actor{ID: "adm", Role: model.RoleAdmin}, model.OrderPatch{WorkerID: &ghost})
	assert.ErrorIs(t, err, ErrUserNotFound)

	stored, _ := db.Order("o1")
	assert.Equal(t, "w1", stored.WorkerID)
}

func TestOrderService_SetStatus(t *testing.T) {
	svc, db := newOrderFixture(t)
	db.AddOrder(order("o1", "c1", "w1", model.StatusPlaced, testNow.Add(time.Hour)))
	ctx := context.Background()
	worker := Actor{ID: "w1", Role: model.RoleWorker}
	customer := Actor{ID: "c1", Role: model.RoleCustomer}

	_, err := svc.SetStatus(ctx, "o1", customer, lifecycle.TriggerAccept)
	assert.ErrorIs(t, err, ErrNotParty)

	o, err := svc.SetStatus(ctx, "o1", worker, lifecycle.TriggerAccept)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, o.Status)

	o, err = svc.SetStatus(ctx, "o1", worker, lifecycle.TriggerStart)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, o.Status)

	_, err = svc.SetStatus(ctx, "o1", customer, lifecycle.TriggerPay)
	assert.ErrorIs(t, err, lifecycle.ErrTransitionNotAllowed)

	o, err = svc.SetStatus(ctx, "o1", customer, lifecycle.TriggerComplete)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, o.Status)

	o, err = svc.SetStatus(ctx, "o1", customer, lifecycle.TriggerPay)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPayed, o.Status)

	var customerNotes, workerNotes int
	for _, n := range db.SentNotifications() {
		switch n.UserID {
		case "c1":
			customerNotes++
		case "w1":
			workerNotes++
		}
	}
	// accept, start, complete for the customer; complete and pay for the worker
	assert.Equal(t, 3, customerNotes)
	assert.Equal(t, 2, workerNotes)
}

func TestOrderService_DeleteAllByEmail(t *testing.T) {
	svc, db := newOrderFixture(t)
	ctx := context.Background()
	db.AddOrder(order("o1", "c1", "w1", model.StatusPlaced, testNow))
	db.AddOrder(order("o2", "c1", "w2", model.StatusPlaced, testNow))
	db.AddOrder(order("o3", "w1", "w2", model.StatusPlaced, testNow))

	assert.True(t, svc.DeleteAllByEmail(ctx, "w1@example.com"))
	assert.Equal(t, 1, db.OrderCount())
	_, ok := db.Order("o2")
	assert.True(t, ok)

	assert.False(t, svc.DeleteAllByEmail(ctx, "nobody@example.com"))

	db.Err = servicetest.ErrStoreDown()
	assert.False(t, svc.DeleteAllByEmail(ctx, "c1@example.com"))
}

func ptr[T any](v T) *T { return &v }
