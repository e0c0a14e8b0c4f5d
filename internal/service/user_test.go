package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workorders/internal/model"
	"workorders/internal/service/servicetest"
)

func TestUserService_DeleteByEmail(t *testing.T) {
	orders, db := newOrderFixture(t)
	users := NewUserService(db.Users(), orders)
	ctx := context.Background()

	db.AddOrder(order("o1", "c1", "w1", model.StatusPlaced, testNow))
	db.AddOrder(order("o2", "c1", "w2", model.StatusPlaced, testNow))

	require.NoError(t, users.DeleteByEmail(ctx, "c1@example.com"))
	assert.Zero(t, db.OrderCount())

	u, err := users.GetByEmail(ctx, "c1@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	assert.ErrorIs(t, users.DeleteByEmail(ctx, "c1@example.com"), ErrUserNotFound)
}

func TestNotificationService(t *testing.T) {
	db := servicetest.NewDB()
	db.AddUser(model.User{ID: "u1"})
	svc := NewNotificationService(db.Notifications())
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "u1", "hello", model.NotificationOrderAccepted, ""))
	assert.Error(t, svc.Send(ctx, "ghost", "hello", model.NotificationOrderAccepted, ""))

	notes, err := svc.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.False(t, notes[0].Read)

	require.NoError(t, svc.MarkRead(ctx, "u1", notes[0].ID))
	notes, _ = svc.ListForUser(ctx, "u1")
	assert.True(t, notes[0].Read)

	assert.ErrorIs(t, svc.MarkRead(ctx, "u2", notes[0].ID), ErrNotificationNotFound)
}

func TestNoticeMessage(t *testing.T) {
	assert.Equal(t, "Order Teaser completed", NoticeMessage(model.NotificationOrderCompleted, "Teaser"))
	assert.Equal(t, "Teaser", NoticeMessage("UNKNOWN", "Teaser"))
}

func TestGroupService(t *testing.T) {
	db := servicetest.NewDB()
	svc := NewGroupService(db.Groups())
	ctx := context.Background()

	g, err := svc.Create(ctx, "editors", "Video editors", "People who cut footage")
	require.NoError(t, err)
	assert.Equal(t, "editors", g.GroupName)

	_, err = svc.Create(ctx, "editors", "", "")
	assert.ErrorIs(t, err, ErrGroupExists)

	got, err := svc.GetByName(ctx, "editors")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	missing, err := svc.GetByName(ctx, "colorists")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
