// Package servicetest provides in-memory stores for exercising services without a database.
package servicetest

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"workorders/internal/model"
	"workorders/internal/repository"
)

// DB is shared state behind the typed stores. Set Err to make every call fail.
type DB struct {
	mu            sync.Mutex
	users         map[string]model.User
	orders        map[string]model.Order
	codes         map[string]model.AccessCode
	groups        map[string]model.Group
	notifications []model.Notification
	events        []model.OutboxEvent
	nextEventID   int64

	Err error
}

func NewDB() *DB {
	return &DB{
		users:  map[string]model.User{},
		orders: map[string]model.Order{},
		codes:  map[string]model.AccessCode{},
		groups: map[string]model.Group{},
	}
}

func (db *DB) Users() *Users                 { return &Users{db} }
func (db *DB) Orders() *Orders               { return &Orders{db} }
func (db *DB) Notifications() *Notifications { return &Notifications{db} }
func (db *DB) AccessCodes() *AccessCodes     { return &AccessCodes{db} }
func (db *DB) Groups() *Groups               { return &Groups{db} }

// AddUser stores u as is and returns it.
func (db *DB) AddUser(u model.User) model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = u
	return u
}

// AddOrder stores o as is and returns it.
func (db *DB) AddOrder(o model.Order) model.Order {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.orders[o.ID] = o
	return o
}

// AddCode stores c as is.
func (db *DB) AddCode(c model.AccessCode) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.codes[c.ID] = c
}

func (db *DB) Order(id string) (model.Order, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	o, ok := db.orders[id]
	return o, ok
}

func (db *DB) OrderCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.orders)
}

func (db *DB) SentNotifications() []model.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.notifications)
}

func (db *DB) OutboxEvents() []model.OutboxEvent {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.events)
}

func (db *DB) insertNotifications(notes []model.Notification) error {
	for _, n := range notes {
		if _, ok := db.users[n.UserID]; !ok {
			return repository.ErrMissingRef
		}
	}
	for _, n := range notes {
		payload, err := json.Marshal(n)
		if err != nil {
			return err
		}
		db.notifications = append(db.notifications, n)
		db.nextEventID++
		db.events = append(db.events, model.OutboxEvent{
			ID:             db.nextEventID,
			NotificationID: n.ID,
			Payload:        payload,
			Status:         model.OutboxCreated,
			CreatedAt:      n.CreatedAt,
		})
	}
	return nil
}

type Users struct{ db *DB }

func (s *Users) Create(_ context.Context, u *model.User, secretCode string, now time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}
	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if secretCode != "" {
		var found *model.AccessCode
		for id, c := range s.db.codes {
			if c.SecretCode == secretCode && !c.Used && c.ExpirationDate.After(now) {
				c.Used = true
				s.db.codes[id] = c
				found = &c
				break
			}
		}
		if found == nil {
			return repository.ErrCodeInvalid
		}
		u.Role = found.Role
	}
	u.CreatedAt = now
	s.db.users[u.ID] = *u
	return nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	for _, u := range s.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Users) GetByID(_ context.Context, id string) (*model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	u, ok := s.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Users) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}
	if _, ok := s.db.users[id]; !ok {
		return repository.ErrNotFound
	}
	for _, o := range s.db.orders {
		if o.CustomerID == id || o.WorkerID == id {
			return repository.ErrMissingRef
		}
	}
	delete(s.db.users, id)
	return nil
}

type Orders struct{ db *DB }

func (s *Orders) Create(_ context.Context, o *model.Order) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}
	if _, ok := s.db.users[o.CustomerID]; !ok {
		return repository.ErrMissingRef
	}
	if _, ok := s.db.users[o.WorkerID]; o.WorkerID != "" && !ok {
		return repository.ErrMissingRef
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	s.db.orders[o.ID] = *o
	return nil
}

func (s *Orders) GetByID(_ context.Context, id string) (*model.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	o, ok := s.db.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func sortByDate(orders []model.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CompletionDate.Before(orders[j].CompletionDate)
	})
}

func (s *Orders) List(_ context.Context, f repository.ListFilter) ([]model.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	var out []model.Order
	for _, o := range s.db.orders {
		if f.WorkerID != "" && o.WorkerID != f.WorkerID {
			continue
		}
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.WithOwnerName {
			o.CreatedBy = &model.UserRef{UserName: s.db.users[o.CustomerID].UserName}
		}
		out = append(out, o)
	}
	sortByDate(out)
	return out, nil
}

func (s *Orders) ListByParty(_ context.Context, userID string) ([]model.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	var out []model.Order
	for _, o := range s.db.orders {
		if o.CustomerID == userID || o.WorkerID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *Orders) ListDue(_ context.Context, now time.Time, statuses []model.OrderStatus) ([]model.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	var out []model.Order
	for _, o := range s.db.orders {
		if !o.CompletionDate.After(now) && slices.Contains(statuses, o.Status) {
			out = append(out, o)
		}
	}
	sortByDate(out)
	return out, nil
}

func (s *Orders) Update(_ context.Context, id string, mutate repository.Mutation) (*model.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	o, ok := s.db.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	notes, err := mutate(&o)
	if err != nil {
		return nil, err
	}
	if _, ok := s.db.users[o.CustomerID]; !ok {
		return nil, repository.ErrMissingRef
	}
	if _, ok := s.db.users[o.WorkerID]; o.WorkerID != "" && !ok {
		return nil, repository.ErrMissingRef
	}
	if err := s.db.insertNotifications(notes); err != nil {
		return nil, err
	}
	o.UpdatedAt = time.Now()
	s.db.orders[id] = o
	return &o, nil
}

func (s *Orders) Transition(_ context.Context, id string, from []model.OrderStatus, to model.OrderStatus, notes []model.Notification) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return false, s.db.Err
	}
	o, ok := s.db.orders[id]
	if !ok || !slices.Contains(from, o.Status) {
		return false, nil
	}
	if err := s.db.insertNotifications(notes); err != nil {
		return false, err
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	s.db.orders[id] = o
	return true, nil
}

func (s *Orders) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}
	if _, ok := s.db.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.orders, id)
	return nil
}

type Notifications struct{ db *DB }

func (s *Notifications) Create(_ context.Context, notes ...model.Notification) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}
	return s.db.insertNotifications(notes)
}

func (s *Notifications) ListByUser(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	var out []model.Notification
	for i := len(s.db.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if n := s.db.notifications[i]; n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Notifications) MarkRead(_ context.Context, userID, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}
	for i, n := range s.db.notifications {
		if n.ID == id && n.UserID == userID {
			s.db.notifications[i].Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *Notifications) PendingEvents(_ context.Context, limit, maxAttempts int) ([]model.OutboxEvent, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	now := time.Now()
	var out []model.OutboxEvent
	for _, e := range s.db.events {
		if len(out) == limit {
			break
		}
		if e.Status == model.OutboxNoAttemptsLeft || e.AttemptCount >= maxAttempts {
			continue
		}
		if e.NextAttemptAt != nil && e.NextAttemptAt.After(now) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Notifications) DeleteEvent(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}
	s.db.events = slices.DeleteFunc(s.db.events, func(e model.OutboxEvent) bool { return e.ID == id })
	return nil
}

func (s *Notifications) FailEvent(_ context.Context, id int64, attempts int, status model.OutboxStatus, next time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}
	for i := range s.db.events {
		if s.db.events[i].ID == id {
			s.db.events[i].AttemptCount = attempts
			s.db.events[i].Status = status
			s.db.events[i].NextAttemptAt = &next
			return nil
		}
	}
	return repository.ErrNotFound
}

type AccessCodes struct{ db *DB }

func (s *AccessCodes) Create(_ context.Context, c *model.AccessCode) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}
	for _, existing := range s.db.codes {
		if existing.SecretCode == c.SecretCode {
			return repository.ErrDuplicate
		}
	}
	s.db.codes[c.ID] = *c
	return nil
}

func (s *AccessCodes) List(_ context.Context) ([]model.AccessCode, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	out := make([]model.AccessCode, 0, len(s.db.codes))
	for _, c := range s.db.codes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type Groups struct{ db *DB }

func (s *Groups) Create(_ context.Context, g *model.Group) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return s.db.Err
	}
	for _, existing := range s.db.groups {
		if existing.GroupName == g.GroupName {
			return repository.ErrDuplicate
		}
	}
	s.db.groups[g.ID] = *g
	return nil
}

func (s *Groups) List(_ context.Context) ([]model.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	out := make([]model.Group, 0, len(s.db.groups))
	for _, g := range s.db.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupName < out[j].GroupName })
	return out, nil
}

func (s *Groups) GetByName(_ context.Context, name string) (*model.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.Err != nil {
		return nil, s.db.Err
	}
	for _, g := range s.db.groups {
		if g.GroupName == name {
			return &g, nil
		}
	}
	return nil, nil
}

var errStoreDown = errors.New("store unavailable")

// ErrStoreDown is a ready made value for DB.Err.
func ErrStoreDown() error { return errStoreDown }
