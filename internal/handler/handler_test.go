package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"workorders/internal/model"
	"workorders/internal/service"
	"workorders/internal/service/servicetest"
	"workorders/internal/table"
)

const testSecret = "handler-test-secret"

type HandlerSuite struct {
	suite.Suite
	db     *servicetest.DB
	router http.Handler

	customer, worker, admin model.User
}

func (s *HandlerSuite) SetupTest() {
	s.db = servicetest.NewDB()
	s.customer = s.db.AddUser(model.User{ID: "c1", Email: "c1@example.com", UserName: "Carol", Role: model.RoleCustomer})
	s.worker = s.db.AddUser(model.User{ID: "w1", Email: "w1@example.com", UserName: "Walt", Role: model.RoleWorker})
	s.admin = s.db.AddUser(model.User{ID: "adm", Email: "admin@example.com", UserName: "Root", Role: model.RoleAdmin})

	notifications := service.NewNotificationService(s.db.Notifications())
	orders := service.NewOrderService(s.db.Orders(), s.db.Users(), notifications)
	s.router = NewRouter(Services{
		Auth:          service.NewAuthService(s.db.Users()),
		Orders:        orders,
		Users:         service.NewUserService(s.db.Users(), orders),
		Metrics:       service.NewMetricsService(orders),
		Notifications: notifications,
		Codes:         service.NewAccessCodeService(s.db.AccessCodes(), nil),
		Groups:        service.NewGroupService(s.db.Groups()),
	}, testSecret)
}

func (s *HandlerSuite) do(method, path string, as *model.User, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := issueToken(as, testSecret)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *HandlerSuite) TestRegisterAndLogin() {
	rec := s.do(http.MethodPost, "/api/user/register", nil, map[string]string{
		"email": "new@example.com", "userName": "Nina", "password": "secret1",
	})
	s.Equal(http.StatusOK, rec.Code)
	s.True(strings.HasPrefix(rec.Header().Get("Authorization"), "Bearer "))

	var u model.User
	s.decode(rec, &u)
	s.Equal(model.RoleCustomer, u.Role)
	s.NotContains(rec.Body.String(), "password")

	rec = s.do(http.MethodPost, "/api/user/register", nil, map[string]string{
		"email": "new@example.com", "userName": "Nina", "password": "secret1",
	})
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/user/login", nil, map[string]string{"email": "new@example.com", "password": "secret1"})
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/user/login", nil, map[string]string{"email": "new@example.com", "password": "nope"})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestRegisterValidation() {
	rec := s.do(http.MethodPost, "/api/user/register", nil, map[string]string{"email": "not-an-email", "password": "x"})
	s.Equal(http.StatusBadRequest, rec.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	s.decode(rec, &body)
	s.Equal("email", body.Errors["email"])
	s.Equal("required", body.Errors["userName"])
	s.Equal("min", body.Errors["password"])
}

func (s *HandlerSuite) TestRegisterWithUsedCode() {
	s.db.AddCode(model.AccessCode{ID: "k", SecretCode: "Abcdef1234", Role: model.RoleWorker, Used: true,
		ExpirationDate: time.Now().Add(time.Hour)})

	rec := s.do(http.MethodPost, "/api/user/register", nil, map[string]string{
		"email": "x@example.com", "userName": "X", "password": "secret1", "secretCode": "Abcdef1234",
	})
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestOrderFlow() {
	rec := s.do(http.MethodPost, "/api/orders", &s.customer, map[string]any{
		"orderName":      "Promo cut",
		"workerId":       "w1",
		"completionDate": time.Now().Add(72 * time.Hour),
		"revisionDays":   2,
		"footageLink":    "https://example.com/raw.mp4",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Order
	s.decode(rec, &created)
	s.Equal(model.StatusPlaced, created.Status)
	s.Equal("c1", created.CustomerID)

	rec = s.do(http.MethodPost, "/api/orders/"+created.ID+"/status", &s.customer, map[string]string{"action": "accept"})
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/orders/"+created.ID+"/status", &s.worker, map[string]string{"action": "accept"})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/orders/"+created.ID+"/status", &s.worker, map[string]string{"action": "expire"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/orders/"+created.ID+"/status", &s.customer, map[string]string{"action": "pay"})
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/orders/accepted", &s.worker, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var accepted []model.Order
	s.decode(rec, &accepted)
	s.Len(accepted, 1)

	rec = s.do(http.MethodGet, "/api/orders/"+created.ID+"?ownerIds=true", &s.worker, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var got model.Order
	s.decode(rec, &got)
	s.Require().NotNil(got.CreatedBy)
	s.Equal("c1", got.CreatedBy.ID)

	rec = s.do(http.MethodGet, "/api/orders/stats", &s.worker, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var stats service.Stats
	s.decode(rec, &stats)
	s.Equal(1, stats.PendingTasks)
	s.Zero(stats.CompletionRate)

	rec = s.do(http.MethodGet, "/api/notifications", &s.customer, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var notes []model.Notification
	s.decode(rec, &notes)
	s.Require().Len(notes, 1)
	s.Equal(model.NotificationOrderAccepted, notes[0].Type)

	rec = s.do(http.MethodPost, "/api/notifications/"+notes[0].ID+"/read", &s.customer, nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *HandlerSuite) TestCreateOrderUnknownWorker() {
	rec := s.do(http.MethodPost, "/api/orders", &s.customer, map[string]any{
		"orderName": "x", "workerId": "ghost", "completionDate": time.Now(),
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *HandlerSuite) TestUpdateOrder() {
	s.db.AddUser(model.User{ID: "w2", Email: "w2@example.com", Role: model.RoleWorker})
	s.db.AddOrder(model.Order{ID: "o1", OrderName: "Reel", Status: model.StatusDeclined, CustomerID: "c1", WorkerID: "w1"})

	rec := s.do(http.MethodPut, "/api/orders/o1", &s.customer, map[string]any{"workerId": "w2"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var o model.Order
	s.decode(rec, &o)
	s.Equal(model.StatusPlaced, o.Status)
	s.Equal("w2", o.WorkerID)

	rec = s.do(http.MethodPut, "/api/orders/o1", &s.customer, map[string]any{"revisionDays": -1})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/orders/missing", &s.customer, map[string]any{})
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestListOrdersEmpty() {
	rec := s.do(http.MethodGet, "/api/orders", &s.customer, nil)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/orders", nil, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestOrderTable() {
	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Alpha", "beta", "gamma"} {
		s.db.AddOrder(model.Order{
			ID: name, OrderName: name, Status: model.StatusPlaced,
			CustomerID: "c1", WorkerID: "w1", CompletionDate: due.AddDate(0, 0, i),
		})
	}

	rec := s.do(http.MethodGet, "/api/orders/table?q=A&sort=name&dir=desc", &s.worker, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var view table.View
	s.decode(rec, &view)
	s.Equal(3, view.Total)
	s.Require().Len(view.Rows, 3)
	s.Equal("gamma", view.Rows[0].WorkName)
	s.Equal("Carol", view.Rows[0].OrderedBy)

	rec = s.do(http.MethodGet, "/api/orders/table?q=zzz", &s.worker, nil)
	var empty table.View
	s.decode(rec, &empty)
	s.Equal(table.Placeholder, empty.Placeholder)
	s.Empty(empty.Rows)

	rec = s.do(http.MethodGet, "/api/orders/table?page=0", &s.worker, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestAdminRoutesRequireAdmin() {
	rec := s.do(http.MethodGet, "/api/admin/codes", &s.customer, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/codes", &s.admin, nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerSuite) TestAdminCodes() {
	rec := s.do(http.MethodPost, "/api/admin/codes", &s.admin, map[string]string{
		"customName": "North", "email": "north@example.com", "contractNumber": "C-1",
		"role": model.RoleWorker, "duration": service.DurationOneWeek,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var c model.AccessCode
	s.decode(rec, &c)
	s.Len(c.SecretCode, service.SecretCodeLength)

	rec = s.do(http.MethodPost, "/api/admin/codes", &s.admin, map[string]string{
		"customName": "North", "email": "north@example.com", "contractNumber": "C-1",
		"role": model.RoleHolder, "duration": service.DurationOneWeek,
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPost, "/api/user/register", nil, map[string]string{
		"email": "north@example.com", "userName": "North", "password": "secret1", "secretCode": c.SecretCode,
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	var u model.User
	s.decode(rec, &u)
	s.Equal(model.RoleWorker, u.Role)
}

func (s *HandlerSuite) TestAdminSweep() {
	s.db.AddOrder(model.Order{ID: "o1", OrderName: "Late", Status: model.StatusAccepted, CustomerID: "c1",
		WorkerID: "w1", CompletionDate: time.Now().Add(-time.Hour)})

	rec := s.do(http.MethodPost, "/api/admin/sweep", &s.admin, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"completed":1}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/admin/sweep", &s.admin, nil)
	s.JSONEq(`{"completed":0}`, rec.Body.String())
}

func (s *HandlerSuite) TestAdminUsers() {
	s.db.AddOrder(model.Order{ID: "o1", Status: model.StatusAccepted, CustomerID: "c1", WorkerID: "w1"})

	rec := s.do(http.MethodGet, "/api/admin/users/w1@example.com/orders?accepted=true", &s.admin, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/admin/users/c1@example.com", &s.admin, nil)
	s.Equal(http.StatusNoContent, rec.Code)
	s.Zero(s.db.OrderCount())

	rec = s.do(http.MethodDelete, "/api/admin/users/c1@example.com", &s.admin, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/users/c1@example.com/orders", &s.admin, nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *HandlerSuite) TestGroups() {
	rec := s.do(http.MethodPost, "/api/admin/groups", &s.admin, map[string]string{"groupName": "editors"})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/groups", &s.admin, map[string]string{"groupName": "editors"})
	s.Equal(http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/groups/editors", &s.worker, nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/groups/colorists", &s.worker, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestUserStats() {
	s.db.AddOrder(model.Order{ID: "o1", Status: model.StatusCompleted, CustomerID: "c1", WorkerID: "w1"})

	rec := s.do(http.MethodGet, "/api/users/w1/stats", &s.customer, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var stats service.Stats
	s.decode(rec, &stats)
	s.InDelta(100.0, stats.CompletionRate, 0.001)

	rec = s.do(http.MethodGet, "/api/users/ghost/stats", &s.customer, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}
