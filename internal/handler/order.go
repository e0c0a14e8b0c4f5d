package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"workorders/internal/lifecycle"
	"workorders/internal/model"
	"workorders/internal/mw"
	"workorders/internal/service"
	"workorders/internal/table"
)

type createOrderRequest struct {
	OrderName      string    `json:"orderName" validate:"required,max=200"`
	CustomerID     string    `json:"customerId"`
	WorkerID       string    `json:"workerId" validate:"required"`
	CompletionDate time.Time `json:"completionDate" validate:"required"`
	RevisionDays   int       `json:"revisionDays" validate:"min=0"`
	Description    string    `json:"description"`
	FootageLink    string    `json:"footageLink" validate:"omitempty,url"`
}

type statusRequest struct {
	Action string `json:"action" validate:"required"`
}

func actor(r *http.Request) service.Actor {
	id, _ := mw.UserID(r.Context())
	return service.Actor{ID: id, Role: mw.Role(r.Context())}
}

func queryFlag(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

// writeOrderError maps service errors of the order write paths to responses.
func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	case errors.Is(err, service.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrNotParty):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, lifecycle.ErrTransitionNotAllowed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		slog.Error("order request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// CreateOrderHandler places an order on behalf of the caller. Admins may place it for
// another customer.
func CreateOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req createOrderRequest
		if !decodeValid(w, r, &req) {
			return
		}
		customerID := userID
		if req.CustomerID != "" && mw.Role(r.Context()) == model.RoleAdmin {
			customerID = req.CustomerID
		}

		o, err := orderSvc.Create(r.Context(), service.NewOrder{
			OrderName:      req.OrderName,
			CustomerID:     customerID,
			WorkerID:       req.WorkerID,
			CompletionDate: req.CompletionDate,
			RevisionDays:   req.RevisionDays,
			Description:    req.Description,
			FootageLink:    req.FootageLink,
		})
		if err != nil {
			writeOrderError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, o)
	}
}

func ListOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		orders := orderSvc.ListByUser(r.Context(), userID, queryFlag(r, "withOwner"))
		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func ListAcceptedOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		orders := orderSvc.ListAcceptedByUser(r.Context(), userID, queryFlag(r, "withOwner"))
		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func GetOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := orderSvc.GetByID(r.Context(), chi.URLParam(r, "id"), queryFlag(r, "ownerIds"))
		if err != nil {
			writeOrderError(w, err)
			return
		}
		if o == nil {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}

func UpdateOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch model.OrderPatch
		if !decodeValid(w, r, &patch) {
			return
		}

		o, err := orderSvc.Update(r.Context(), chi.URLParam(r, "id"), actor(r), patch)
		if err != nil {
			writeOrderError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}

func SetOrderStatusHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if !decodeValid(w, r, &req) {
			return
		}
		trigger, ok := lifecycle.ParseTrigger(req.Action)
		if !ok {
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}

		o, err := orderSvc.SetStatus(r.Context(), chi.URLParam(r, "id"), actor(r), trigger)
		if err != nil {
			writeOrderError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}

// OrderTableHandler renders the caller's orders as a searchable, sortable, paged table.
func OrderTableHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		state := table.New()
		state.Search(q.Get("q"))
		if col := q.Get("sort"); col != "" {
			state.Sort(col)
			if table.Direction(q.Get("dir")) == table.Desc {
				state.Order = table.Desc
			}
		}
		if p := q.Get("page"); p != "" {
			page, err := strconv.Atoi(p)
			if err != nil || page < 1 {
				http.Error(w, "invalid page", http.StatusBadRequest)
				return
			}
			state.SetPage(page)
		}

		orders := orderSvc.ListByUser(r.Context(), userID, true)
		writeJSON(w, http.StatusOK, state.Render(workCards(orders)))
	}
}

func workCards(orders []model.Order) []table.WorkCard {
	cards := make([]table.WorkCard, 0, len(orders))
	for _, o := range orders {
		c := table.WorkCard{
			WorkName:       o.OrderName,
			WorkStatus:     string(o.Status),
			CompletionDate: o.CompletionDate,
		}
		if o.CreatedBy != nil {
			c.OrderedBy = o.CreatedBy.UserName
		}
		cards = append(cards, c)
	}
	return cards
}
