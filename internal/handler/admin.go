package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workorders/internal/model"
	"workorders/internal/service"
)

type createCodeRequest struct {
	CustomName     string `json:"customName"`
	Email          string `json:"email" validate:"omitempty,email"`
	ContractNumber string `json:"contractNumber"`
	Role           string `json:"role"`
	Duration       string `json:"duration"`
}

// CreateCodeHandler issues an onboarding code. Incomplete forms and the placeholder role
// get 422 with nothing stored.
func CreateCodeHandler(codeSvc *service.AccessCodeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCodeRequest
		if !decodeValid(w, r, &req) {
			return
		}

		c, err := codeSvc.CreateCode(r.Context(), service.NewAccessCode{
			CustomName:     req.CustomName,
			Email:          req.Email,
			ContractNumber: req.ContractNumber,
			Role:           req.Role,
			Duration:       req.Duration,
		})
		if err != nil {
			slog.Error("create access code failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if c == nil {
			http.Error(w, "code request rejected", http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func ListCodesHandler(codeSvc *service.AccessCodeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes, err := codeSvc.ListCodes(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, codes)
	}
}

func SweepHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := orderSvc.CheckOrders(r.Context())
		if err != nil {
			slog.Error("manual sweep failed", "completed", n, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"completed": n})
	}
}

func DeleteUserHandler(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := userSvc.DeleteByEmail(r.Context(), chi.URLParam(r, "email"))
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case err != nil:
			slog.Error("delete user failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

// UserOrdersHandler lists a user's orders by e-mail; ?accepted=true narrows to accepted work.
func UserOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")
		var orders []model.Order
		if queryFlag(r, "accepted") {
			orders = orderSvc.ListAcceptedByEmail(r.Context(), email)
		} else {
			orders = orderSvc.ListByEmail(r.Context(), email)
		}
		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}
