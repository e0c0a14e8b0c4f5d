package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"workorders/internal/service"
)

type registerRequest struct {
	Email      string `json:"email" validate:"required,email"`
	UserName   string `json:"userName" validate:"required,max=64"`
	Password   string `json:"password" validate:"required,min=6"`
	SecretCode string `json:"secretCode" validate:"omitempty,len=10,alphanum"`
}

func RegisterHandler(authSvc *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeValid(w, r, &req) {
			return
		}

		user, err := authSvc.Register(r.Context(), service.Registration{
			Email:      req.Email,
			UserName:   req.UserName,
			Password:   req.Password,
			SecretCode: req.SecretCode,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmailTaken):
				http.Error(w, "email already registered", http.StatusConflict)
			case errors.Is(err, service.ErrInvalidCode):
				http.Error(w, "access code invalid, used or expired", http.StatusForbidden)
			default:
				slog.Error("register failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		respondWithToken(w, user, secret, http.StatusOK)
	}
}
