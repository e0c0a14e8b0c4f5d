package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"workorders/internal/model"
	"workorders/internal/service"
)

const tokenTTL = 24 * time.Hour

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func LoginHandler(authSvc *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeValid(w, r, &req) {
			return
		}

		user, err := authSvc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				http.Error(w, "invalid email or password", http.StatusUnauthorized)
			default:
				slog.Error("login failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		respondWithToken(w, user, secret, http.StatusOK)
	}
}

func issueToken(user *model.User, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     jwt.NewNumericDate(time.Now().Add(tokenTTL)),
	})
	return token.SignedString([]byte(secret))
}

func respondWithToken(w http.ResponseWriter, user *model.User, secret string, status int) {
	tokenString, err := issueToken(user, secret)
	if err != nil {
		http.Error(w, "token generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", "Bearer "+tokenString)
	writeJSON(w, status, user)
}
