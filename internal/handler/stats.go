package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"workorders/internal/service"
)

func MyStatsHandler(metricsSvc *service.MetricsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, metricsSvc.Stats(r.Context(), userID))
	}
}

// UserStatsHandler serves the figures shown on a user's profile.
func UserStatsHandler(metricsSvc *service.MetricsService, userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		u, err := userSvc.GetByID(r.Context(), id)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if u == nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, metricsSvc.Stats(r.Context(), u.ID))
	}
}
