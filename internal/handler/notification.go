package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workorders/internal/service"
)

func ListNotificationsHandler(notificationSvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		notes, err := notificationSvc.ListForUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if len(notes) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}

func MarkNotificationReadHandler(notificationSvc *service.NotificationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		err := notificationSvc.MarkRead(r.Context(), userID, chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			http.Error(w, "notification not found", http.StatusNotFound)
		case err != nil:
			http.Error(w, "internal error", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}
