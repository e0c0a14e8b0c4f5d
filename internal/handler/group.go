package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workorders/internal/service"
)

type createGroupRequest struct {
	GroupName            string `json:"groupName" validate:"required,max=100"`
	GroupDescription     string `json:"groupDescription" validate:"max=500"`
	GroupFullDescription string `json:"groupFullDescription"`
}

func ListGroupsHandler(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := groupSvc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

func GetGroupHandler(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := groupSvc.GetByName(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if g == nil {
			http.Error(w, "group not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func CreateGroupHandler(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGroupRequest
		if !decodeValid(w, r, &req) {
			return
		}

		g, err := groupSvc.Create(r.Context(), req.GroupName, req.GroupDescription, req.GroupFullDescription)
		if err != nil {
			if errors.Is(err, service.ErrGroupExists) {
				http.Error(w, "group already exists", http.StatusConflict)
				return
			}
			slog.Error("create group failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}
