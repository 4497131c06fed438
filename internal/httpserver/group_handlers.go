package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatme/internal/service"
)

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type groupMemberRequest struct {
	UserID string `json:"userId"`
}

func handleCreateGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGroupRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		group, err := groupSvc.Create(r.Context(), CurrentUser(r), req.Name, req.Members)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, group)
	}
}

func handleListGroups(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := groupSvc.ListMine(r.Context(), CurrentUser(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
	}
}

func handleGetGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group, err := groupSvc.Get(r.Context(), CurrentUser(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, group)
	}
}

func handleAddGroupMember(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req groupMemberRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		group, err := groupSvc.AddMember(r.Context(), CurrentUser(r), chi.URLParam(r, "id"), req.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, group)
	}
}

func handleRemoveGroupMember(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req groupMemberRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		group, err := groupSvc.RemoveMember(r.Context(), CurrentUser(r), chi.URLParam(r, "id"), req.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, group)
	}
}

func handleLeaveGroup(groupSvc *service.GroupService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := groupSvc.Leave(r.Context(), CurrentUser(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "left group"})
	}
}
