package httpserver

import (
	"net/http"

	"chatme/internal/domain"
	"chatme/internal/service"
)

type startGroupCallRequest struct {
	GroupID  string `json:"groupId"`
	CallType string `json:"type"`
}

type groupCallSessionRequest struct {
	GroupID   string `json:"groupId"`
	SessionID string `json:"sessionId"`
}

func handleStartGroupCall(groupCallSvc *service.GroupCallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startGroupCallRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		res, err := groupCallSvc.Start(r.Context(), CurrentUser(r), req.GroupID, domain.CallKind(req.CallType))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleJoinGroupCall(groupCallSvc *service.GroupCallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req groupCallSessionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		res, err := groupCallSvc.Join(r.Context(), CurrentUser(r), req.GroupID, req.SessionID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleEndGroupCall(groupCallSvc *service.GroupCallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req groupCallSessionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		res, err := groupCallSvc.End(r.Context(), CurrentUser(r), req.GroupID, req.SessionID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
