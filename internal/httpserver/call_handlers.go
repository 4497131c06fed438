package httpserver

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatme/internal/domain"
	"chatme/internal/service"
)

type initiateCallRequest struct {
	Participants []string `json:"participants"`
	CallType     string   `json:"type"`
}

type respondCallRequest struct {
	CallID   string `json:"callId"`
	Response string `json:"response"`
}

func handleInitiateCall(callSvc *service.CallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req initiateCallRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		res, err := callSvc.Initiate(r.Context(), CurrentUser(r), req.Participants, domain.CallKind(req.CallType))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"callId":     res.Invitation.CallID,
			"invitation": res.Invitation,
			"notified":   res.Notified,
		})
	}
}

func handleRespondCall(callSvc *service.CallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req respondCallRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		var accept bool
		switch req.Response {
		case "accept":
			accept = true
		case "reject":
			accept = false
		default:
			writeError(w, fmt.Errorf("response must be accept or reject: %w", domain.ErrInvalidInput))
			return
		}

		res, err := callSvc.Respond(r.Context(), CurrentUser(r), req.CallID, accept)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleGetCall(callSvc *service.CallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := callSvc.GetDetails(CurrentUser(r).ID.Hex(), chi.URLParam(r, "callID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	}
}

func handleEndCall(callSvc *service.CallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := callSvc.End(CurrentUser(r).ID.Hex(), chi.URLParam(r, "callID")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "call ended"})
	}
}

func handleMyCalls(callSvc *service.CallService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls := callSvc.ListMine(CurrentUser(r).ID.Hex())
		writeJSON(w, http.StatusOK, map[string]any{"calls": calls})
	}
}
