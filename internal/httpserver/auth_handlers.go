package httpserver

import (
	"net/http"
	"time"

	"chatme/internal/domain"
	"chatme/internal/service"
)

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type onboardRequest struct {
	FullName string `json:"fullName"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func handleSignup(authSvc *service.AuthService, cookieTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		resp, err := authSvc.Signup(r.Context(), service.SignupInput{
			FullName: req.FullName,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		setSessionCookie(w, resp.AccessToken, cookieTTL)
		writeJSON(w, http.StatusCreated, tokenResponse{Token: resp.AccessToken, User: resp.User})
	}
}

func handleLogin(authSvc *service.AuthService, cookieTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		resp, err := authSvc.Login(r.Context(), service.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		setSessionCookie(w, resp.AccessToken, cookieTTL)
		writeJSON(w, http.StatusOK, tokenResponse{Token: resp.AccessToken, User: resp.User})
	}
}

func handleLogout(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if err := authSvc.Logout(r.Context(), user); err != nil {
			writeError(w, err)
			return
		}
		clearSessionCookie(w)
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CurrentUser(r))
	}
}

func handleOnboarding(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req onboardRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		user, err := authSvc.Onboard(r.Context(), CurrentUser(r), service.OnboardInput{
			FullName: req.FullName,
			Bio:      req.Bio,
			Location: req.Location,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func handleChatToken(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := authSvc.ChatToken(CurrentUser(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}
