package httptransport

import (
	"net/http"

	"storefront/internal/api"
	"storefront/internal/session"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type sessionResponse struct {
	Status session.Status `json:"status"`
	User   *api.User      `json:"user,omitempty"`
}

func toSessionResponse(s session.Session) sessionResponse {
	res := sessionResponse{Status: s.Status}
	if s.Authenticated() {
		user := s.User
		res.User = &user
	}
	return res
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	snap, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(snap))
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	snap, err := h.sessions.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(snap))
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	snap := h.sessions.SignOut(r.Context())

	// Sign-out discards any open checkout draft along with the session.
	h.mu.Lock()
	h.flow = nil
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, toSessionResponse(snap))
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(h.sessions.Current()))
}
