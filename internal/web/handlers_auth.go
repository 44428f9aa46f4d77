package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/controltower/internal/core"
	"github.com/JonMunkholm/controltower/internal/web/middleware"
)

// loginResponse adds the session token for clients that send it as a
// bearer header instead of relying on the cookie.
type loginResponse struct {
	*core.LoginResult
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleSignup(role core.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in core.SignupInput
		if err := decodeJSON(w, r, &in); err != nil {
			respondError(w, r, err)
			return
		}
		res, err := s.service.Signup(r.Context(), role, in)
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, res)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.Security.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, loginResponse{LoginResult: res, Token: res.Token, ExpiresAt: res.ExpiresAt})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		respondError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Security.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p == nil {
		respondError(w, r, core.Errorf(core.KindUnauthorized, "Authentication required"))
		return
	}
	u, err := s.service.User(r.Context(), p.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, u)
}

func (s *Server) handleSetPasswordFirst(w http.ResponseWriter, r *http.Request) {
	var in core.PasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	ref, err := s.service.SetPasswordFirst(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, ref)
}

func (s *Server) handleResetInfo(w http.ResponseWriter, r *http.Request) {
	var in core.PasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	info, err := s.service.ResetInfo(r.Context(), in.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, info)
}

func (s *Server) handleGenerateResetToken(w http.ResponseWriter, r *http.Request) {
	var in core.PasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	tok, err := s.service.GenerateResetToken(r.Context(), in.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, tok)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in core.PasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.service.ResetPassword(r.Context(), in); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handlePendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.service.PendingUsers(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if users == nil {
		users = []core.User{}
	}
	writeJSON(w, users)
}

func (s *Server) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	// The body is optional; it only carries a corrected customer name.
	var in struct {
		CustomerName string `json:"customerName"`
	}
	if err := decodeJSON(w, r, &in); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, r, err)
		return
	}

	u, err := s.service.ApproveUser(r.Context(), id, in.CustomerName)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, u)
}

func (s *Server) handleRejectUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	u, err := s.service.RejectUser(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, u)
}
