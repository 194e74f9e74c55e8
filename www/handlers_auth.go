package www

import (
	"log"
	"net/http"

	"github.com/Konlor08/PigOnTime/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		h.jsonError(w, "bad request", http.StatusBadRequest)
		return
	}

	user, err := h.engine.DB().GetUserByUsername(req.Username)
	if err != nil || !checkPassword(user.PasswordHash, req.Password) {
		h.jsonError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username
	session.Values["role"] = user.Role
	if err := session.Save(r, w); err != nil {
		log.Printf("auth: session save: %v", err)
	}

	h.jsonOK(w, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

// handleLogout clears the session. A logging-out driver also stops the
// position stream so the truck does not keep reporting into a session
// nobody is driving.
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if ident, ok := h.identity(r); ok && ident.Role == store.RoleDriver {
		h.engine.Tracker().Stop(ident.UserID)
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["user_id"] = int64(0)
	session.Values["username"] = ""
	session.Values["role"] = ""
	session.Options.MaxAge = -1
	session.Save(r, w)
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiMe(w http.ResponseWriter, r *http.Request) {
	ident, _ := h.identity(r)
	session, _ := h.sessions.Get(r, sessionName)
	username, _ := session.Values["username"].(string)
	h.jsonOK(w, map[string]any{
		"user_id":  ident.UserID,
		"username": username,
		"role":     ident.Role,
	})
}

func (h *Handlers) apiHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DB().Ping(); err != nil {
		h.jsonError(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	h.jsonOK(w, map[string]string{"status": "ok"})
}
