package www

import (
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/Konlor08/PigOnTime/board"
	"github.com/Konlor08/PigOnTime/store"
)

const sessionName = "pigontime-session"

func newSessionStore(secret string) *sessions.CookieStore {
	if secret == "" {
		secret = "pigontime-default-secret-change-me"
	}
	s := sessions.NewCookieStore([]byte(secret))
	s.Options.HttpOnly = true
	s.Options.Secure = false // deployed behind a plant-network proxy
	s.Options.SameSite = http.SameSiteLaxMode
	return s
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// identity resolves the logged-in user from the session cookie.
// Scope (farms, sites, plates) is looked up per request, never cached
// in the cookie, so assignment changes apply immediately.
func (h *Handlers) identity(r *http.Request) (board.Identity, bool) {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return board.Identity{}, false
	}
	userID, ok := session.Values["user_id"].(int64)
	if !ok || userID == 0 {
		return board.Identity{}, false
	}
	role, _ := session.Values["role"].(string)
	return board.Identity{UserID: userID, Role: role}, true
}

func (h *Handlers) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.identity(r); !ok {
			h.jsonError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole gates a route to one role. Managers pass everywhere.
func (h *Handlers) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := h.identity(r)
			if !ok {
				h.jsonError(w, "authentication required", http.StatusUnauthorized)
				return
			}
			if ident.Role != role && ident.Role != store.RoleManager {
				h.jsonError(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ensureDefaultManager seeds a manager login on an empty install.
func (h *Handlers) ensureDefaultManager(db *store.DB) {
	exists, err := db.UserExists()
	if err != nil || exists {
		return
	}
	hash, err := hashPassword("admin")
	if err != nil {
		return
	}
	db.CreateUser(&store.User{Username: "admin", PasswordHash: hash, Role: store.RoleManager})
}
