package auth

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/spf13/viper"

	"github.com/greenbasket/greenbasket-web/internal/models"
	"github.com/greenbasket/greenbasket-web/internal/services"
)

const sessionName = "greenbasket-session"

var (
	Store       *sessions.CookieStore
	userService *services.UserService
)

func Init(users *services.UserService) {
	Store = sessions.NewCookieStore([]byte(viper.GetString("auth.session_secret")))
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	userService = users
}

// POST /register
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := userService.CreateUser(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	setSessionUser(w, r, user.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// POST /login
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := userService.AuthenticateUser(&req)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	setSessionUser(w, r, user.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// POST /logout
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, sessionName)
	session.Values["authenticated"] = false
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1
	session.Save(r, w)
	w.WriteHeader(http.StatusNoContent)
}

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := Store.Get(r, sessionName)

		if auth, ok := session.Values["authenticated"].(bool); !ok || !auth {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromSession returns the logged-in user's id, or 0.
func GetUserIDFromSession(r *http.Request) int {
	session, err := Store.Get(r, sessionName)
	if err != nil {
		return 0
	}
	if id, ok := session.Values["user_id"].(int); ok {
		return id
	}
	return 0
}

func setSessionUser(w http.ResponseWriter, r *http.Request, userID int) {
	session, _ := Store.Get(r, sessionName)
	session.Values["authenticated"] = true
	session.Values["user_id"] = userID
	session.Save(r, w)
}
