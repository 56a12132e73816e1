package auth

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joonhk/community-server/cmd/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/signup", h.HandleSignup).Methods("POST")
	router.HandleFunc("/auth/signin", h.HandleSignin).Methods("POST")
}

// HandleSignup registers a new account from a multipart form with an
// optional profile_image file.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := utils.ParseForm(r, 32<<20); err != nil {
		utils.WriteError(w, err)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	passwordConfirm := r.FormValue("password_confirm")
	nickname := r.FormValue("nickname")

	if email == "" || password == "" || passwordConfirm == "" || nickname == "" {
		utils.WriteError(w, utils.Validation("email, password, password_confirm and nickname are required"))
		return
	}
	if len(password) < 8 || len(password) > 20 {
		utils.WriteError(w, utils.Validation("password must be between 8 and 20 characters"))
		return
	}
	if len([]rune(nickname)) > 10 {
		utils.WriteError(w, utils.Validation("nickname must be 10 characters or fewer"))
		return
	}

	file, header, err := utils.OptionalFormFile(r, "profile_image")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	user, err := h.service.Signup(email, password, passwordConfirm, nickname, file, header)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "signup completed",
		"user":    user,
	})
}

// HandleSignin checks credentials from a form body.
func (h *Handler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	if err := utils.ParseForm(r, 1<<20); err != nil {
		utils.WriteError(w, err)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		utils.WriteError(w, utils.Validation("email and password are required"))
		return
	}
	if len(password) < 8 || len(password) > 20 {
		utils.WriteError(w, utils.Validation("password must be between 8 and 20 characters"))
		return
	}

	user, err := h.service.Signin(email, password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "signin successful",
		"user":    user,
	})
}
