package user

import (
	"net/http"
	"strconv"

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
	router.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	router.HandleFunc("/users/{id}", h.UpdateUser).Methods("PUT")
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, utils.Validation("invalid user ID"))
		return
	}

	user, err := h.service.GetUser(userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateUser edits nickname, password and/or profile image; absent
// fields keep their stored values.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, utils.Validation("invalid user ID"))
		return
	}
	if err := utils.ParseForm(r, 32<<20); err != nil {
		utils.WriteError(w, err)
		return
	}

	nickname := utils.OptionalFormValue(r, "nickname")
	password := utils.OptionalFormValue(r, "password")
	if password != nil && (len(*password) < 8 || len(*password) > 20) {
		utils.WriteError(w, utils.Validation("password must be between 8 and 20 characters"))
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

	user, err := h.service.UpdateUser(userID, nickname, password, file, header)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "profile updated",
		"user":    user,
	})
}
