package comment

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
	router.HandleFunc("/posts/{id}/comments", h.CreateComment).Methods("POST")
	router.HandleFunc("/posts/{id}/comments", h.GetComments).Methods("GET")
	router.HandleFunc("/posts/comments/{commentId}", h.UpdateComment).Methods("PUT")
	router.HandleFunc("/posts/comments/{commentId}", h.DeleteComment).Methods("DELETE")
}

func pathID(r *http.Request, key string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[key])
	if err != nil {
		return 0, utils.Validation("invalid " + key)
	}
	return id, nil
}

func formUserID(r *http.Request) (int, error) {
	userID, err := strconv.Atoi(r.FormValue("user_id"))
	if err != nil {
		return 0, utils.Validation("user_id is required")
	}
	return userID, nil
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := utils.ParseForm(r, 1<<20); err != nil {
		utils.WriteError(w, err)
		return
	}
	userID, err := formUserID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	comment, err := h.service.CreateComment(postID, userID, r.FormValue("content"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "comment created",
		"comment": comment,
	})
}

func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	comments, total, err := h.service.GetComments(postID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"total":    total,
		"comments": comments,
	})
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := utils.ParseForm(r, 1<<20); err != nil {
		utils.WriteError(w, err)
		return
	}
	userID, err := formUserID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	comment, err := h.service.UpdateComment(commentID, userID, r.FormValue("content"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "comment updated",
		"comment": comment,
	})
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := utils.ParseForm(r, 1<<20); err != nil {
		utils.WriteError(w, err)
		return
	}
	userID, err := formUserID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.service.DeleteComment(commentID, userID); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
