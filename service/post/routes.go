package post

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
	router.HandleFunc("/posts", h.CreatePost).Methods("POST")
	router.HandleFunc("/posts", h.GetPosts).Methods("GET")
	router.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	router.HandleFunc("/posts/{id}", h.UpdatePost).Methods("PUT")
	router.HandleFunc("/posts/{id}", h.DeletePost).Methods("DELETE")
	router.HandleFunc("/posts/{id}/like", h.ToggleLike).Methods("POST")
	router.HandleFunc("/posts/{id}/view", h.IncrementView).Methods("POST")
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

// CreatePost creates a post from a multipart form with an optional
// image file.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := utils.ParseForm(r, 32<<20); err != nil {
		utils.WriteError(w, err)
		return
	}

	userID, err := formUserID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	file, header, err := utils.OptionalFormFile(r, "image")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	post, err := h.service.CreatePost(r.FormValue("title"), r.FormValue("content"), userID, file, header)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "post created",
		"post":    post,
	})
}

// GetPosts lists posts newest first with skip/limit slicing.
func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, total, err := h.service.GetPosts(skip, limit)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"total": total,
		"posts": posts,
	})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	post, err := h.service.GetPost(postID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"post": post})
}

// UpdatePost merges supplied fields; absent form fields stay untouched.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if err := utils.ParseForm(r, 32<<20); err != nil {
		utils.WriteError(w, err)
		return
	}
	userID, err := formUserID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	file, header, err := utils.OptionalFormFile(r, "image")
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	title := utils.OptionalFormValue(r, "title")
	content := utils.OptionalFormValue(r, "content")

	post, err := h.service.UpdatePost(postID, userID, title, content, file, header)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "post updated",
		"post":    post,
	})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeletePost(postID, userID); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// ToggleLike likes the post when the user has not liked it yet and
// unlikes it otherwise.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
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

	liked, likes, err := h.service.ToggleLike(postID, userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"liked": liked,
		"likes": likes,
	})
}

func (h *Handler) IncrementView(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.service.IncrementView(postID); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "view count incremented"})
}
