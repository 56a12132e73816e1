package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joonhk/community-server/cmd/utils"
	"github.com/joonhk/community-server/db"
	"github.com/joonhk/community-server/service/auth"
	"github.com/joonhk/community-server/service/comment"
	"github.com/joonhk/community-server/service/post"
	"github.com/joonhk/community-server/service/user"
	"github.com/sirupsen/logrus"
)

type APIServer struct {
	address   string
	store     *db.Store
	uploadDir string
	log       *logrus.Logger
}

func NewAPIServer(address string, store *db.Store, uploadDir string, log *logrus.Logger) *APIServer {
	return &APIServer{
		address:   address,
		store:     store,
		uploadDir: uploadDir,
		log:       log,
	}
}

// Router builds the full handler chain: service routes under /api/v1,
// uploaded media under /static, CORS, request logging and panic
// recovery.
func (s *APIServer) Router() http.Handler {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	authService := auth.NewService(s.store.Users, s.uploadDir, s.log)
	auth.NewHandler(authService).RegisterRoutes(subrouter)

	postService := post.NewService(s.store.Posts, s.store.Users, s.store.Comments, s.uploadDir, s.log)
	post.NewHandler(postService).RegisterRoutes(subrouter)

	commentService := comment.NewService(s.store.Comments, s.store.Posts, s.store.Users, s.log)
	comment.NewHandler(commentService).RegisterRoutes(subrouter)

	userService := user.NewService(s.store.Users, authService, s.log)
	user.NewHandler(userService).RegisterRoutes(subrouter)

	router.HandleFunc("/", s.handleRoot).Methods("GET")

	fileServer := http.FileServer(http.Dir(s.uploadDir))
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fileServer))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	var handler http.Handler = router
	handler = cors(handler)
	handler = handlers.LoggingHandler(s.log.Writer(), handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(s.log))(handler)
	return handler
}

func (s *APIServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Community API Server",
		"version": "1.0.0",
	})
}

func (s *APIServer) Run() error {
	s.log.WithField("address", s.address).Info("server listening")
	return http.ListenAndServe(s.address, s.Router())
}
