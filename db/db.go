package db

import (
	"os"
	"path/filepath"

	"github.com/joonhk/community-server/cmd/models"
	"github.com/joonhk/community-server/cmd/utils"
	"github.com/sirupsen/logrus"
)

// Store bundles the three entity tables. It is constructed once at
// bootstrap and injected into the services; each table file is owned
// exclusively by its Table.
type Store struct {
	Users    *Table[*models.User]
	Posts    *Table[*models.Post]
	Comments *Table[*models.Comment]
}

// NewJSONStore roots the tables at dataDir, creating it if needed.
func NewJSONStore(dataDir string, log *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, utils.Storage("failed to create data directory", err)
	}

	return &Store{
		Users:    NewTable[*models.User](filepath.Join(dataDir, "users.json"), log.WithField("table", "users")),
		Posts:    NewTable[*models.Post](filepath.Join(dataDir, "posts.json"), log.WithField("table", "posts")),
		Comments: NewTable[*models.Comment](filepath.Join(dataDir, "comments.json"), log.WithField("table", "comments")),
	}, nil
}
