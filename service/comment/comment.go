package comment

import (
	"sort"
	"strings"
	"time"

	"github.com/joonhk/community-server/cmd/models"
	"github.com/joonhk/community-server/cmd/utils"
	"github.com/joonhk/community-server/db"
	"github.com/sirupsen/logrus"
)

type Service struct {
	comments *db.Table[*models.Comment]
	posts    *db.Table[*models.Post]
	users    *db.Table[*models.User]
	log      *logrus.Entry
}

func NewService(comments *db.Table[*models.Comment], posts *db.Table[*models.Post], users *db.Table[*models.User], log *logrus.Logger) *Service {
	return &Service{
		comments: comments,
		posts:    posts,
		users:    users,
		log:      log.WithField("service", "comment"),
	}
}

// refreshCommentsCount recounts the post's comments from the comment
// table and stores the result. A full recount, not an increment, so the
// stored value always matches the live table when writers are serial.
// A vanished post is ignored.
func (s *Service) refreshCommentsCount(postID int) error {
	count, err := s.comments.Count(func(c *models.Comment) bool { return c.PostID == postID })
	if err != nil {
		return err
	}
	_, _, err = s.posts.Update(postID, func(p *models.Post) {
		p.CommentsCount = count
	})
	return err
}

// CreateComment writes a comment with a snapshot of the author's
// current nickname and profile image, then refreshes the post's
// comments_count.
func (s *Service) CreateComment(postID, userID int, content string) (*models.Comment, error) {
	if _, found, err := s.posts.FindByID(postID); err != nil {
		return nil, err
	} else if !found {
		return nil, utils.NotFound("post not found")
	}

	user, found, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, utils.NotFound("user not found")
	}

	if strings.TrimSpace(content) == "" {
		return nil, utils.Validation("comment content is required")
	}

	now := time.Now().Format(models.TimeFormat)
	created, err := s.comments.Create(&models.Comment{
		PostID:             postID,
		UserID:             userID,
		AuthorNickname:     user.Nickname,
		AuthorProfileImage: user.ProfileImageURL,
		Content:            content,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.refreshCommentsCount(postID); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"comment_id": created.ID, "post_id": postID}).Info("comment created")
	return created, nil
}

// GetComments returns the post's comments newest first.
func (s *Service) GetComments(postID int) ([]*models.Comment, int, error) {
	if _, found, err := s.posts.FindByID(postID); err != nil {
		return nil, 0, err
	} else if !found {
		return nil, 0, utils.NotFound("post not found")
	}

	comments, err := s.comments.Filter(func(c *models.Comment) bool { return c.PostID == postID })
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt > comments[j].CreatedAt
	})
	return comments, len(comments), nil
}

// UpdateComment replaces the content. Only the author may edit.
func (s *Service) UpdateComment(commentID, userID int, content string) (*models.Comment, error) {
	comment, found, err := s.comments.FindByID(commentID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, utils.NotFound("comment not found")
	}
	if comment.UserID != userID {
		return nil, utils.Forbidden("no permission to edit this comment")
	}

	if strings.TrimSpace(content) == "" {
		return nil, utils.Validation("comment content is required")
	}

	updated, _, err := s.comments.Update(commentID, func(c *models.Comment) {
		c.Content = content
		c.UpdatedAt = time.Now().Format(models.TimeFormat)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteComment removes the comment and refreshes the owning post's
// comments_count. Only the author may delete.
func (s *Service) DeleteComment(commentID, userID int) error {
	comment, found, err := s.comments.FindByID(commentID)
	if err != nil {
		return err
	}
	if !found {
		return utils.NotFound("comment not found")
	}
	if comment.UserID != userID {
		return utils.Forbidden("no permission to delete this comment")
	}

	deleted, err := s.comments.Delete(commentID)
	if err != nil {
		return err
	}
	if !deleted {
		return utils.Storage("failed to delete comment", nil)
	}

	return s.refreshCommentsCount(comment.PostID)
}
