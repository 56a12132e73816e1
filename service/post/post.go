package post

import (
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joonhk/community-server/cmd/models"
	"github.com/joonhk/community-server/cmd/utils"
	"github.com/joonhk/community-server/db"
	"github.com/sirupsen/logrus"
)

const (
	// MaxTitleLen caps post titles, counted in runes.
	MaxTitleLen = 26

	// DefaultPageSize is used when the caller does not pass a limit.
	DefaultPageSize = 20
)

type Service struct {
	posts    *db.Table[*models.Post]
	users    *db.Table[*models.User]
	comments *db.Table[*models.Comment]
	images   utils.ImageRule
	log      *logrus.Entry
}

func NewService(posts *db.Table[*models.Post], users *db.Table[*models.User], comments *db.Table[*models.Comment], uploadDir string, log *logrus.Logger) *Service {
	return &Service{
		posts:    posts,
		users:    users,
		comments: comments,
		images: utils.ImageRule{
			Dir:          filepath.Join(uploadDir, "post_images"),
			URLPrefix:    "/static/post_images",
			MaxSize:      10 << 20,
			Extensions:   []string{".jpg", ".jpeg", ".png"},
			ContentTypes: []string{"image/jpeg", "image/png"},
		},
		log: log.WithField("service", "post"),
	}
}

// SavePostImage stores an uploaded post image. Unlike profile images
// there is no default: without a file the post simply has no image_url.
func (s *Service) SavePostImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if file == nil || header == nil || header.Filename == "" {
		return "", nil
	}
	return s.images.Save(file, header)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return utils.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return utils.Validation("title must be 26 characters or fewer")
	}
	return nil
}

// CreatePost validates the input, stores the optional image and writes
// the new record with a snapshot of the author's current nickname and
// profile image. The image hits disk before the record write; a failed
// record write leaves the image file behind.
func (s *Service) CreatePost(title, content string, userID int, file multipart.File, header *multipart.FileHeader) (*models.Post, error) {
	user, found, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, utils.NotFound("user not found")
	}

	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, utils.Validation("content is required")
	}

	imageURL, err := s.SavePostImage(file, header)
	if err != nil {
		return nil, err
	}

	now := time.Now().Format(models.TimeFormat)
	created, err := s.posts.Create(&models.Post{
		Title:              title,
		Content:            content,
		ImageURL:           imageURL,
		UserID:             userID,
		AuthorNickname:     user.Nickname,
		AuthorProfileImage: user.ProfileImageURL,
		CreatedAt:          now,
		UpdatedAt:          now,
		Likes:              0,
		CommentsCount:      0,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"post_id": created.ID, "user_id": userID}).Info("post created")
	return created, nil
}

// UpdatePost merges the supplied fields into the post. Omitted fields
// are left untouched; updated_at always refreshes. Only the author may
// edit.
func (s *Service) UpdatePost(postID, userID int, title, content *string, file multipart.File, header *multipart.FileHeader) (*models.Post, error) {
	existing, found, err := s.posts.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, utils.NotFound("post not found")
	}
	if existing.UserID != userID {
		return nil, utils.Forbidden("no permission to edit this post")
	}

	if title != nil {
		if err := validateTitle(*title); err != nil {
			return nil, err
		}
	}
	if content != nil && strings.TrimSpace(*content) == "" {
		return nil, utils.Validation("content is required")
	}

	imageURL, err := s.SavePostImage(file, header)
	if err != nil {
		return nil, err
	}

	updated, _, err := s.posts.Update(postID, func(p *models.Post) {
		p.UpdatedAt = time.Now().Format(models.TimeFormat)
		if title != nil {
			p.Title = *title
		}
		if content != nil {
			p.Content = *content
		}
		if imageURL != "" {
			p.ImageURL = imageURL
		}
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetPosts returns one page of posts, newest first, plus the total
// table size before slicing.
func (s *Service) GetPosts(skip, limit int) ([]*models.Post, int, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}

	posts, err := s.posts.ReadAll()
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt > posts[j].CreatedAt
	})

	total := len(posts)
	if skip >= total {
		return []*models.Post{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return posts[skip:end], total, nil
}

func (s *Service) GetPost(postID int) (*models.Post, error) {
	post, found, err := s.posts.FindByID(postID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, utils.NotFound("post not found")
	}
	return post, nil
}

// ToggleLike adds or removes userID from the like set. The returned
// count is the like set's length as read before the mutation, plus or
// minus one; it is not re-read afterwards.
func (s *Service) ToggleLike(postID, userID int) (bool, int, error) {
	post, found, err := s.posts.FindByID(postID)
	if err != nil {
		return false, 0, err
	}
	if !found {
		return false, 0, utils.NotFound("post not found")
	}

	if _, found, err := s.users.FindByID(userID); err != nil {
		return false, 0, err
	} else if !found {
		return false, 0, utils.NotFound("user not found")
	}

	staleCount := len(post.LikeUsers)

	if post.LikedBy(userID) {
		_, _, err := s.posts.Update(postID, func(p *models.Post) {
			kept := p.LikeUsers[:0:0]
			for _, id := range p.LikeUsers {
				if id != userID {
					kept = append(kept, id)
				}
			}
			p.LikeUsers = kept
			p.Likes = len(kept)
		})
		if err != nil {
			return false, 0, err
		}
		return false, staleCount - 1, nil
	}

	_, _, err = s.posts.Update(postID, func(p *models.Post) {
		p.LikeUsers = append(p.LikeUsers, userID)
		p.Likes = len(p.LikeUsers)
	})
	if err != nil {
		return false, 0, err
	}
	return true, staleCount + 1, nil
}

// IncrementView bumps the view counter by one on every call; there is
// no per-viewer deduplication.
func (s *Service) IncrementView(postID int) error {
	_, found, err := s.posts.Update(postID, func(p *models.Post) {
		p.ViewCount++
	})
	if err != nil {
		return err
	}
	if !found {
		return utils.NotFound("post not found")
	}
	return nil
}

// DeletePost removes the post record only. Comments referencing it are
// left in place; the orphan count is logged, not cleaned up.
func (s *Service) DeletePost(postID, userID int) error {
	post, found, err := s.posts.FindByID(postID)
	if err != nil {
		return err
	}
	if !found {
		return utils.NotFound("post not found")
	}
	if post.UserID != userID {
		return utils.Forbidden("no permission to delete this post")
	}

	if _, err := s.posts.Delete(postID); err != nil {
		return err
	}

	orphans, err := s.comments.Count(func(c *models.Comment) bool { return c.PostID == postID })
	if err == nil && orphans > 0 {
		s.log.WithFields(logrus.Fields{"post_id": postID, "comments": orphans}).Warn("deleted post leaves orphaned comments")
	}
	return nil
}
