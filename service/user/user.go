package user

import (
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"github.com/joonhk/community-server/cmd/models"
	"github.com/joonhk/community-server/cmd/utils"
	"github.com/joonhk/community-server/db"
	"github.com/joonhk/community-server/service/auth"
	"github.com/sirupsen/logrus"
)

// MaxNicknameLen caps nicknames, counted in runes.
const MaxNicknameLen = 10

type Service struct {
	users *db.Table[*models.User]
	auth  *auth.Service
	log   *logrus.Entry
}

// NewService reuses the auth service for password rules and the profile
// image path so profile edits behave exactly like signup.
func NewService(users *db.Table[*models.User], authService *auth.Service, log *logrus.Logger) *Service {
	return &Service{
		users: users,
		auth:  authService,
		log:   log.WithField("service", "user"),
	}
}

// UpdateUser merges the supplied profile fields. Nickname uniqueness is
// checked against other users only, so re-submitting one's own nickname
// is fine.
func (s *Service) UpdateUser(userID int, nickname, password *string, file multipart.File, header *multipart.FileHeader) (models.PublicUser, error) {
	var none models.PublicUser

	current, found, err := s.users.FindByID(userID)
	if err != nil {
		return none, err
	}
	if !found {
		return none, utils.NotFound("user not found")
	}

	if nickname != nil {
		if strings.TrimSpace(*nickname) == "" {
			return none, utils.Validation("nickname is required")
		}
		if utf8.RuneCountInString(*nickname) > MaxNicknameLen {
			return none, utils.Validation("nickname must be 10 characters or fewer")
		}
		existing, taken, err := s.users.Find(func(u *models.User) bool { return u.Nickname == *nickname })
		if err != nil {
			return none, err
		}
		if taken && existing.ID != userID {
			return none, utils.Conflict("nickname is already in use")
		}
	}

	var digest string
	if password != nil {
		if err := auth.ValidatePassword(*password); err != nil {
			return none, err
		}
		digest, err = auth.HashPassword(*password)
		if err != nil {
			return none, err
		}
	}

	var imageURL string
	if file != nil && header != nil {
		imageURL, err = s.auth.SaveProfileImage(file, header)
		if err != nil {
			return none, err
		}
	}

	if nickname == nil && password == nil && imageURL == "" {
		return current.Public(), nil
	}

	updated, _, err := s.users.Update(userID, func(u *models.User) {
		if nickname != nil {
			u.Nickname = *nickname
		}
		if digest != "" {
			u.Password = digest
		}
		if imageURL != "" {
			u.ProfileImageURL = imageURL
		}
	})
	if err != nil {
		return none, err
	}

	s.log.WithField("user_id", userID).Info("user profile updated")
	return updated.Public(), nil
}

// GetUser returns the public projection plus the creation timestamp.
func (s *Service) GetUser(userID int) (models.PublicUser, error) {
	var none models.PublicUser

	user, found, err := s.users.FindByID(userID)
	if err != nil {
		return none, err
	}
	if !found {
		return none, utils.NotFound("user not found")
	}

	public := user.Public()
	public.CreatedAt = user.CreatedAt
	return public, nil
}
