package auth

import (
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/joonhk/community-server/cmd/models"
	"github.com/joonhk/community-server/cmd/utils"
	"github.com/joonhk/community-server/db"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// DefaultProfileImageURL is served when a user signs up without an
// avatar.
const DefaultProfileImageURL = "/static/profile_images/default.jpg"

const passwordSpecials = "!@#$%^&*()_+-=[]{}|;:,.<>?"

type Service struct {
	users  *db.Table[*models.User]
	images utils.ImageRule
	log    *logrus.Entry
}

func NewService(users *db.Table[*models.User], uploadDir string, log *logrus.Logger) *Service {
	return &Service{
		users: users,
		images: utils.ImageRule{
			Dir:          filepath.Join(uploadDir, "profile_images"),
			URLPrefix:    "/static/profile_images",
			MaxSize:      5 << 20,
			Extensions:   []string{".jpg"},
			ContentTypes: []string{"image/jpeg"},
		},
		log: log.WithField("service", "auth"),
	}
}

// ValidatePassword enforces at least one uppercase letter, one
// lowercase letter, one digit and one special character.
func ValidatePassword(password string) error {
	var upper, lower, digit, special bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		case strings.ContainsRune(passwordSpecials, c):
			special = true
		}
	}
	switch {
	case !upper:
		return utils.Validation("password must contain at least one uppercase letter")
	case !lower:
		return utils.Validation("password must contain at least one lowercase letter")
	case !digit:
		return utils.Validation("password must contain at least one digit")
	case !special:
		return utils.Validation("password must contain at least one special character")
	}
	return nil
}

// HashPassword produces the stored one-way digest.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", utils.Storage("failed to hash password", err)
	}
	return string(digest), nil
}

// SaveProfileImage stores an uploaded avatar, or returns the default
// avatar URL when no file was attached. Only .jpg / image/jpeg uploads
// up to 5 MB are accepted.
func (s *Service) SaveProfileImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if file == nil || header == nil || header.Filename == "" {
		return DefaultProfileImageURL, nil
	}
	return s.images.Save(file, header)
}

// Signup registers a new account. Checks run in order: duplicate email,
// duplicate nickname, password strength, password confirmation. The
// profile image is written after validation; a storage failure on the
// user record afterwards does not remove an already-saved image.
func (s *Service) Signup(email, password, passwordConfirm, nickname string, file multipart.File, header *multipart.FileHeader) (models.PublicUser, error) {
	var none models.PublicUser

	if _, found, err := s.users.Find(func(u *models.User) bool { return u.Email == email }); err != nil {
		return none, err
	} else if found {
		return none, utils.Conflict("email is already in use")
	}

	if _, found, err := s.users.Find(func(u *models.User) bool { return u.Nickname == nickname }); err != nil {
		return none, err
	} else if found {
		return none, utils.Conflict("nickname is already in use")
	}

	if err := ValidatePassword(password); err != nil {
		return none, err
	}
	if password != passwordConfirm {
		return none, utils.Validation("passwords do not match")
	}

	profileImageURL, err := s.SaveProfileImage(file, header)
	if err != nil {
		return none, err
	}

	digest, err := HashPassword(password)
	if err != nil {
		return none, err
	}

	user, err := s.users.Create(&models.User{
		Email:           email,
		Password:        digest,
		Nickname:        nickname,
		ProfileImageURL: profileImageURL,
		CreatedAt:       time.Now().Format(models.TimeFormat),
	})
	if err != nil {
		return none, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "nickname": user.Nickname}).Info("user registered")
	return user.Public(), nil
}

// Signin verifies credentials. A missing account and a wrong password
// produce the same message on purpose.
func (s *Service) Signin(email, password string) (models.PublicUser, error) {
	var none models.PublicUser

	user, found, err := s.users.Find(func(u *models.User) bool { return u.Email == email })
	if err != nil {
		return none, err
	}
	if !found {
		return none, utils.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return none, utils.Unauthorized("invalid email or password")
	}

	s.log.WithField("user_id", user.ID).Info("user signed in")
	return user.Public(), nil
}
