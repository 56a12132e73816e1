package comment

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/joonhk/community-server/cmd/models"
	"github.com/joonhk/community-server/cmd/utils"
	"github.com/joonhk/community-server/db"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service  *Service
	comments *db.Table[*models.Comment]
	posts    *db.Table[*models.Post]
	users    *db.Table[*models.User]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	dir := t.TempDir()
	f := &fixture{
		comments: db.NewTable[*models.Comment](filepath.Join(dir, "comments.json"), log.WithField("table", "comments")),
		posts:    db.NewTable[*models.Post](filepath.Join(dir, "posts.json"), log.WithField("table", "posts")),
		users:    db.NewTable[*models.User](filepath.Join(dir, "users.json"), log.WithField("table", "users")),
	}
	f.service = NewService(f.comments, f.posts, f.users, log)
	return f
}

func (f *fixture) addUser(t *testing.T, nickname string) *models.User {
	t.Helper()
	user, err := f.users.Create(&models.User{
		Email:           nickname + "@x.com",
		Nickname:        nickname,
		ProfileImageURL: "/static/profile_images/" + nickname + ".jpg",
		CreatedAt:       time.Now().Format(models.TimeFormat),
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) addPost(t *testing.T, userID int) *models.Post {
	t.Helper()
	now := time.Now().Format(models.TimeFormat)
	post, err := f.posts.Create(&models.Post{
		Title:     "post",
		Content:   "content",
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return post
}

func errKind(t *testing.T, err error) utils.ErrorKind {
	t.Helper()
	var e *utils.Error
	require.True(t, errors.As(err, &e), "expected *utils.Error, got %v", err)
	return e.Kind
}

func TestCreateCommentRecountsPost(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice")
	post := f.addPost(t, user.ID)

	comment, err := f.service.CreateComment(post.ID, user.ID, "Nice!")
	require.NoError(t, err)
	assert.Equal(t, 1, comment.ID)
	assert.Equal(t, "alice", comment.AuthorNickname)
	assert.Equal(t, user.ProfileImageURL, comment.AuthorProfileImage)

	stored, _, err := f.posts.FindByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentsCount)

	_, err = f.service.CreateComment(post.ID, user.ID, "Again!")
	require.NoError(t, err)

	stored, _, err = f.posts.FindByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CommentsCount)
}

func TestCreateCommentValidation(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice")
	post := f.addPost(t, user.ID)

	_, err := f.service.CreateComment(99, user.ID, "hi")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, errKind(t, err))

	_, err = f.service.CreateComment(post.ID, 99, "hi")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, errKind(t, err))

	_, err = f.service.CreateComment(post.ID, user.ID, "   ")
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, errKind(t, err))
}

func TestGetCommentsNewestFirst(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "alice")
	post := f.addPost(t, user.ID)
	other := f.addPost(t, user.ID)

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Second).Format(models.TimeFormat)
		_, err := f.comments.Create(&models.Comment{
			PostID:    post.ID,
			UserID:    user.ID,
			Content:   "c",
			CreatedAt: ts,
			UpdatedAt: ts,
		})
		require.NoError(t, err)
	}
	_, err := f.comments.Create(&models.Comment{PostID: other.ID, UserID: user.ID, Content: "elsewhere"})
	require.NoError(t, err)

	comments, total, err := f.service.GetComments(post.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, comments, 3)
	assert.Equal(t, 3, comments[0].ID)
	assert.Equal(t, 1, comments[2].ID)

	_, _, err = f.service.GetComments(99)
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, errKind(t, err))
}

func TestUpdateComment(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	post := f.addPost(t, alice.ID)

	comment, err := f.service.CreateComment(post.ID, alice.ID, "original")
	require.NoError(t, err)

	_, err = f.service.UpdateComment(comment.ID, bob.ID, "sneaky")
	require.Error(t, err)
	assert.Equal(t, utils.KindAuthorization, errKind(t, err))

	_, err = f.service.UpdateComment(comment.ID, alice.ID, "  ")
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, errKind(t, err))

	updated, err := f.service.UpdateComment(comment.ID, alice.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, comment.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt >= comment.UpdatedAt)

	_, err = f.service.UpdateComment(99, alice.ID, "edited")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, errKind(t, err))
}

func TestDeleteCommentRecountsPost(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	post := f.addPost(t, alice.ID)

	comment, err := f.service.CreateComment(post.ID, alice.ID, "Nice!")
	require.NoError(t, err)

	err = f.service.DeleteComment(comment.ID, bob.ID)
	require.Error(t, err)
	assert.Equal(t, utils.KindAuthorization, errKind(t, err))

	require.NoError(t, f.service.DeleteComment(comment.ID, alice.ID))

	stored, _, err := f.posts.FindByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CommentsCount)

	err = f.service.DeleteComment(comment.ID, alice.ID)
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, errKind(t, err))
}
