package auth

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joonhk/community-server/cmd/models"
	"github.com/joonhk/community-server/cmd/utils"
	"github.com/joonhk/community-server/db"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *db.Table[*models.User]) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	users := db.NewTable[*models.User](filepath.Join(t.TempDir(), "users.json"), log.WithField("table", "users"))
	return NewService(users, t.TempDir(), log), users
}

// testUpload builds a parseable multipart file and header for service
// calls that normally receive them from r.FormFile.
func testUpload(t *testing.T, filename, contentType string, data []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part := make(textproto.MIMEHeader)
	part.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	part.Set("Content-Type", contentType)
	pw, err := w.CreatePart(part)
	require.NoError(t, err)
	_, err = pw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	header := form.File["file"][0]
	file, err := header.Open()
	require.NoError(t, err)
	return file, header
}

func errKind(t *testing.T, err error) utils.ErrorKind {
	t.Helper()
	var e *utils.Error
	require.True(t, errors.As(err, &e), "expected *utils.Error, got %v", err)
	return e.Kind
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Passw0rd!", true},
		{"password", false},   // no uppercase, digit or special
		{"PASSWORD1!", false}, // no lowercase
		{"Password!", false},  // no digit
		{"Passw0rd", false},   // no special
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if tc.valid {
			assert.NoError(t, err, tc.password)
		} else {
			require.Error(t, err, tc.password)
			assert.Equal(t, utils.KindValidation, errKind(t, err), tc.password)
		}
	}
}

func TestSignup(t *testing.T) {
	service, users := newTestService(t)

	public, err := service.Signup("a@x.com", "Abcdef1!", "Abcdef1!", "alice", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, public.ID)
	assert.Equal(t, "a@x.com", public.Email)
	assert.Equal(t, "alice", public.Nickname)
	assert.Equal(t, DefaultProfileImageURL, public.ProfileImageURL)

	// The stored digest is one-way, never the plaintext.
	stored, ok, err := users.FindByID(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, "Abcdef1!", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Abcdef1!")))
}

func TestSignupChecksRunInOrder(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Signup("a@x.com", "Abcdef1!", "Abcdef1!", "alice", nil, nil)
	require.NoError(t, err)

	// Duplicate email wins even when the nickname is also taken.
	_, err = service.Signup("a@x.com", "bad", "bad", "alice", nil, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, errKind(t, err))
	assert.Contains(t, err.Error(), "email")

	_, err = service.Signup("b@x.com", "bad", "bad", "alice", nil, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, errKind(t, err))
	assert.Contains(t, err.Error(), "nickname")

	_, err = service.Signup("b@x.com", "weak", "weak", "bob", nil, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, errKind(t, err))

	_, err = service.Signup("b@x.com", "Abcdef1!", "Abcdef2!", "bob", nil, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, errKind(t, err))
	assert.Contains(t, err.Error(), "match")
}

func TestSignin(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Signup("a@x.com", "Abcdef1!", "Abcdef1!", "alice", nil, nil)
	require.NoError(t, err)

	public, err := service.Signin("a@x.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, 1, public.ID)
	assert.Equal(t, "alice", public.Nickname)
}

func TestSigninFailuresAreIndistinguishable(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Signup("a@x.com", "Abcdef1!", "Abcdef1!", "alice", nil, nil)
	require.NoError(t, err)

	_, unknownErr := service.Signin("nobody@x.com", "Abcdef1!")
	require.Error(t, unknownErr)
	assert.Equal(t, utils.KindAuth, errKind(t, unknownErr))

	_, wrongErr := service.Signin("a@x.com", "Wrong pw1!")
	require.Error(t, wrongErr)
	assert.Equal(t, utils.KindAuth, errKind(t, wrongErr))

	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestSaveProfileImageDefault(t *testing.T) {
	service, _ := newTestService(t)

	url, err := service.SaveProfileImage(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultProfileImageURL, url)
}

func TestSaveProfileImageValidation(t *testing.T) {
	service, _ := newTestService(t)

	file, header := testUpload(t, "avatar.png", "image/png", []byte("png-bytes"))
	defer file.Close()
	_, err := service.SaveProfileImage(file, header)
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, errKind(t, err))

	file, header = testUpload(t, "avatar.jpg", "image/png", []byte("bytes"))
	defer file.Close()
	_, err = service.SaveProfileImage(file, header)
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, errKind(t, err))

	file, header = testUpload(t, "avatar.jpg", "image/jpeg", bytes.Repeat([]byte("a"), (5<<20)+1))
	defer file.Close()
	_, err = service.SaveProfileImage(file, header)
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, errKind(t, err))
	assert.Contains(t, err.Error(), "size")
}

func TestSaveProfileImageStoresFile(t *testing.T) {
	service, _ := newTestService(t)

	file, header := testUpload(t, "avatar.jpg", "image/jpeg", []byte("jpeg-bytes"))
	defer file.Close()

	url, err := service.SaveProfileImage(file, header)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/static/profile_images/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	stored := filepath.Join(service.images.Dir, filepath.Base(url))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}
