package utils

import (
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalFormFileUrlencodedBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/signup", strings.NewReader("email=a%40x.com&nickname=alice"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	require.NoError(t, ParseForm(r, 1<<20))

	file, header, err := OptionalFormFile(r, "profile_image")
	require.NoError(t, err)
	assert.Nil(t, file)
	assert.Nil(t, header)
	assert.Equal(t, "a@x.com", r.FormValue("email"))
}

func TestOptionalFormFileMissingFromMultipart(t *testing.T) {
	var body strings.Builder
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("title", "hello"))
	require.NoError(t, writer.Close())

	r := httptest.NewRequest("POST", "/posts", strings.NewReader(body.String()))
	r.Header.Set("Content-Type", writer.FormDataContentType())

	require.NoError(t, ParseForm(r, 1<<20))

	file, header, err := OptionalFormFile(r, "image")
	require.NoError(t, err)
	assert.Nil(t, file)
	assert.Nil(t, header)
}

func TestParseFormDeleteBody(t *testing.T) {
	r := httptest.NewRequest("DELETE", "/posts/1", strings.NewReader("user_id=4"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	require.NoError(t, ParseForm(r, 1<<20))
	assert.Equal(t, "4", r.FormValue("user_id"))
}

func TestOptionalFormValue(t *testing.T) {
	r := httptest.NewRequest("POST", "/posts/1", strings.NewReader("title=&content=updated"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	require.NoError(t, ParseForm(r, 1<<20))

	title := OptionalFormValue(r, "title")
	require.NotNil(t, title)
	assert.Equal(t, "", *title)

	content := OptionalFormValue(r, "content")
	require.NotNil(t, content)
	assert.Equal(t, "updated", *content)

	assert.Nil(t, OptionalFormValue(r, "image_url"))
}
