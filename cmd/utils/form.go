package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// ParseForm parses either a multipart or a urlencoded request body.
// maxMemory only applies to multipart bodies.
func ParseForm(r *http.Request, maxMemory int64) error {
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return Validation("invalid form data")
	}
	// net/http only reads form bodies for POST, PUT and PATCH, but the
	// delete endpoints take user_id in a urlencoded body too.
	if r.Method == http.MethodDelete && r.Body != nil && r.MultipartForm == nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return Validation("invalid form data")
		}
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return Validation("invalid form data")
		}
		for key, fieldValues := range values {
			r.Form[key] = append(r.Form[key], fieldValues...)
		}
	}
	return nil
}

// OptionalFormValue returns the submitted value for key, or nil when the
// field was not part of the request at all. An explicitly empty field
// returns a pointer to "" so validation can still reject it.
func OptionalFormValue(r *http.Request, key string) *string {
	if values, ok := r.Form[key]; ok && len(values) > 0 {
		return &values[0]
	}
	return nil
}

// OptionalFormFile returns the uploaded file for key, or nils when no
// file was attached. A urlencoded body can never carry a file, so a
// non-multipart request also counts as "no file".
func OptionalFormFile(r *http.Request, key string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, Validation("invalid file upload")
	}
	return file, header, nil
}
