package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

func TestAddUserDetailsWithoutIdentity(t *testing.T) {
	uc := NewUserController(nil, nil)
	c, rec := newPostContext(t, http.MethodPost, "/user", `{"bio":"hi"}`)

	require.NoError(t, uc.AddUserDetails(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetAuthenticatedUserWithoutIdentity(t *testing.T) {
	uc := NewUserController(nil, nil)
	c, rec := newPostContext(t, http.MethodGet, "/user", "")

	require.NoError(t, uc.GetAuthenticatedUser(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUploadImageWithoutFile(t *testing.T) {
	uc := NewUserController(nil, nil)
	c, rec := newPostContext(t, http.MethodPost, "/user/image", "")
	withIdentity(c)

	require.NoError(t, uc.UploadImage(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Image is required", decodeBody(t, rec)["error"])
}

func TestUploadImageWrongFileType(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "document.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/user/image", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withIdentity(c)

	uc := NewUserController(nil, nil)
	require.NoError(t, uc.UploadImage(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Wrong file type submitted", decodeBody(t, rec)["error"])
}

func TestUpdateFCMTokenRequiresToken(t *testing.T) {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/user/fcm-token", bytes.NewReader([]byte(`{}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withIdentity(c)

	uc := NewUserController(nil, nil)
	require.NoError(t, uc.UpdateFCMToken(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkNotificationsReadWithoutIdentity(t *testing.T) {
	nc := NewNotificationController(nil)
	c, rec := newPostContext(t, http.MethodPost, "/notifications", `["abc"]`)

	require.NoError(t, nc.MarkNotificationsRead(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
