package router

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magiclink/server/internal/mocks"
	"github.com/magiclink/server/internal/model"
	"github.com/magiclink/server/internal/repository/jsonfile"
	"github.com/magiclink/server/internal/service"
	"github.com/magiclink/server/internal/storage/disk"
	"github.com/magiclink/server/internal/testutil"
	"github.com/magiclink/server/internal/token"
)

const testCookieName = "magiclink_session"

type testApp struct {
	handler   http.Handler
	mailer    *mocks.Mailer
	sentToken *string
	pagesDir  string
}

// newTestApp assembles the full HTTP stack with a real store, token manager
// and disk storage; only the mailer is mocked, capturing the last sent token.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	pagesDir := t.TempDir()
	pages := map[string]string{
		"index.html":       "<h1>Log in</h1>",
		"home.html":        "<h1>Welcome {{username}}</h1><img src=\"/avatars/{{avatarFileName}}\">",
		"check_email.html": "<h1>Check your email</h1>",
		"error.html":       "<h1>Error</h1><p>{{error}}</p>",
	}
	for name, content := range pages {
		require.NoError(t, os.WriteFile(filepath.Join(pagesDir, name), []byte(content), 0o644))
	}

	log := testutil.MakeNoopLogger()
	seed := model.User{ID: "1", Email: "admin@example.com", Username: "Admin", AvatarFileName: "image_1.png"}
	store := jsonfile.New(filepath.Join(t.TempDir(), "users.json"), seed, log)
	manager := token.NewJWT("router-test-secret", 0)

	var sentToken string
	mailer := mocks.NewMailer(t)
	mailer.On("SendMagicLink", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sentToken = args.String(2) }).
		Return(nil).
		Maybe()

	storage, err := disk.NewClient(t.TempDir())
	require.NoError(t, err)

	authService := service.NewAuth(store, manager, mailer, storage, log)

	e := New(authService, storage, pagesDir, testCookieName, log).Register()

	return &testApp{handler: e, mailer: mailer, sentToken: &sentToken, pagesDir: pagesDir}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) register(t *testing.T, email, username string) string {
	t.Helper()

	form := url.Values{"email": {email}, "username": {username}}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set(echoContentType, echoFormContentType)

	rec := a.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/check_email.html", rec.Header().Get("Location"))
	require.NotEmpty(t, *a.sentToken)

	return *a.sentToken
}

const (
	echoContentType     = "Content-Type"
	echoFormContentType = "application/x-www-form-urlencoded"
)

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	return nil
}

func TestHome_NoSession_ShowsLoginPage(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Log in")
}

func TestLoginFlow(t *testing.T) {
	app := newTestApp(t)
	magicToken := app.register(t, "alice@example.com", "Alice")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/login?token="+url.QueryEscape(magicToken), nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, magicToken, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = app.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome Alice")
}

func TestLogin_TokenReuseRejected(t *testing.T) {
	app := newTestApp(t)
	magicToken := app.register(t, "alice@example.com", "Alice")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/login?token="+url.QueryEscape(magicToken), nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/login?token="+url.QueryEscape(magicToken), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is already in use")
}

func TestLogin_GarbageToken(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/login?token=garbage", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is invalid")
}

func TestLogin_MissingToken(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is required")
}

func TestRegister_Duplicate(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice@example.com", "Alice")

	form := url.Values{"email": {"alice@example.com"}, "username": {"Other Alice"}}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set(echoContentType, echoFormContentType)

	rec := app.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User is already registered")
}

func TestRegister_MissingFields(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{"username": {"Alice"}}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set(echoContentType, echoFormContentType)

	rec := app.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email is required")
}

func TestRegister_WithAvatar(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("email", "alice@example.com"))
	require.NoError(t, writer.WriteField("username", "Alice"))
	part, err := writer.CreateFormFile("avatar", "selfie.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", &body)
	req.Header.Set(echoContentType, writer.FormDataContentType())

	rec := app.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	usersRec := app.do(httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, usersRec.Code)
	assert.Contains(t, usersRec.Body.String(), "image_")

	// The stored avatar must be downloadable through the avatars route.
	var avatarName string
	for _, field := range strings.Split(usersRec.Body.String(), "\"") {
		if strings.HasPrefix(field, "image_") && strings.HasSuffix(field, ".png") && field != "image_1.png" {
			avatarName = field
		}
	}
	require.NotEmpty(t, avatarName)

	avatarRec := app.do(httptest.NewRequest(http.MethodGet, "/avatars/"+avatarName, nil))
	assert.Equal(t, http.StatusOK, avatarRec.Code)
	assert.Equal(t, "png-bytes", avatarRec.Body.String())
}

func TestRequestLogin(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice@example.com", "Alice")

	form := url.Values{"email": {"alice@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echoContentType, echoFormContentType)

	rec := app.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/check_email.html", rec.Header().Get("Location"))
	assert.NotEmpty(t, *app.sentToken)
}

func TestRequestLogin_UnknownEmail(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{"email": {"nobody@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echoContentType, echoFormContentType)

	rec := app.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User is not registered")
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	magicToken := app.register(t, "alice@example.com", "Alice")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/login?token="+url.QueryEscape(magicToken), nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec = app.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logged out")

	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The revoked session no longer opens the home page.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = app.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogout_WithoutSession(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logged out")
}

func TestHome_InvalidCookieRedirectsToLogout(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "garbage"})

	rec := app.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/logout", rec.Header().Get("Location"))

	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestUploadAndDownload(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image_file", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpg-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/image", &body)
	req.Header.Set(echoContentType, writer.FormDataContentType())

	rec := app.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/download?fileName=images/photo.jpg", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	content, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpg-bytes", string(content))
	assert.Contains(t, rec.Header().Get(echoContentType), "image/jpeg")
}

func TestUpload_MissingFile(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/image", &body)
	req.Header.Set(echoContentType, writer.FormDataContentType())

	rec := app.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownload_Missing(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/download?fileName=images/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownload_MissingParam(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/download", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvatar_Missing(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/avatars/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers_ListsSeedUser(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")
}

func TestStaticPage(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/check_email.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Check your email")

	rec = app.do(httptest.NewRequest(http.MethodGet, "/nope.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
