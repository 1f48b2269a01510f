package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elysian/registration-service/internal/application"
	"github.com/elysian/registration-service/internal/domain/entity"
	repo "github.com/elysian/registration-service/internal/domain/repository"
	esinfra "github.com/elysian/registration-service/internal/infrastructure/elasticsearch"
	"github.com/elysian/registration-service/internal/infrastructure/memory"
	"github.com/elysian/registration-service/internal/interface/middleware"
	"github.com/elysian/registration-service/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Status    int             `json:"status"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Error     json.RawMessage `json:"error"`
}

type authData struct {
	Token          string    `json:"token"`
	ExpiresAt      time.Time `json:"expires_at"`
	WelcomeMessage string    `json:"welcome_message"`
	User           struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

type downWelcome struct{}

func (downWelcome) Generate(context.Context, string) (string, error) {
	return "", errors.New("dial tcp: connection refused")
}

type unavailableRepo struct{}

func (unavailableRepo) Insert(context.Context, *entity.User) error { return errors.New("pool closed") }
func (unavailableRepo) GetByID(context.Context, string) (*entity.User, error) {
	return nil, errors.New("pool closed")
}
func (unavailableRepo) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, errors.New("pool closed")
}

type fakeSearch struct {
	docs []esinfra.UserDoc
	err  error
}

func (f fakeSearch) Search(context.Context, string, int) ([]esinfra.UserDoc, error) {
	return f.docs, f.err
}

type testServer struct {
	engine *gin.Engine
	svc    *application.AuthService
}

func newServer(t *testing.T, r repo.UserRepository, search UserSearcher) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwtm, err := helpers.NewJWTManager("handler-test-secret", time.Hour, "registration-service")
	require.NoError(t, err)
	store := application.NewCredentialStore(r, helpers.NewPasswordHasher(1, 8*1024, 1), time.Second)
	svc := application.NewAuthService(store, jwtm, logger)
	svc.Welcome = downWelcome{}

	ah := NewAuthHandler(svc, logger, "localhost", false)
	uh := NewUserHandler(svc, search, logger)

	e := gin.New()
	e.Use(middleware.RequestIDMiddleware())
	api := e.Group("/api")
	api.POST("/register", ah.Register)
	api.POST("/login", ah.Login)
	api.POST("/logout", ah.Logout)
	protected := api.Group("/")
	protected.Use(middleware.Auth(svc))
	protected.GET("/me", uh.Me)
	protected.GET("/profile", uh.GetProfile)
	protected.GET("/users/search", uh.SearchUsers)
	return &testServer{engine: e, svc: svc}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decodeAuth(t *testing.T, env envelope) authData {
	t.Helper()
	var d authData
	require.NoError(t, json.Unmarshal(env.Data, &d))
	return d
}

func TestRegisterLoginFlow(t *testing.T) {
	s := newServer(t, memory.NewUserRepository(), nil)
	creds := map[string]string{"email": "a@x.com", "name": "A", "password": "password123"}

	w, env := s.do(t, http.MethodPost, "/api/register", creds, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.RequestID)
	reg := decodeAuth(t, env)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "a@x.com", reg.User.Email)
	assert.Equal(t, application.DefaultWelcomeMessage, reg.WelcomeMessage)
	assert.Contains(t, w.Header().Get("Set-Cookie"), helpers.AccessTokenCookie+"=")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "HttpOnly")

	time.Sleep(1100 * time.Millisecond) // next token gets a later iat

	w, env = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@x.com", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	login := decodeAuth(t, env)
	assert.NotEqual(t, reg.Token, login.Token)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.True(t, login.ExpiresAt.After(reg.ExpiresAt))

	w, env = s.do(t, http.MethodGet, "/api/me", nil, login.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var me application.Identity
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, reg.User.ID, me.UserID)

	w, env = s.do(t, http.MethodGet, "/api/profile", nil, reg.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var profile map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "A", profile["name"])
	assert.NotContains(t, profile, "password_hash")
}

func TestRegister_DuplicateThenConflict(t *testing.T) {
	s := newServer(t, memory.NewUserRepository(), nil)
	creds := map[string]string{"email": "a@x.com", "name": "A", "password": "password123"}

	w, _ := s.do(t, http.MethodPost, "/api/register", creds, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/register", creds, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "email already registered", env.Message)
}

func TestRegister_Validation(t *testing.T) {
	s := newServer(t, memory.NewUserRepository(), nil)

	w, env := s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "not-an-email", "password": "password123"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &fields))
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "name")

	w, env = s.do(t, http.MethodPost, "/api/register", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid payload", env.Message)
}

func TestLogin_Unauthorized(t *testing.T) {
	s := newServer(t, memory.NewUserRepository(), nil)
	w, _ := s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@x.com", "name": "A", "password": "password123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	wrong, envWrong := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@x.com", "password": "nope-nope"}, "")
	ghost, envGhost := s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "ghost@x.com", "password": "password123"}, "")

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, ghost.Code)
	assert.Equal(t, envWrong.Message, envGhost.Message)
	assert.Equal(t, "invalid email or password", envWrong.Message)
	assert.Empty(t, wrong.Header().Get("Set-Cookie"))
}

func TestStoreUnavailable(t *testing.T) {
	s := newServer(t, unavailableRepo{}, nil)

	w, env := s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@x.com", "name": "A", "password": "password123"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.NotContains(t, string(env.Error)+env.Message, "pool closed")

	w, _ = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@x.com", "password": "password123"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProtected_RequiresToken(t *testing.T) {
	s := newServer(t, memory.NewUserRepository(), nil)
	for _, path := range []string{"/api/me", "/api/profile", "/api/users/search?q=a"} {
		w, env := s.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "unauthorized", env.Message)

		w, _ = s.do(t, http.MethodGet, path, nil, "a.b.c")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestProfile_RecordGone(t *testing.T) {
	s := newServer(t, memory.NewUserRepository(), nil)
	token, _, err := s.svc.JWT.Issue("00000000-0000-0000-0000-000000000000", "gone@x.com")
	require.NoError(t, err)

	w, _ := s.do(t, http.MethodGet, "/api/me", nil, token)
	assert.Equal(t, http.StatusOK, w.Code, "authorization never consults the store")

	w, env := s.do(t, http.MethodGet, "/api/profile", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", env.Message)
}

func TestSearchUsers(t *testing.T) {
	docs := []esinfra.UserDoc{{ID: "u-1", Email: "a@x.com", Name: "A"}}
	s := newServer(t, memory.NewUserRepository(), fakeSearch{docs: docs})
	token, _, err := s.svc.JWT.Issue("u-1", "a@x.com")
	require.NoError(t, err)

	w, env := s.do(t, http.MethodGet, "/api/users/search?q=a", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Users []esinfra.UserDoc `json:"users"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, docs, data.Users)

	w, _ = s.do(t, http.MethodGet, "/api/users/search", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchUsers_Unconfigured(t *testing.T) {
	s := newServer(t, memory.NewUserRepository(), nil)
	token, _, err := s.svc.JWT.Issue("u-1", "a@x.com")
	require.NoError(t, err)

	w, env := s.do(t, http.MethodGet, "/api/users/search?q=a", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"users":[]}`, string(env.Data))
}

func TestSearchUsers_BackendDown(t *testing.T) {
	s := newServer(t, memory.NewUserRepository(), fakeSearch{err: errors.New("es down")})
	token, _, err := s.svc.JWT.Issue("u-1", "a@x.com")
	require.NoError(t, err)

	w, _ := s.do(t, http.MethodGet, "/api/users/search?q=a", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogout(t *testing.T) {
	s := newServer(t, memory.NewUserRepository(), nil)
	w, env := s.do(t, http.MethodPost, "/api/logout", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
