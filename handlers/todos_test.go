package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biosecret/todo-list/database"
	"github.com/biosecret/todo-list/events"
	"github.com/biosecret/todo-list/handlers"
	"github.com/biosecret/todo-list/models"
	"github.com/biosecret/todo-list/router"
	"github.com/biosecret/todo-list/store"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var secret = []byte("handler-test-secret")

type testServer struct {
	app *fiber.App
	hub *events.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithSecret(t, secret)
}

func newTestServerWithSecret(t *testing.T, key []byte) *testServer {
	t.Helper()
	mem := database.NewMemoryStore()
	hub := events.NewHub()
	todos := store.New(mem, mem, store.WithNotifier(hub))

	app := fiber.New()
	router.SetupRoutes(app, handlers.New(todos, mem, hub, key))
	return &testServer{app: app, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// login đăng ký rồi đăng nhập, trả về (userID, access token)
func (s *testServer) login(t *testing.T, username string) (string, string) {
	t.Helper()
	creds := map[string]string{"username": username, "password": "hunter2"}

	resp, _ := s.do(t, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := s.do(t, http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.Unmarshal(raw, &out))
	return out["user_id"], out["access_token"]
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "gm")

	resp, _ := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{"username": "gm", "password": "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/auth/register", "", map[string]string{"username": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "gm", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "nobody", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/todos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEventStreamRequiresToken(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/sse", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/sse?userId=someone", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/sse", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, 0, s.hub.Len())
}

func TestTokensAreCheckedWithIssuingSecret(t *testing.T) {
	issuer := newTestServer(t)
	_, token := issuer.login(t, "warden")

	resp, _ := issuer.do(t, http.MethodGet, "/api/todos/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	other := newTestServerWithSecret(t, []byte("some-other-secret"))
	resp, _ = other.do(t, http.MethodGet, "/api/todos/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTodoLifecycle(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.login(t, "player")
	session := s.hub.Subscribe(userID)
	defer s.hub.Unsubscribe(session)

	// Body rỗng tạo todo trống
	resp, raw := s.do(t, http.MethodPost, "/api/todos", token, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	blank := decode[models.ToDo](t, raw)
	assert.Equal(t, "", blank.Label)
	assert.False(t, blank.IsDone)
	assert.Equal(t, userID, blank.UserID)

	resp, raw = s.do(t, http.MethodPost, "/api/todos", token, models.Draft{Label: "Find the lost sword"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sword := decode[models.ToDo](t, raw)
	assert.NotEqual(t, blank.ID, sword.ID)

	change := <-session.C
	assert.Equal(t, models.Change{Type: models.ChangeCreated, UserID: userID, TodoID: blank.ID}, change)

	resp, raw = s.do(t, http.MethodGet, "/api/todos/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := decode[models.Collection](t, raw)
	assert.Len(t, mine, 2)
	assert.Equal(t, sword, mine[sword.ID])

	replacement := models.ToDo{ID: sword.ID, Label: "Find the lost sword", IsDone: true, UserID: userID}
	resp, _ = s.do(t, http.MethodPut, "/api/todos/"+sword.ID, token, replacement)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = s.do(t, http.MethodGet, "/api/users/"+userID+"/todos", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, replacement, decode[models.Collection](t, raw)[sword.ID])

	resp, _ = s.do(t, http.MethodDelete, "/api/todos/"+blank.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = s.do(t, http.MethodGet, "/api/todos", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[models.Collection](t, raw)
	assert.NotContains(t, all, blank.ID)
	assert.Contains(t, all, sword.ID)
}

func TestTodoNotFound(t *testing.T) {
	s := newTestServer(t)
	_, token := s.login(t, "player")

	resp, _ := s.do(t, http.MethodPut, "/api/todos/missing", token, models.ToDo{Label: "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/todos/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/users/ghost/todos", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPatch, "/api/users/ghost/todos", token, `{}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBadBodies(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.login(t, "player")

	resp, _ := s.do(t, http.MethodPost, "/api/todos", token, `{"label": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPatch, "/api/users/"+userID+"/todos", token, `[]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateUserTodosWithFlagPatch(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.login(t, "player")

	_, raw := s.do(t, http.MethodPost, "/api/todos", token, models.Draft{Label: "a"})
	a := decode[models.ToDo](t, raw)
	_, raw = s.do(t, http.MethodPost, "/api/todos", token, models.Draft{Label: "b"})
	b := decode[models.ToDo](t, raw)

	a.IsDone = true
	patch := map[string]any{a.ID: a, "-=" + b.ID: nil}
	resp, raw := s.do(t, http.MethodPatch, "/api/users/"+userID+"/todos", token, patch)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, models.Collection{a.ID: a}, decode[models.Collection](t, raw))
}

func TestExportTodos(t *testing.T) {
	s := newTestServer(t)
	_, token := s.login(t, "player")
	s.do(t, http.MethodPost, "/api/todos", token, models.Draft{Label: "Map the dungeon"})

	resp, raw := s.do(t, http.MethodGet, "/api/todos/export", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "todos.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Todos")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "Label", "Done", "User"}, rows[0])
	assert.Equal(t, "Map the dungeon", rows[1][1])
}
