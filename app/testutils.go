package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Markelych32/blog-platform/internal/categoryservice"
	"github.com/Markelych32/blog-platform/internal/common"
	"github.com/Markelych32/blog-platform/internal/postservice"
	"github.com/Markelych32/blog-platform/internal/tagservice"
	"github.com/Markelych32/blog-platform/internal/userservice"
)

type noopProducer struct{}

func (noopProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	return nil
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../migrations", t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	clock := common.SystemClock{}

	userService, err := userservice.NewUserService(db, noopProducer{}, []byte("0123456789abcdef0123456789abcdef"), clock)
	assert.NoError(t, err)

	categoryService := categoryservice.NewCategoryService(db, cache)
	tagService := tagservice.NewTagService(db, cache)

	app := &application{
		config:          &Config{Port: "4000", Environment: "test"},
		logger:          logger,
		userService:     userService,
		categoryService: categoryService,
		tagService:      tagService,
		postService:     postservice.NewPostService(db, cache, categoryService, tagService, userService, clock),
	}

	return app, db
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return res
}

func readResponse(t *testing.T, res *http.Response) (int, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var env envelope
	err = json.Unmarshal(responseBody, &env)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, env
}

// registerAndLogin provisions an account and returns a usable bearer token.
func registerAndLogin(t *testing.T, ts *testServer) string {
	res := ts.request(t, http.MethodPost, "/v1/users/register", "", map[string]string{
		"username": "testuser",
		"email":    "testuser@example.com",
		"password": "TestPassword123!",
	})
	status, _ := readResponse(t, res)
	assert.Equal(t, http.StatusCreated, status)

	res = ts.request(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "testuser@example.com",
		"password": "TestPassword123!",
	})
	status, env := readResponse(t, res)
	assert.Equal(t, http.StatusOK, status)

	token, ok := env["token"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected token payload: %v", env)
	}

	return token["access_token"].(string)
}
