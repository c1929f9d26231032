package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anecdote/internal/models"
	"anecdote/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByOwner(ctx context.Context, ownerID uint, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// newPostTestApp wires a Fiber app with the post handlers behind a fake
// authenticated identity.
func newPostTestApp(mockRepo *MockPostRepository, callerID uint) (*fiber.App, *Server) {
	s := &Server{
		postRepo:    mockRepo,
		postService: service.NewPostService(mockRepo, 30*time.Minute),
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", callerID)
		c.Locals("username", "alice")
		return c.Next()
	})
	app.Get("/posts", s.GetMyPosts)
	app.Get("/posts/all", s.GetAllPosts)
	app.Post("/posts", s.CreatePost)
	app.Get("/posts/:id", s.GetPost)
	app.Put("/posts/:id", s.UpdatePost)
	app.Delete("/posts/:id", s.DeletePost)
	return app, s
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var er models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	return er
}

func TestCreatePostHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(m *MockPostRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{
				"title":   "New Post",
				"content": "Hello world",
			},
			mockSetup: func(m *MockPostRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.On("GetByID", mock.Anything, mock.Anything).Return(&models.Post{ID: 1, Title: "New Post", UserID: 1}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing Fields",
			body: map[string]string{
				"title": "",
			},
			mockSetup:      func(m *MockPostRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockPostRepository)
			tt.mockSetup(mockRepo)
			app, _ := newPostTestApp(mockRepo, 1)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, _ := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetPostHandler(t *testing.T) {
	post := &models.Post{
		ID:        7,
		Title:     "Mine",
		Content:   "hello",
		UserID:    1,
		User:      models.User{ID: 1, Username: "alice"},
		CreatedAt: time.Now().Add(-time.Hour),
	}

	t.Run("Owner Reads Own Post", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(7)).Return(post, nil)
		app, _ := newPostTestApp(mockRepo, 1)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/7", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "alice", got["username"])
	})

	t.Run("Non-Owner Gets 403", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(7)).Return(post, nil)
		app, _ := newPostTestApp(mockRepo, 2)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/7", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodeNotOwner, decodeError(t, resp).Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, models.NewNotFoundError("Post", uint(99)))
		app, _ := newPostTestApp(mockRepo, 1)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/99", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		app, _ := newPostTestApp(new(MockPostRepository), 1)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/abc", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdatePostHandler(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"title": "Edited", "content": "changed"})

	freshPost := func() *models.Post {
		return &models.Post{ID: 7, Title: "Mine", Content: "hello", UserID: 1, CreatedAt: time.Now()}
	}
	stalePost := func() *models.Post {
		return &models.Post{ID: 7, Title: "Mine", Content: "hello", UserID: 1, CreatedAt: time.Now().Add(-31 * time.Minute)}
	}

	t.Run("Success Inside Window", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(7)).Return(freshPost(), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		app, _ := newPostTestApp(mockRepo, 1)

		req := httptest.NewRequest(http.MethodPut, "/posts/7", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Window Expired Gets 403", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(7)).Return(stalePost(), nil)
		app, _ := newPostTestApp(mockRepo, 1)

		req := httptest.NewRequest(http.MethodPut, "/posts/7", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodeWindowExpired, decodeError(t, resp).Code)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Non-Owner Gets 403 Before Window Check", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(7)).Return(stalePost(), nil)
		app, _ := newPostTestApp(mockRepo, 2)

		req := httptest.NewRequest(http.MethodPut, "/posts/7", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, models.CodeNotOwner, decodeError(t, resp).Code)
	})
}

func TestDeletePostHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(7)).Return(
			&models.Post{ID: 7, UserID: 1, CreatedAt: time.Now()}, nil)
		mockRepo.On("Delete", mock.Anything, uint(7)).Return(nil)
		app, _ := newPostTestApp(mockRepo, 1)

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/posts/7", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Window Expired", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("GetByID", mock.Anything, uint(7)).Return(
			&models.Post{ID: 7, UserID: 1, CreatedAt: time.Now().Add(-31 * time.Minute)}, nil)
		app, _ := newPostTestApp(mockRepo, 1)

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/posts/7", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestListHandlersPagination(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("ListByOwner", mock.Anything, uint(1), 50, 0).Return([]models.Post{}, nil)
		app, _ := newPostTestApp(mockRepo, 1)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Limit Is Capped", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		mockRepo.On("ListAll", mock.Anything, 100, 10).Return([]models.Post{}, nil)
		app, _ := newPostTestApp(mockRepo, 1)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts/all?limit=5000&offset=10", nil))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockRepo.AssertExpectations(t)
	})
}
