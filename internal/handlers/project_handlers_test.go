package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/service"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// MockProjectService records the last write it received.
type MockProjectService struct {
	ListProjectsFunc  func(ctx context.Context) ([]*models.Project, error)
	GetProjectFunc    func(ctx context.Context, id int64) (*models.Project, error)
	CreateProjectFunc func(ctx context.Context, userID int64, input *models.ProjectInput, image *service.ImageUpload) (*models.Project, error)
	UpdateProjectFunc func(ctx context.Context, userID, id int64, update *models.ProjectUpdate, image *service.ImageUpload) (*models.Project, error)
	DeleteProjectFunc func(ctx context.Context, userID, id int64) error

	LastInput  *models.ProjectInput
	LastUpdate *models.ProjectUpdate
	LastImage  []byte
}

func (m *MockProjectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	if m.ListProjectsFunc != nil {
		return m.ListProjectsFunc(ctx)
	}
	return []*models.Project{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}, {ID: 3, Title: "Three"}}, nil
}

func (m *MockProjectService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	if m.GetProjectFunc != nil {
		return m.GetProjectFunc(ctx, id)
	}
	return &models.Project{ID: id, Title: "Project", Technologies: []string{"Go"}}, nil
}

func (m *MockProjectService) CreateProject(ctx context.Context, userID int64, input *models.ProjectInput, image *service.ImageUpload) (*models.Project, error) {
	m.LastInput = input
	m.captureImage(image)
	if m.CreateProjectFunc != nil {
		return m.CreateProjectFunc(ctx, userID, input, image)
	}
	return &models.Project{ID: 10, Title: input.Title, Description: input.Description, Technologies: input.Technologies, UserID: userID}, nil
}

func (m *MockProjectService) UpdateProject(ctx context.Context, userID, id int64, update *models.ProjectUpdate, image *service.ImageUpload) (*models.Project, error) {
	m.LastUpdate = update
	m.captureImage(image)
	if m.UpdateProjectFunc != nil {
		return m.UpdateProjectFunc(ctx, userID, id, update, image)
	}
	project := &models.Project{ID: id, Title: "Old", Description: "Old", Technologies: []string{"Go"}, UserID: userID}
	project.ApplyUpdate(update)
	return project, nil
}

func (m *MockProjectService) DeleteProject(ctx context.Context, userID, id int64) error {
	if m.DeleteProjectFunc != nil {
		return m.DeleteProjectFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockProjectService) captureImage(image *service.ImageUpload) {
	m.LastImage = nil
	if image != nil {
		m.LastImage, _ = io.ReadAll(image.Content)
	}
}

func projectRouter(handler *ProjectHandler) http.Handler {
	router := chi.NewRouter()
	router.Get("/api/projects", handler.ListProjects)
	router.Get("/api/projects/{id}", handler.GetProject)
	router.Post("/api/projects", handler.CreateProject)
	router.Put("/api/projects/{id}", handler.UpdateProject)
	router.Delete("/api/projects/{id}", handler.DeleteProject)
	return router
}

// multipartRequest builds a multipart body. Values may repeat a key.
func multipartRequest(t *testing.T, method, target string, values [][2]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, kv := range values {
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile(constants.ProjectImageFormName, "shot.png")
		if err != nil {
			t.Fatalf("Failed to create file part: %v", err)
		}
		_, _ = part.Write(image)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestListProjects(t *testing.T) {
	handler := NewProjectHandler(new(MockProjectService), 0)

	rec := httptest.NewRecorder()
	projectRouter(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, rec.Code)
	}
	response := decodeResponse(t, rec)
	if count, _ := response["count"].(float64); count != 3 {
		t.Errorf("Expected count 3, got %v", count)
	}
	if data, _ := response["data"].([]interface{}); len(data) != 3 {
		t.Errorf("Expected 3 projects, got %d", len(data))
	}
}

func TestGetProject(t *testing.T) {
	mockService := new(MockProjectService)
	router := projectRouter(NewProjectHandler(mockService, 0))

	testCases := []struct {
		name           string
		path           string
		mockSetup      func()
		expectedStatus int
	}{
		{name: "Found", path: "/api/projects/5", expectedStatus: http.StatusOK},
		{name: "Malformed ID", path: "/api/projects/not-a-number", expectedStatus: http.StatusNotFound},
		{name: "Zero ID", path: "/api/projects/0", expectedStatus: http.StatusNotFound},
		{
			name: "Unknown ID",
			path: "/api/projects/404",
			mockSetup: func() {
				mockService.GetProjectFunc = func(ctx context.Context, id int64) (*models.Project, error) {
					return nil, utils.NewNotFoundError("Project", id)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService.GetProjectFunc = nil
			if tc.mockSetup != nil {
				tc.mockSetup()
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if rec.Code != tc.expectedStatus {
				t.Fatalf("Expected status code %d, got %d", tc.expectedStatus, rec.Code)
			}
			if tc.expectedStatus == http.StatusNotFound {
				if msg, _ := decodeResponse(t, rec)["message"].(string); msg != constants.MsgProjectNotFound {
					t.Errorf("Expected message %q, got %q", constants.MsgProjectNotFound, msg)
				}
			}
		})
	}
}

func TestCreateProjectJSON(t *testing.T) {
	mockService := new(MockProjectService)
	router := projectRouter(NewProjectHandler(mockService, 0))

	t.Run("Created", func(t *testing.T) {
		body := map[string]interface{}{
			"title":        "Site",
			"description":  "My site",
			"technologies": []string{" Go ", "", "React"},
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(jsonRequest(t, http.MethodPost, "/api/projects", body), 2))

		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected status code %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
		}
		got := mockService.LastInput.Technologies
		if len(got) != 2 || got[0] != "Go" || got[1] != "React" {
			t.Errorf("Expected cleaned technologies [Go React], got %v", got)
		}
		if mockService.LastImage != nil {
			t.Errorf("Expected no image for a JSON body")
		}
	})

	t.Run("Image Reference", func(t *testing.T) {
		body := map[string]interface{}{
			"title":        "T",
			"description":  "D",
			"technologies": []string{"Go"},
			"image":        "shot.png",
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(jsonRequest(t, http.MethodPost, "/api/projects", body), 2))

		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected status code %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
		}
		if mockService.LastInput.Image != "shot.png" {
			t.Errorf("Expected image reference 'shot.png', got %q", mockService.LastInput.Image)
		}
	})

	t.Run("Image Reference Too Long", func(t *testing.T) {
		body := map[string]interface{}{
			"title":        "T",
			"description":  "D",
			"technologies": []string{"Go"},
			"image":        strings.Repeat("a", 501),
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(jsonRequest(t, http.MethodPost, "/api/projects", body), 2))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("No Technologies", func(t *testing.T) {
		body := map[string]interface{}{"title": "Site", "description": "My site", "technologies": []string{" "}}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(jsonRequest(t, http.MethodPost, "/api/projects", body), 2))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		body := map[string]interface{}{"title": "Site", "description": "My site", "technologies": []string{"Go"}}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, jsonRequest(t, http.MethodPost, "/api/projects", body))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, rec.Code)
		}
	})
}

func TestCreateProjectMultipart(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n fake image bytes")

	testCases := []struct {
		name      string
		values    [][2]string
		wantTechs []string
	}{
		{
			name:      "Repeated Fields",
			values:    [][2]string{{"title", "T"}, {"description", "D"}, {"technologies", "Go"}, {"technologies", "SQL"}},
			wantTechs: []string{"Go", "SQL"},
		},
		{
			name:      "Bracket Fields",
			values:    [][2]string{{"title", "T"}, {"description", "D"}, {"technologies[]", "Go"}, {"technologies[]", "Vue"}},
			wantTechs: []string{"Go", "Vue"},
		},
		{
			name:      "JSON Array",
			values:    [][2]string{{"title", "T"}, {"description", "D"}, {"technologies", `["Go","Docker"]`}},
			wantTechs: []string{"Go", "Docker"},
		},
		{
			name:      "Comma Separated",
			values:    [][2]string{{"title", "T"}, {"description", "D"}, {"technologies", "Go, Redis ,"}},
			wantTechs: []string{"Go", "Redis"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := new(MockProjectService)
			router := projectRouter(NewProjectHandler(mockService, 0))

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, withUser(multipartRequest(t, http.MethodPost, "/api/projects", tc.values, png), 2))

			if rec.Code != http.StatusCreated {
				t.Fatalf("Expected status code %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
			}
			got := mockService.LastInput.Technologies
			if strings.Join(got, "|") != strings.Join(tc.wantTechs, "|") {
				t.Errorf("Expected technologies %v, got %v", tc.wantTechs, got)
			}
			if !bytes.Equal(mockService.LastImage, png) {
				t.Errorf("Expected the uploaded image to reach the service")
			}
		})
	}
}

func TestCreateProjectMultipartTooLarge(t *testing.T) {
	mockService := new(MockProjectService)
	router := projectRouter(NewProjectHandler(mockService, 1024))

	big := bytes.Repeat([]byte("x"), 3<<20)
	values := [][2]string{{"title", "T"}, {"description", "D"}, {"technologies", "Go"}}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, withUser(multipartRequest(t, http.MethodPost, "/api/projects", values, big), 2))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status code %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if mockService.LastInput != nil {
		t.Errorf("Service must not be called for oversized bodies")
	}
}

func TestUpdateProject(t *testing.T) {
	t.Run("Partial JSON", func(t *testing.T) {
		mockService := new(MockProjectService)
		router := projectRouter(NewProjectHandler(mockService, 0))

		rec := httptest.NewRecorder()
		req := withUser(jsonRequest(t, http.MethodPut, "/api/projects/3", map[string]string{"title": "New"}), 2)
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status code %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		if mockService.LastUpdate.Description != nil || mockService.LastUpdate.Technologies != nil {
			t.Errorf("Expected only the title to be set, got %+v", mockService.LastUpdate)
		}
		data, _ := decodeResponse(t, rec)["data"].(map[string]interface{})
		if title, _ := data["title"].(string); title != "New" {
			t.Errorf("Expected title 'New', got %q", title)
		}
	})

	t.Run("Partial Multipart", func(t *testing.T) {
		mockService := new(MockProjectService)
		router := projectRouter(NewProjectHandler(mockService, 0))

		rec := httptest.NewRecorder()
		req := withUser(multipartRequest(t, http.MethodPut, "/api/projects/3", [][2]string{{"description", "Updated"}}, nil), 2)
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status code %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		update := mockService.LastUpdate
		if update.Title != nil || update.Technologies != nil {
			t.Errorf("Expected absent fields to stay nil, got %+v", update)
		}
		if update.Description == nil || *update.Description != "Updated" {
			t.Errorf("Expected description 'Updated'")
		}
		if mockService.LastImage != nil {
			t.Errorf("Expected no image")
		}
	})

	t.Run("Image Reference JSON", func(t *testing.T) {
		mockService := new(MockProjectService)
		router := projectRouter(NewProjectHandler(mockService, 0))

		rec := httptest.NewRecorder()
		req := withUser(jsonRequest(t, http.MethodPut, "/api/projects/3", map[string]string{"image": "https://cdn.example.com/a.png"}), 2)
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status code %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		update := mockService.LastUpdate
		if update.Image == nil || *update.Image != "https://cdn.example.com/a.png" {
			t.Errorf("Expected the image reference to reach the service, got %+v", update.Image)
		}
		if update.Title != nil {
			t.Errorf("Expected title to stay nil")
		}
		data, _ := decodeResponse(t, rec)["data"].(map[string]interface{})
		if img, _ := data["image"].(string); img != "https://cdn.example.com/a.png" {
			t.Errorf("Expected image in response, got %q", img)
		}
	})

	t.Run("Image Reference Multipart", func(t *testing.T) {
		mockService := new(MockProjectService)
		router := projectRouter(NewProjectHandler(mockService, 0))

		rec := httptest.NewRecorder()
		req := withUser(multipartRequest(t, http.MethodPut, "/api/projects/3", [][2]string{{"image", "https://cdn.example.com/b.png"}}, nil), 2)
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status code %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		if update := mockService.LastUpdate; update.Image == nil || *update.Image != "https://cdn.example.com/b.png" {
			t.Errorf("Expected the multipart image reference to reach the service")
		}
		if mockService.LastImage != nil {
			t.Errorf("Expected no uploaded file")
		}
	})

	t.Run("Clearing Technologies", func(t *testing.T) {
		mockService := new(MockProjectService)
		router := projectRouter(NewProjectHandler(mockService, 0))

		rec := httptest.NewRecorder()
		req := withUser(jsonRequest(t, http.MethodPut, "/api/projects/3", map[string]interface{}{"technologies": []string{}}), 2)
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, rec.Code)
		}
		if mockService.LastUpdate != nil {
			t.Errorf("Service must not be called")
		}
	})

	t.Run("Not Owner", func(t *testing.T) {
		mockService := &MockProjectService{
			UpdateProjectFunc: func(ctx context.Context, userID, id int64, update *models.ProjectUpdate, image *service.ImageUpload) (*models.Project, error) {
				return nil, utils.NewNotOwnerError("update")
			},
		}
		router := projectRouter(NewProjectHandler(mockService, 0))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(jsonRequest(t, http.MethodPut, "/api/projects/3", map[string]string{"title": "X"}), 99))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, rec.Code)
		}
	})

	t.Run("Malformed ID", func(t *testing.T) {
		router := projectRouter(NewProjectHandler(new(MockProjectService), 0))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(jsonRequest(t, http.MethodPut, "/api/projects/xyz", map[string]string{"title": "X"}), 2))

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status code %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestDeleteProject(t *testing.T) {
	var deletedBy, deletedID int64
	mockService := &MockProjectService{
		DeleteProjectFunc: func(ctx context.Context, userID, id int64) error {
			deletedBy, deletedID = userID, id
			return nil
		},
	}
	router := projectRouter(NewProjectHandler(mockService, 0))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodDelete, "/api/projects/8", nil), 2))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, rec.Code)
	}
	if deletedBy != 2 || deletedID != 8 {
		t.Errorf("Expected user 2 to delete project 8, got %d/%d", deletedBy, deletedID)
	}

	response := decodeResponse(t, rec)
	if data, ok := response["data"].(map[string]interface{}); !ok || len(data) != 0 {
		t.Errorf("Expected empty data object, got %v", response["data"])
	}
}
