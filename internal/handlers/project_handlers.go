package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/service"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 1 << 20

// ProjectHandler handles project CRUD. Writes accept either a JSON body or a
// multipart form carrying an optional image file. Both may instead name an
// image by reference in the "image" field.
type ProjectHandler struct {
	projectService ProjectServiceInterface
	maxUploadSize  int64
}

// NewProjectHandler creates a new ProjectHandler.
//
// Parameters:
//   - projectService: the project service
//   - maxUploadSize: upper bound for multipart bodies; non-positive means the default
//
// Returns:
//   - A new ProjectHandler
func NewProjectHandler(projectService ProjectServiceInterface, maxUploadSize int64) *ProjectHandler {
	if projectService == nil {
		panic("projectService cannot be nil")
	}
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSize
	}
	return &ProjectHandler{
		projectService: projectService,
		maxUploadSize:  maxUploadSize,
	}
}

// ListProjects handles GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListProjects(r.Context())
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.List(w, http.StatusOK, projects, len(projects))
}

// GetProject handles GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, constants.ParamID))
	if !ok {
		utils.NotFound(w, constants.MsgProjectNotFound)
		return
	}

	project, err := h.projectService.GetProject(r.Context(), id)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, project)
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	var input models.ProjectInput
	var image *service.ImageUpload

	if isMultipart(r) {
		form, closeFn, err := h.parseForm(w, r)
		if err != nil {
			utils.ErrorFromAppError(w, utils.ParseError(err))
			return
		}
		defer closeFn()

		input.Title = form.value("title")
		input.Description = form.value("description")
		input.Technologies = form.technologies()
		input.Image = form.value(constants.ProjectImageFormName)
		image = form.image
	} else if err := utils.DecodeJSON(r, &input); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	input.Technologies = utils.CleanStrings(input.Technologies)
	if err := utils.ValidateStruct(&input); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), userID, &input, image)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusCreated, project)
}

// UpdateProject handles PUT /api/projects/{id}. Only the fields present in
// the request are changed.
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	id, ok := utils.ParseID(chi.URLParam(r, constants.ParamID))
	if !ok {
		utils.NotFound(w, constants.MsgProjectNotFound)
		return
	}

	var update models.ProjectUpdate
	var image *service.ImageUpload

	if isMultipart(r) {
		form, closeFn, err := h.parseForm(w, r)
		if err != nil {
			utils.ErrorFromAppError(w, utils.ParseError(err))
			return
		}
		defer closeFn()

		if form.has("title") {
			title := form.value("title")
			update.Title = &title
		}
		if form.has("description") {
			description := form.value("description")
			update.Description = &description
		}
		if form.hasTechnologies() {
			update.Technologies = form.technologies()
		}
		if form.has(constants.ProjectImageFormName) {
			ref := form.value(constants.ProjectImageFormName)
			update.Image = &ref
		}
		image = form.image
	} else if err := utils.DecodeJSON(r, &update); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	if update.Technologies != nil {
		update.Technologies = utils.CleanStrings(update.Technologies)
	}
	if update.ClearsTechnologies() {
		utils.ErrorFromAppError(w, utils.NewValidationError("technologies", "Please add at least one technology"))
		return
	}
	if err := utils.ValidateStruct(&update); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	project, err := h.projectService.UpdateProject(r.Context(), userID, id, &update, image)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, project)
}

// DeleteProject handles DELETE /api/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	id, ok := utils.ParseID(chi.URLParam(r, constants.ParamID))
	if !ok {
		utils.NotFound(w, constants.MsgProjectNotFound)
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), userID, id); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, struct{}{})
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get(constants.HeaderContentType), constants.ContentTypeMultipart)
}

// projectForm is a parsed multipart project body.
type projectForm struct {
	values map[string][]string
	image  *service.ImageUpload
}

// parseForm reads a multipart body bounded by the upload limit. The returned
// function closes the image file and removes temporary parts.
func (h *ProjectHandler) parseForm(w http.ResponseWriter, r *http.Request) (*projectForm, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, utils.NewBadRequestError(constants.MsgRequestBodyTooLarge)
		}
		return nil, nil, utils.NewBadRequestError("Invalid multipart form")
	}

	form := &projectForm{values: r.MultipartForm.Value}
	closers := []func(){func() { _ = r.MultipartForm.RemoveAll() }}

	file, header, err := r.FormFile(constants.ProjectImageFormName)
	switch {
	case err == nil:
		closers = append(closers, func() { _ = file.Close() })
		form.image = &service.ImageUpload{Filename: header.Filename, Content: file}
	case errors.Is(err, http.ErrMissingFile):
	default:
		log.Warn().Err(err).Msg("Failed to read uploaded image")
		_ = r.MultipartForm.RemoveAll()
		return nil, nil, utils.NewValidationError(constants.ProjectImageFormName, constants.MsgInvalidImage)
	}

	return form, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

func (f *projectForm) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *projectForm) value(key string) string {
	if v := f.values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f *projectForm) hasTechnologies() bool {
	return f.has("technologies") || f.has("technologies[]")
}

// technologies accepts repeated fields, a JSON array in a single field, or a
// comma separated list.
func (f *projectForm) technologies() []string {
	raw := append(append([]string{}, f.values["technologies"]...), f.values["technologies[]"]...)
	if len(raw) != 1 {
		return raw
	}

	single := strings.TrimSpace(raw[0])
	if strings.HasPrefix(single, "[") {
		var list []string
		if err := json.Unmarshal([]byte(single), &list); err == nil {
			return list
		}
	}
	return strings.Split(single, ",")
}

