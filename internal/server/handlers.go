package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/scenescribe/scenescribe/internal/health"
	"github.com/scenescribe/scenescribe/internal/pipeline"
	"github.com/scenescribe/scenescribe/internal/project"
)

// Handlers holds the HTTP handlers for the project API.
type Handlers struct {
	svc     *pipeline.Service
	checker *health.Checker
	logger  zerolog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(svc *pipeline.Service, checker *health.Checker, logger zerolog.Logger) *Handlers {
	return &Handlers{
		svc:     svc,
		checker: checker,
		logger:  logger.With().Str("component", "handlers").Logger(),
	}
}

// CreateProjectRequest is the body for POST /api/v1/projects.
type CreateProjectRequest struct {
	InputType string                `json:"inputType"`
	URL       string                `json:"url"`
	Text      string                `json:"text"`
	Config    *pipeline.ConfigPatch `json:"config"`
}

// ProjectResponse wraps a project document.
type ProjectResponse struct {
	Project *project.Project `json:"project"`
}

// CreateProject handles POST /api/v1/projects.
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	inputType := project.InputType(req.InputType)
	if inputType == "" {
		if req.Text != "" {
			inputType = project.InputText
		} else {
			inputType = project.InputURL
		}
	}

	p, err := h.svc.CreateProject(c.Context(), pipeline.CreateProjectInput{
		InputType: inputType,
		URL:       req.URL,
		RawText:   req.Text,
		Config:    req.Config,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ProjectResponse{Project: p})
}

// GetProject handles GET /api/v1/projects/:projectID.
func (h *Handlers) GetProject(c *fiber.Ctx) error {
	p, err := h.svc.GetProject(c.Context(), c.Params("projectID"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ProjectResponse{Project: p})
}

// UpdateProjectRequest is the body for PATCH /api/v1/projects/:projectID.
type UpdateProjectRequest struct {
	Summary *string               `json:"summary"`
	Error   *string               `json:"error"`
	Config  *pipeline.ConfigPatch `json:"config"`
}

// UpdateProject handles PATCH /api/v1/projects/:projectID.
func (h *Handlers) UpdateProject(c *fiber.Ctx) error {
	var req UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	p, err := h.svc.UpdateProject(c.Context(), c.Params("projectID"), pipeline.UpdateProjectInput{
		Summary: req.Summary,
		Error:   req.Error,
		Config:  req.Config,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ProjectResponse{Project: p})
}

// EditTopicsRequest is the body for PATCH /api/v1/projects/:projectID/topics.
type EditTopicsRequest struct {
	Merge  *pipeline.MergeRequest `json:"merge"`
	Topics []project.TopicPatch   `json:"topics"`
}

// EditTopics handles PATCH /api/v1/projects/:projectID/topics.
func (h *Handlers) EditTopics(c *fiber.Ctx) error {
	var req EditTopicsRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	p, err := h.svc.EditTopics(c.Context(), c.Params("projectID"), pipeline.EditTopicsInput{
		Merge:  req.Merge,
		Topics: req.Topics,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ProjectResponse{Project: p})
}

// GenerateRequest selects topics for a generation batch. An empty list
// selects every enabled topic.
type GenerateRequest struct {
	TopicIDs []string `json:"topicIds"`
}

// GenerateScripts handles POST /api/v1/projects/:projectID/scripts.
func (h *Handlers) GenerateScripts(c *fiber.Ctx) error {
	var req GenerateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return problemResponse(c, fiber.StatusBadRequest,
				"invalid_body", "Bad Request",
				"Invalid request body: "+err.Error())
		}
	}

	p, err := h.svc.GenerateScripts(c.Context(), c.Params("projectID"), req.TopicIDs)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ProjectResponse{Project: p})
}

// GenerateVideos handles POST /api/v1/projects/:projectID/videos.
func (h *Handlers) GenerateVideos(c *fiber.Ctx) error {
	var req GenerateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return problemResponse(c, fiber.StatusBadRequest,
				"invalid_body", "Bad Request",
				"Invalid request body: "+err.Error())
		}
	}

	p, err := h.svc.GenerateVideos(c.Context(), c.Params("projectID"), req.TopicIDs)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(ProjectResponse{Project: p})
}

// TopicVideoResponse reports one topic's render progress and media.
type TopicVideoResponse struct {
	TopicID     string             `json:"topicId"`
	VideoStatus project.TaskStatus `json:"videoStatus"`
	Media       *project.Media     `json:"media,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// TopicVideo handles GET /api/v1/projects/:projectID/topics/:topicID/video.
func (h *Handlers) TopicVideo(c *fiber.Ctx) error {
	p, err := h.svc.GetProject(c.Context(), c.Params("projectID"))
	if err != nil {
		return serviceError(c, err)
	}
	topic := p.Topic(c.Params("topicID"))
	if topic == nil {
		return problemResponse(c, fiber.StatusNotFound,
			"topic_not_found", "Not Found",
			"Topic not found: "+c.Params("topicID"))
	}
	status := topic.VideoStatus
	if status == "" {
		status = project.TaskPending
	}
	return c.JSON(TopicVideoResponse{
		TopicID:     topic.ID,
		VideoStatus: status,
		Media:       topic.Media,
	})
}

// Liveness handles GET /healthz.
func (h *Handlers) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness handles GET /readyz.
func (h *Handlers) Readiness(c *fiber.Ctx) error {
	if !h.checker.IsReady(c.Context()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not_ready",
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// HealthDetail handles GET /api/v1/health.
func (h *Handlers) HealthDetail(c *fiber.Ctx) error {
	return c.JSON(h.checker.RunAll(c.Context()))
}
