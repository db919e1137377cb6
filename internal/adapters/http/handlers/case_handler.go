package handlers

import (
	"errors"
	"io"

	"neurogen-backend/internal/core/domain"
	"neurogen-backend/internal/core/services"
	"neurogen-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CaseHandler handles medical case endpoints
type CaseHandler struct {
	caseService *services.CaseService
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(caseService *services.CaseService) *CaseHandler {
	return &CaseHandler{
		caseService: caseService,
	}
}

// actorFromLocals builds the acting identity from the auth middleware
func actorFromLocals(c *fiber.Ctx) (services.Actor, bool) {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return services.Actor{}, false
	}
	name, _ := c.Locals("userName").(string)
	role, _ := c.Locals("role").(string)

	return services.Actor{
		ID:   userID,
		Name: name,
		Role: role,
	}, true
}

// caseErrorResponse maps case service errors to HTTP responses
func caseErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrCaseNotFound):
		return response.NotFound(c, "病例不存在")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "无权访问此病例")
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "Invalid request data")
	default:
		return response.InternalServerError(c, "Internal server error")
	}
}

// MessageRequest represents a chat message body
type MessageRequest struct {
	Text string `json:"text"`
}

// DiagnosisRequest represents a doctor diagnosis body
type DiagnosisRequest struct {
	Feedback string `json:"feedback"`
}

// Create handles case creation (multipart form, patient only)
// @Summary Create medical case
// @Description Open a new pending case with an optional image upload
// @Tags Cases
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param description formData string true "Symptom description"
// @Param modality formData string false "Imaging modality"
// @Param tags formData string false "Comma-separated tags"
// @Param image formData file false "Medical image"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /cases [post]
func (h *CaseHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	description := c.FormValue("description")
	if description == "" {
		return response.BadRequest(c, "Description is required")
	}

	input := &services.CreateCaseInput{
		Description: description,
		Modality:    c.FormValue("modality"),
		Tags:        c.FormValue("tags"),
	}

	// Image is optional; a broken upload does not abort the request
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err == nil {
			data, readErr := io.ReadAll(file)
			file.Close()
			if readErr == nil {
				input.ImageData = data
				input.ImageFilename = fileHeader.Filename
			}
		}
	}

	result, err := h.caseService.CreateCase(c.Context(), actor, input)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "只有患者可以创建病例")
		}
		return caseErrorResponse(c, err)
	}

	return response.Created(c, "Case created successfully", result)
}

// List handles case listing
// @Summary List medical cases
// @Description Patients see their own cases, doctors see all cases
// @Tags Cases
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /cases [get]
func (h *CaseHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	cases, err := h.caseService.ListCases(c.Context(), actor)
	if err != nil {
		return response.InternalServerError(c, "Failed to list cases")
	}

	return response.Success(c, "Cases retrieved successfully", cases)
}

// Get handles single case retrieval
// @Summary Get medical case
// @Description Get a case with its message thread, marking it read for the viewer's role
// @Tags Cases
// @Produce json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cases/{id} [get]
func (h *CaseHandler) Get(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.caseService.GetCase(c.Context(), actor, c.Params("id"))
	if err != nil {
		return caseErrorResponse(c, err)
	}

	return response.Success(c, "Case retrieved successfully", result)
}

// SendMessage handles appending a chat message to a case
// @Summary Send case message
// @Description Append a message to the case thread
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Param body body MessageRequest true "Message"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cases/{id}/messages [post]
func (h *CaseHandler) SendMessage(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Text == "" {
		return response.BadRequest(c, "Message text is required")
	}

	msg, err := h.caseService.AddMessage(c.Context(), actor, c.Params("id"), req.Text)
	if err != nil {
		return caseErrorResponse(c, err)
	}

	return response.Created(c, "Message sent successfully", msg)
}

// SubmitDiagnosis handles the doctor's diagnosis submission
// @Summary Submit diagnosis
// @Description Record the doctor's conclusion and complete the case
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Param body body DiagnosisRequest true "Diagnosis"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cases/{id}/diagnosis [post]
func (h *CaseHandler) SubmitDiagnosis(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req DiagnosisRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Feedback == "" {
		return response.BadRequest(c, "Feedback is required")
	}

	result, err := h.caseService.SubmitDiagnosis(c.Context(), actor, c.Params("id"), req.Feedback)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "只有医生可以提交诊断")
		}
		return caseErrorResponse(c, err)
	}

	return response.Success(c, "Diagnosis submitted successfully", result)
}

// MarkRead clears the unread flag for the caller's role
// @Summary Mark case as read
// @Description Clear the unread indicator for the caller's role
// @Tags Cases
// @Produce json
// @Security BearerAuth
// @Param id path string true "Case ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cases/{id}/read [patch]
func (h *CaseHandler) MarkRead(c *fiber.Ctx) error {
	actor, ok := actorFromLocals(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.caseService.MarkRead(c.Context(), actor, c.Params("id")); err != nil {
		return caseErrorResponse(c, err)
	}

	return response.Success(c, "Case marked as read", fiber.Map{
		"status": "ok",
	})
}
