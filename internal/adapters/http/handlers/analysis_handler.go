package handlers

import (
	"errors"
	"io"
	"mime/multipart"

	"neurogen-backend/internal/adapters/ai"
	"neurogen-backend/internal/core/domain"
	"neurogen-backend/internal/core/services"
	"neurogen-backend/internal/pkg/pagination"
	"neurogen-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AnalysisHandler handles report synthesis and assistant endpoints
type AnalysisHandler struct {
	analysisService  *services.AnalysisService
	assistantService *services.AssistantService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *services.AnalysisService, assistantService *services.AssistantService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService:  analysisService,
		assistantService: assistantService,
	}
}

// ChatRequest represents an assistant chat request body
type ChatRequest struct {
	Messages []ai.Turn `json:"messages"`
	JSONMode bool      `json:"json_mode"`
}

// readUpload reads a multipart file fully into memory
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// Multimodal runs the multimodal report synthesis pipeline
// @Summary Run multimodal analysis
// @Description Synthesize a diagnostic report from a medical image and optional gene data
// @Tags Analysis
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image_file formData file true "Medical image"
// @Param gene_file formData file false "Single-cell / gene data"
// @Success 200 {object} domain.AnalysisReport
// @Failure 400 {object} response.Response
// @Router /analysis/multimodal [post]
func (h *AnalysisHandler) Multimodal(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	imageHeader, err := c.FormFile("image_file")
	if err != nil {
		return response.BadRequest(c, "image_file is required")
	}
	imageData, err := readUpload(imageHeader)
	if err != nil {
		return response.BadRequest(c, "Failed to read image_file")
	}

	input := &services.AnalyzeInput{
		ImageData:     imageData,
		ImageFilename: imageHeader.Filename,
	}

	if geneHeader, err := c.FormFile("gene_file"); err == nil && geneHeader != nil {
		geneData, readErr := readUpload(geneHeader)
		if readErr != nil {
			return response.BadRequest(c, "Failed to read gene_file")
		}
		input.GeneData = geneData
		input.GeneFilename = geneHeader.Filename
	}

	// Model trouble never reaches this point; the service degrades to
	// its deterministic fallback report instead
	report, err := h.analysisService.Analyze(c.Context(), userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Invalid analysis input")
		}
		return response.InternalServerError(c, "Analysis failed")
	}

	return c.JSON(report)
}

// Chat handles the general-purpose assistant chat
// @Summary Chat with assistant
// @Description Forward a conversation to the medical assistant model
// @Tags Analysis
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChatRequest true "Conversation turns"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /analysis/chat [post]
func (h *AnalysisHandler) Chat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	content, err := h.assistantService.Chat(c.Context(), req.Messages, req.JSONMode)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Messages are required")
		case errors.Is(err, domain.ErrModelUnavailable):
			return response.ServiceUnavailable(c, "AI 服务暂时不可用，请稍后再试")
		default:
			return response.InternalServerError(c, "Chat failed")
		}
	}

	return c.JSON(fiber.Map{
		"content": content,
	})
}

// HealthReport returns the deterministic wellness snapshot for a user
// @Summary Get health report
// @Description Derive a stable wellness snapshot from the user ID
// @Tags Analysis
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} domain.HealthReport
// @Router /analysis/health-report/{user_id} [get]
func (h *AnalysisHandler) HealthReport(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return response.BadRequest(c, "user_id is required")
	}

	return c.JSON(h.analysisService.HealthReport(userID))
}

// Archive lists the caller's previously synthesized reports
// @Summary List archived reports
// @Description List the authenticated user's archived analysis reports, newest first
// @Tags Analysis
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /analysis/archive [get]
func (h *AnalysisHandler) Archive(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	results, total, err := h.analysisService.ListArchive(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list archived reports")
	}

	return response.Success(c, "Archived reports retrieved successfully",
		pagination.NewResponse(results, params, total))
}
