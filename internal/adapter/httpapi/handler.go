package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"petrorag/internal/domain"
	"petrorag/internal/usecase"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	answerUsecase usecase.AnswerQuestionUsecase
	index         domain.VectorIndex
	feedbackRepo  domain.FeedbackRepository
}

func NewHandler(
	answerUsecase usecase.AnswerQuestionUsecase,
	index domain.VectorIndex,
	feedbackRepo domain.FeedbackRepository,
) *Handler {
	return &Handler{
		answerUsecase: answerUsecase,
		index:         index,
		feedbackRepo:  feedbackRepo,
	}
}

// RegisterRoutes mounts all API routes on the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/chat/query", h.Query)
	e.POST("/v1/feedback", h.SubmitFeedback)
	e.GET("/v1/feedback", h.ListFeedback)
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)
}

type queryRequest struct {
	Question string `json:"question"`
	Debug    bool   `json:"debug"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

// Query answers a production data question.
// (POST /v1/chat/query)
func (h *Handler) Query(ctx echo.Context) error {
	var req queryRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	answer := h.answerUsecase.Execute(ctx.Request().Context(), req.Question, req.Debug)

	return ctx.JSON(http.StatusOK, queryResponse{Answer: answer})
}

type feedbackRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Helpful  bool   `json:"helpful"`
	Comment  string `json:"comment"`
}

// SubmitFeedback records whether an answer was helpful.
// (POST /v1/feedback)
func (h *Handler) SubmitFeedback(ctx echo.Context) error {
	var req feedbackRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Answer) == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "question and answer are required"})
	}

	fb := &domain.Feedback{
		Question: req.Question,
		Answer:   req.Answer,
		Helpful:  req.Helpful,
		Comment:  req.Comment,
	}
	if err := h.feedbackRepo.Save(ctx.Request().Context(), fb); err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(http.StatusCreated, map[string]int64{"id": fb.ID})
}

// ListFeedback returns the most recent feedback entries.
// (GET /v1/feedback?limit=N)
func (h *Handler) ListFeedback(ctx echo.Context) error {
	limit := 50
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = parsed
	}

	items, err := h.feedbackRepo.ListRecent(ctx.Request().Context(), limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if items == nil {
		items = []domain.Feedback{}
	}

	return ctx.JSON(http.StatusOK, map[string]any{"feedback": items})
}

// Healthz reports process liveness.
// (GET /healthz)
func (h *Handler) Healthz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports whether the vector index is reachable.
// (GET /readyz)
func (h *Handler) Readyz(ctx echo.Context) error {
	count, err := h.index.Count(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, map[string]any{"status": "ok", "chunks": count})
}
