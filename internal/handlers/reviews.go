package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"reminer-backend/internal/analysis"
	"reminer-backend/internal/catalog"
	"reminer-backend/internal/domain"
	"reminer-backend/internal/pagination"
	"reminer-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewAnalyzer runs an analyze request for a user.
type ReviewAnalyzer interface {
	Analyze(ctx context.Context, userID string, req analysis.Request) (*analysis.PartialResult, error)
}

// ReviewHandler handles /reviews requests
type ReviewHandler struct {
	svc      catalog.Service
	analyzer ReviewAnalyzer
	pageSize int
	logger   *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(svc catalog.Service, analyzer ReviewAnalyzer, pageSize int, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, analyzer: analyzer, pageSize: pageSize, logger: logger}
}

// ReviewInput is a review in a request body. Clients send the id as either
// review_id or id.
type ReviewInput struct {
	ReviewID string       `json:"review_id"`
	ID       string       `json:"id"`
	Review   string       `json:"review"`
	Score    domain.Score `json:"score"`
	Date     string       `json:"date"`
}

func (in ReviewInput) fields() catalog.ReviewFields {
	id := in.ReviewID
	if id == "" {
		id = in.ID
	}
	return catalog.ReviewFields{ID: id, Review: in.Review, Score: in.Score, Date: in.Date}
}

// CreateReviewsRequest accepts a batch or a single review.
type CreateReviewsRequest struct {
	Reviews []ReviewInput `json:"reviews"`
	Review  *ReviewInput  `json:"review"`
}

// CreateReviews handles POST /reviews
func (h *ReviewHandler) CreateReviews(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id", "app_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	var req CreateReviewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	inputs := req.Reviews
	if req.Review != nil {
		inputs = append(inputs, *req.Review)
	}
	fields := make([]catalog.ReviewFields, 0, len(inputs))
	for _, in := range inputs {
		fields = append(fields, in.fields())
	}

	ids, err := h.svc.CreateReviews(r.Context(), params[0], params[1], fields)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Reviews created successfully",
		"ids":     ids,
	})
}

// ListReviews handles GET /reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	page, err := pagination.ParseParams(r.URL.Query(), h.pageSize)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	result, err := h.svc.ListReviews(r.Context(), params[0], page)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"reviews":     result.Items,
		"total_pages": result.TotalPages,
	})
}

// DetailedReviews handles GET /reviews/detailed
func (h *ReviewHandler) DetailedReviews(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	reviews, err := h.svc.DetailedReviews(r.Context(), params[0])
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// DetailedAppReviews handles GET /reviews/detailed/app
func (h *ReviewHandler) DetailedAppReviews(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id", "app_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	reviews, err := h.svc.DetailedAppReviews(r.Context(), params[0], params[1])
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// GetReview handles GET /reviews/review/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	review, err := h.svc.GetReview(r.Context(), params[0], chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"review": review})
}

// UpdateReview handles PUT /reviews. app_id is optional; the review is
// located by review_id.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id", "review_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	var in ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	review, err := h.svc.UpdateReview(r.Context(), params[0], r.URL.Query().Get("app_id"), params[1], in.fields())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Review updated successfully",
		"review":  review,
	})
}

// DeleteReview handles DELETE /reviews
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id", "app_id", "review_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	if err := h.svc.DeleteReview(r.Context(), params[0], params[1], params[2]); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"message": "Review deleted successfully"})
}

// AnalyzeReviews handles POST /reviews/analyze. Sentence level failures do
// not fail the request; they are listed in the response.
func (h *ReviewHandler) AnalyzeReviews(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	var req analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), params[0], req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	message := "Reviews analyzed successfully"
	if result.Degraded() {
		message = "Reviews analyzed with some sentences or reviews skipped"
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"message":  message,
		"analyzed": len(result.Reviews),
		"degraded": result.Degraded(),
		"failures": result.Failures,
		"missing":  result.Missing,
		"reviews":  result.Reviews,
	})
}
