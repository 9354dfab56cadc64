package reviewserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	reviewhttpmapper "github.com/laboquimica/kalium-review/internal/domains/returns/adapters/http/mapper"
	returnsapp "github.com/laboquimica/kalium-review/internal/domains/returns/application"
	returntypes "github.com/laboquimica/kalium-review/internal/domains/returns/application/types"
	returnports "github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

// ReviewAPI exposes the return review view to the console.
type ReviewAPI struct {
	service returnports.Service
}

// NewReviewAPI creates a ReviewAPI backed by the review service.
func NewReviewAPI(service returnports.Service) ReviewAPI {
	return ReviewAPI{service: service}
}

// Get /api/v1/returns/:returnId/review
// Opens the review view with a fresh load
func (api *ReviewAPI) OpenReview(c *gin.Context) {
	ref, ok := viewRef(c)
	if !ok {
		return
	}
	view, err := api.service.Open(c.Request.Context(), ref)
	if err != nil {
		respondViewError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, reviewhttpmapper.FromReviewView(view))
}

// Post /api/v1/returns/:returnId/review/reload
// Re-reads the open view after external changes
func (api *ReviewAPI) ReloadReview(c *gin.Context) {
	ref, ok := viewRef(c)
	if !ok {
		return
	}
	view, err := api.service.Reload(c.Request.Context(), ref)
	if err != nil {
		respondViewError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, reviewhttpmapper.FromReviewView(view))
}

// Delete /api/v1/returns/:returnId/review
// Closes the review view
func (api *ReviewAPI) CloseReview(c *gin.Context) {
	ref, ok := viewRef(c)
	if !ok {
		return
	}
	if err := api.service.Close(c.Request.Context(), ref); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /api/v1/returns/:returnId/items/:itemId/review
// Records the outcome of one delivered item
func (api *ReviewAPI) ReviewItem(c *gin.Context) {
	ref, ok := viewRef(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	var payload reviewhttpmapper.ReviewItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.ReviewItem(c.Request.Context(), returntypes.ReviewItemInput{
		ViewRef:     ref,
		ItemID:      itemID,
		Outcome:     payload.Outcome,
		Observation: payload.Observation,
	})
	if err != nil {
		respondViewError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, reviewhttpmapper.FromReviewView(view))
}

// Post /api/v1/returns/:returnId/approve
// Approves a fully reviewed pending return
func (api *ReviewAPI) ApproveReturn(c *gin.Context) {
	ref, ok := viewRef(c)
	if !ok {
		return
	}
	view, err := api.service.Approve(c.Request.Context(), returntypes.ApproveInput{ViewRef: ref})
	if err != nil {
		respondViewError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, reviewhttpmapper.FromReviewView(view))
}

// Post /api/v1/returns/:returnId/reject
// Rejects a pending return with a reason
func (api *ReviewAPI) RejectReturn(c *gin.Context) {
	ref, ok := viewRef(c)
	if !ok {
		return
	}
	var payload reviewhttpmapper.RejectRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	view, err := api.service.Reject(c.Request.Context(), returntypes.RejectInput{ViewRef: ref, Reason: payload.Reason})
	if err != nil {
		respondViewError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, reviewhttpmapper.FromReviewView(view))
}

// respondViewError attaches the view snapshot so the console can render the inline error.
func respondViewError(c *gin.Context, view *returntypes.ReviewView, err error) {
	problem := responder.Resolve(err)
	if view != nil && view.Error != "" && errors.Is(err, returnsapp.ErrBackend) {
		problem = problem.WithDetail(view.Error)
	}
	if view != nil {
		problem = problem.WithExtension("view", reviewhttpmapper.FromReviewView(view))
	}
	respondProblem(c, problem)
}

func viewRef(c *gin.Context) (returntypes.ViewRef, bool) {
	session, ok := sessionFrom(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, errors.New("no active session"))
		return returntypes.ViewRef{}, false
	}
	returnID, ok := parseIDParam(c, "returnId")
	if !ok {
		return returntypes.ViewRef{}, false
	}
	return returntypes.ViewRef{Operator: session.Operator, ReturnID: returnID}, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s: %w", name, err))
		return 0, false
	}
	if id <= 0 {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s: must be positive", name))
		return 0, false
	}
	return id, true
}
