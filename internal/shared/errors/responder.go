package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

const (
	// ContentTypeProblemJSON is the media type for Problem Details responses.
	ContentTypeProblemJSON = "application/problem+json"
	// HeaderRequestID is echoed into every problem as the requestId extension.
	HeaderRequestID = "X-Request-ID"
)

// ErrorMapper maps application errors to a ProblemDetail.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder sends Problem Details, resolving errors through its mappers in order.
type ChainedResponder struct {
	// BaseURI is prepended to relative problem type URIs.
	BaseURI string
	mappers []ErrorMapper
}

// NewChainedResponder creates a responder with custom error mappers.
func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{BaseURI: baseURI, mappers: mappers}
}

// Respond sends a ProblemDetail response with proper content type.
func (r *ChainedResponder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	if id := c.Writer.Header().Get(HeaderRequestID); id != "" {
		problem = problem.WithExtension("requestId", id)
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// Resolve runs the mapper chain and falls back to an internal error.
func (r *ChainedResponder) Resolve(err error) ProblemDetail {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			return problem
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	return ErrInternal.WithDetail(err.Error())
}

// RespondError resolves err and responds.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	r.Respond(c, r.Resolve(err))
}
