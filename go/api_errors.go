package reviewserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	operatorsapp "github.com/laboquimica/kalium-review/internal/domains/operators/application"
	returnsapp "github.com/laboquimica/kalium-review/internal/domains/returns/application"
	apierrors "github.com/laboquimica/kalium-review/internal/shared/errors"
)

// backendFailedDetail replaces transport errors the console must not see.
const backendFailedDetail = "No se pudo completar la operación"

var responder = apierrors.NewChainedResponder("",
	mapLoadError,
	mapReviewError,
	mapOperatorError,
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondError sends an RFC 7807 response for a transport-level failure.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	case http.StatusUnauthorized:
		problem = apierrors.ErrUnauthorized.WithDetail(err.Error())
	case http.StatusForbidden:
		problem = apierrors.ErrForbidden.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	respondProblem(c, problem)
}

// respondServiceError runs err through the mapper chain.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func mapLoadError(err error) (apierrors.ProblemDetail, bool) {
	var loadErr *returnsapp.LoadError
	if !errors.As(err, &loadErr) {
		return apierrors.ProblemDetail{}, false
	}
	return apierrors.NewRedirectNotFoundProblem(
		loadErr.Phase.Message,
		loadErr.Phase.RedirectTo,
		loadErr.Phase.RedirectAfter,
	), true
}

func mapReviewError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, returnsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, returnsapp.ErrPrecondition):
		return apierrors.ErrUnprocessable.WithDetail(err.Error()), true
	case errors.Is(err, returnsapp.ErrNotLoaded):
		return apierrors.ErrUnprocessable.WithDetail(err.Error()), true
	case errors.Is(err, returnsapp.ErrBusy), errors.Is(err, returnsapp.ErrClosed):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, returnsapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, returnsapp.ErrBackend):
		return apierrors.ErrBadGateway.WithDetail(returnsapp.RemoteMessage(err, backendFailedDetail)), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapOperatorError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, operatorsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, operatorsapp.ErrAuthentication):
		return apierrors.ErrUnauthorized.WithDetail("Credenciales inválidas"), true
	case errors.Is(err, operatorsapp.ErrUnauthenticated):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
