package api

import (
	"errors"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/internal/usecase"
	xhttp "FinLiquidity/pkg/http"
)

// toAppError maps domain failures onto HTTP errors. Unknown errors become 500.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrSourceUnavailable):
		return xhttp.BadGatewayError("ERR_SOURCE_UNAVAILABLE", "data source unavailable").WithError(err)
	case errors.Is(err, models.ErrMalformedData):
		return xhttp.BadGatewayError("ERR_MALFORMED_DATA", "data source returned malformed data").WithError(err)
	case errors.Is(err, models.ErrInsufficientRange):
		return xhttp.UnprocessableError("at least two complete rows are required; choose an earlier start").WithError(err)
	case errors.Is(err, models.ErrZeroAnchor):
		return xhttp.UnprocessableError("series is zero at the anchor date").WithError(err)
	case errors.Is(err, models.ErrAnchorUnspecified):
		return xhttp.BadRequestError("ERR_ANCHOR", "anchor", "anchor must be first or last").
			WithParam("options", []string{"first", "last"}).WithError(err)
	case errors.Is(err, models.ErrPricesDisabled):
		return xhttp.ServiceUnavailableError("ERR_PRICES_DISABLED", "live prices are not configured").WithError(err)
	case errors.Is(err, models.ErrUnknownAsset):
		return xhttp.BadRequestError("ERR_UNKNOWN_ASSET", "asset", err.Error()).WithError(err)
	case errors.Is(err, models.ErrUnknownComponent):
		return xhttp.BadRequestError("ERR_UNKNOWN_COMPONENT", "label", err.Error()).WithError(err)
	case errors.Is(err, models.ErrStartOutOfRange), errors.Is(err, usecase.ErrInvalidInput):
		return xhttp.BadRequestError("ERR_START", "start", err.Error()).WithError(err)
	default:
		return xhttp.InternalError("something went wrong").WithError(err)
	}
}
