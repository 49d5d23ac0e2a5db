package api

import (
	"errors"
	"net/http"

	"oceaneye/internal/catalog"
	"oceaneye/internal/identification"
)

// HTTPStatus maps a settled report to the response status code.
func HTTPStatus(report identification.Report) int {
	switch report.Outcome {
	case identification.OutcomeFound, identification.OutcomeNotFound:
		return http.StatusOK
	case identification.OutcomeEncodingError:
		var maxErr *http.MaxBytesError
		if errors.As(report.Err, &maxErr) {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	case identification.OutcomeDecodeError:
		return http.StatusBadGateway
	case identification.OutcomeTransportError:
		if errors.Is(report.Err, catalog.ErrSuperseded) {
			return http.StatusConflict
		}
		var transportErr *catalog.TransportError
		if errors.As(report.Err, &transportErr) && transportErr.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
