package httpapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const messageRequestError = "Error processing request"

// HTTPErrorHandler renderiza qualquer erro não tratado pelos handlers como ErrorResponse.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprint(he.Message)
	}

	logger := log.Ctx(c.Request().Context())
	if code >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", code).Msg(messageRequestError)
	} else {
		logger.Debug().Err(err).Int("status", code).Msg(messageRequestError)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, ErrorResponse{
			Success: false,
			Message: messageRequestError,
			Error:   message,
		})
	}
	if writeErr != nil {
		logger.Error().Err(writeErr).Msg("Failed to write error response")
	}
}
