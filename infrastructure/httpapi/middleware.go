package httpapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextLogger coloca no contexto da requisição um logger com o request_id,
// recuperável com log.Ctx, e registra uma linha por requisição.
func contextLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			logger := log.With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

			if err := next(c); err != nil {
				c.Error(err)
			}

			logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
			return nil
		}
	}
}
