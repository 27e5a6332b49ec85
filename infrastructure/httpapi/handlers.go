package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/lb-conn/xml-signer/application/models"
)

const (
	messageSignedXMLRequired = "Signed XML is required"
	messageSignatureValid    = "Signature is valid"
	messageSignatureInvalid  = "Signature is invalid"
)

func postSignRoute(s *Server, g *echo.Group) *echo.Route {
	return g.POST("/sign", postSignHandler(s))
}

func postSignHandler(s *Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var body models.SignRequest
		if err := c.Echo().JSONSerializer.Deserialize(c, &body); err != nil {
			log.Ctx(ctx).Debug().Err(err).Msg("Invalid sign request body")
			return c.JSON(http.StatusInternalServerError, models.NewFailureResult(models.ValidationError("Invalid request body")))
		}

		log.Ctx(ctx).Info().Str("request", body.String()).Msg("Received sign request")

		result := s.App.Sign(ctx, body)
		return c.JSON(signStatus(result), result)
	}
}

// signStatus: 200 em sucesso, 500 em qualquer falha, inclusive de validação.
func signStatus(result *models.SignResult) int {
	if result.Success {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

func postVerifyRoute(s *Server, g *echo.Group) *echo.Route {
	return g.POST("/verify", postVerifyHandler(s))
}

func postVerifyHandler(s *Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var body VerifyPayload
		if err := c.Echo().JSONSerializer.Deserialize(c, &body); err != nil || strings.TrimSpace(body.SignedXML) == "" {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Success: false,
				Message: messageSignedXMLRequired,
			})
		}

		valid := s.App.Verify(ctx, []byte(body.SignedXML))

		message := messageSignatureInvalid
		if valid {
			message = messageSignatureValid
		}
		return c.JSON(http.StatusOK, VerifyResponse{
			Success: true,
			Valid:   valid,
			Message: message,
		})
	}
}
