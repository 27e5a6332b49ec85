package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lb-conn/xml-signer/application/models"
)

const (
	ServiceID          = "xml-signer"
	ServiceName        = "XML Digital Signature Service"
	ServiceVersion     = "1.0.0"
	ServiceDescription = "Digital signature service for XML documents using ICP-Brasil certificates"
)

var supportedFormatLabels = map[string]string{
	models.FormatPKCS12: "PKCS12 (.p12, .pfx)",
	models.FormatJKS:    "JKS (.jks)",
}

func getHealthRoute(_ *Server, g *echo.Group) *echo.Route {
	return g.GET("/health", getHealthHandler)
}

func getHealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "UP",
		Service:   ServiceID,
		Timestamp: time.Now().UnixMilli(),
	})
}

func getInfoRoute(_ *Server, g *echo.Group) *echo.Route {
	return g.GET("/info", getInfoHandler)
}

func getInfoHandler(c echo.Context) error {
	formats := make([]string, 0, len(models.SupportedKeystoreFormats))
	for _, f := range models.SupportedKeystoreFormats {
		formats = append(formats, supportedFormatLabels[f])
	}

	return c.JSON(http.StatusOK, InfoResponse{
		Service:                          ServiceName,
		Version:                          ServiceVersion,
		Description:                      ServiceDescription,
		SupportedAlgorithms:              models.SupportedSignatureMethods,
		SupportedFormats:                 formats,
		SupportedCanonicalizationMethods: models.SupportedCanonicalizationMethods,
	})
}
