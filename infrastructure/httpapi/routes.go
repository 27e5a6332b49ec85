package httpapi

import (
	"github.com/labstack/echo/v4"
)

// registerRoutes registra as rotas na raiz e, quando configurado, sob o BasePath.
func registerRoutes(s *Server) []*echo.Route {
	groups := []*echo.Group{s.Router.Root}
	if s.Router.APIV1 != nil {
		groups = append(groups, s.Router.APIV1)
	}

	var routes []*echo.Route
	for _, g := range groups {
		routes = append(routes,
			postSignRoute(s, g),
			postVerifyRoute(s, g),
			getHealthRoute(s, g),
			getInfoRoute(s, g),
		)
	}

	if s.MetricsHandler != nil {
		routes = append(routes, s.Router.Root.GET("/metrics", echo.WrapHandler(s.MetricsHandler)))
	}
	return routes
}
