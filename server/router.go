package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calloway/weatherline/internal/util"
	"github.com/calloway/weatherline/signature"
)

// Router wraps a configured Gin engine and exposes it as an http.Handler.
type Router struct {
	engine *gin.Engine
}

// NewRouter constructs a Router with the full middleware chain and all
// routes registered. The middleware order:
//  1. Recovery — panic → 500
//  2. RequestID — X-Request-ID per request
//  3. RequestLogger — structured request/response logging
//
// The voice webhook on /weather is reachable without a signature; Twilio's
// geographic caller data is not secret and the handler only ever answers
// with spoken weather.
func NewRouter(hotline hotlineService, authToken string) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(Recovery(util.GetLogger("http")))
	engine.Use(RequestID())
	engine.Use(RequestLogger(util.GetLogger("http")))

	h := &Handler{
		hotline:   hotline,
		validator: signature.NewValidator(authToken),
	}

	engine.POST("/twiml", h.TwiML)
	engine.POST("/decorator_test", TwilioAuth(authToken), h.DecoratorTest)
	engine.POST("/weather", h.Weather)

	engine.GET("/healthz", h.Healthz)

	return &Router{engine: engine}
}

// Handler returns the underlying http.Handler for use with net/http servers.
func (r *Router) Handler() http.Handler {
	return r.engine
}
