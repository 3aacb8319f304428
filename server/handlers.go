package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"
	"github.com/twilio/twilio-go/twiml"

	"github.com/calloway/weatherline/hotline"
	"github.com/calloway/weatherline/signature"
	"github.com/calloway/weatherline/weather"
)

// hotlineService is the subset of *hotline.Service used by the HTTP
// handlers. Declaring it as an interface allows test doubles to be injected.
type hotlineService interface {
	Answer(ctx context.Context, loc hotline.CallerLocation) (string, error)
}

// Handler holds the dependencies shared across all HTTP handlers.
type Handler struct {
	hotline   hotlineService
	validator *signature.Validator
}

// validatedTwiML is served when the hand-rolled signature check passes.
// Built by hand on purpose; this route walks the signing scheme end to end
// without the helper library.
const validatedTwiML = "<Response><Say>Huzzah! The Signature has been validated!</Say></Response>"

// TwiML handles POST /twiml. It validates the Twilio signature by hand —
// recompute the HMAC over the public URL and sorted form params, then
// compare against the header — and answers with a fixed TwiML document.
func (h *Handler) TwiML(c *gin.Context) {
	sig := c.GetHeader("X-Twilio-Signature")
	if sig == "" {
		c.String(http.StatusTeapot, "No X-Twilio-Signature. This request likely did not originate from Twilio.")
		return
	}

	params := postParams(c)
	if len(params) == 0 {
		// A signed Twilio webhook always carries form params; an empty
		// form is rejected outright as an extra forgery guard.
		c.String(http.StatusBadRequest, "Bad Request - no form params")
		return
	}

	if !h.validator.Validate(publicURL(c), params, sig) {
		c.String(http.StatusForbidden, "Signature does not match")
		return
	}

	c.Data(http.StatusOK, "application/xml", []byte(validatedTwiML))
}

// DecoratorTest handles POST /decorator_test. Signature checking happens in
// the TwilioAuth middleware; the handler only renders its TwiML, this time
// with the helper library.
func (h *Handler) DecoratorTest(c *gin.Context) {
	doc, err := twiml.Voice([]twiml.Element{&twiml.VoiceSay{Message: "Signature is validated!"}})
	if err != nil {
		c.String(http.StatusInternalServerError, "twiml rendering failed")
		return
	}
	c.Data(http.StatusOK, "application/xml", []byte(doc))
}

// Weather handles POST /weather, the voice webhook Twilio calls when the
// hotline number is dialed. The caller's location comes from the webhook
// form; the response is spoken TwiML. Upstream weather failures relay the
// upstream status code.
func (h *Handler) Weather(c *gin.Context) {
	loc := hotline.CallerLocation{
		City:    c.PostForm("CallerCity"),
		State:   c.PostForm("CallerState"),
		Country: c.PostForm("CallerCountry"),
	}

	say, err := h.hotline.Answer(c.Request.Context(), loc)
	if err != nil {
		var statusErr *weather.StatusError
		switch {
		case errors.As(err, &statusErr):
			c.String(statusErr.Code, "Not OK")
		case errors.Is(err, weather.ErrLocationNotFound):
			c.String(http.StatusNotFound, "location not found")
		case errors.Is(err, gobreaker.ErrOpenState):
			c.String(http.StatusServiceUnavailable, "weather upstream unavailable")
		default:
			c.String(http.StatusInternalServerError, "internal error")
		}
		return
	}

	doc, err := twiml.Voice([]twiml.Element{&twiml.VoiceSay{Message: say}})
	if err != nil {
		c.String(http.StatusInternalServerError, "twiml rendering failed")
		return
	}
	c.Data(http.StatusOK, "application/xml", []byte(doc))
}

// Healthz handles GET /healthz — the liveness probe.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// publicURL reconstructs the request URL as Twilio signed it. Twilio signs
// the public https URL even when a tunnel terminates TLS before us, so the
// scheme is forced to https.
func publicURL(c *gin.Context) string {
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return "https://" + host + c.Request.URL.RequestURI()
}

// postParams flattens the POST form the way the signing scheme expects:
// one value per key.
func postParams(c *gin.Context) map[string]string {
	_ = c.Request.ParseForm()
	params := make(map[string]string, len(c.Request.PostForm))
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
