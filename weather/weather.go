// Package weather wraps the OpenWeatherMap geocoding and current-weather
// APIs behind a circuit breaker and a short-lived response cache.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/sony/gobreaker"

	"github.com/calloway/weatherline/config"
	"github.com/calloway/weatherline/internal/states"
	"github.com/calloway/weatherline/internal/util"
)

// geocodeLimit caps the number of candidates the geocoder returns; ambiguous
// city names can resolve to many places before the state filter is applied.
const geocodeLimit = 100

// ErrLocationNotFound means the caller's location could not be resolved to a
// geocoder match in their state.
var ErrLocationNotFound = errors.New("location not found")

// StatusError reports a non-OK response from an upstream API; the status
// code is relayed to the caller.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openweathermap returned status %d", e.Code)
}

// Location is one geocoder candidate.
type Location struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// Report is the resolved weather for a caller's location. City is the city
// as the caller reported it; State is the full state name the geocoder
// matched on.
type Report struct {
	City  string
	State string
	TempF float64
}

type cacheEntry struct {
	report  Report
	expires time.Time
}

type currentResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}

// Client calls OpenWeatherMap. Successful location reports are cached for
// the configured TTL, and all upstream calls share one circuit breaker.
type Client struct {
	http     *http.Client
	apiKey   string
	geoBase  string
	dataBase string
	cb       *gobreaker.CircuitBreaker
	cache    *xsync.Map[string, cacheEntry]
	ttl      time.Duration
	now      func() time.Time
	logger   util.Logger
}

// NewClient creates a Client from the weather configuration.
func NewClient(opts config.WeatherOptions) *Client {
	return &Client{
		http:     &http.Client{Timeout: opts.RequestTimeout},
		apiKey:   opts.APIKey,
		geoBase:  opts.GeoBaseURL,
		dataBase: opts.DataBaseURL,
		cb:       newBreaker("openweathermap"),
		cache:    xsync.NewMap[string, cacheEntry](),
		ttl:      opts.CacheTTL,
		now:      time.Now,
		logger:   util.GetLogger("weather"),
	}
}

// Geocode resolves a "city,state,country" query to coordinate candidates.
func (c *Client) Geocode(ctx context.Context, city, state, country string) ([]Location, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s,%s,%s", city, state, country))
	q.Set("limit", strconv.Itoa(geocodeLimit))
	q.Set("appid", c.apiKey)

	var locs []Location
	if err := c.getJSON(ctx, c.geoBase+"/geo/1.0/direct?"+q.Encode(), &locs); err != nil {
		return nil, err
	}
	return locs, nil
}

// Current fetches the current temperature in degrees Fahrenheit for the
// given coordinates.
func (c *Client) Current(ctx context.Context, lat, lon float64) (float64, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("units", "imperial")
	q.Set("appid", c.apiKey)

	var cur currentResponse
	if err := c.getJSON(ctx, c.dataBase+"/data/2.5/weather?"+q.Encode(), &cur); err != nil {
		return 0, err
	}
	return cur.Main.Temp, nil
}

// CurrentByLocation resolves the caller's city and state to coordinates and
// returns the current weather there. The geocoder reports full state names
// while callers usually carry USPS abbreviations, so candidates are matched
// against the normalized state name. Returns ErrLocationNotFound when the
// state is unknown or no candidate lies in it.
func (c *Client) CurrentByLocation(ctx context.Context, city, state, country string) (Report, error) {
	st, ok := states.Lookup(state)
	if !ok {
		return Report{}, fmt.Errorf("%w: unknown state %q", ErrLocationNotFound, state)
	}

	key := cacheKey(city, st.Abbr, country)
	if hit, ok := c.cache.Load(key); ok && c.now().Before(hit.expires) {
		c.logger.Debug().Str("key", key).Msg("Weather cache hit")
		return hit.report, nil
	}

	locs, err := c.Geocode(ctx, city, state, country)
	if err != nil {
		return Report{}, err
	}

	var match *Location
	for i := range locs {
		if locs[i].State == st.Name {
			match = &locs[i]
			break
		}
	}
	if match == nil {
		return Report{}, fmt.Errorf("%w: no geocoder match for %s, %s", ErrLocationNotFound, city, st.Name)
	}

	temp, err := c.Current(ctx, match.Lat, match.Lon)
	if err != nil {
		return Report{}, err
	}

	report := Report{City: city, State: match.State, TempF: temp}
	c.cache.Store(key, cacheEntry{report: report, expires: c.now().Add(c.ttl)})
	return report, nil
}

// getJSON performs a GET through the circuit breaker and decodes the
// response body into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	_, err := c.cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling openweathermap: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			c.logger.Warn().Int("status", resp.StatusCode).Msg("Upstream returned non-OK status")
			return nil, &StatusError{Code: resp.StatusCode}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
		return nil, nil
	})
	return err
}

func cacheKey(city, stateAbbr, country string) string {
	return strings.ToLower(city + "," + stateAbbr + "," + country)
}
