// Package hotline implements the voice side of the weather hotline:
// resolving where a caller is and phrasing the forecast they hear.
package hotline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/calloway/weatherline/internal/states"
	"github.com/calloway/weatherline/internal/util"
	"github.com/calloway/weatherline/weather"
)

// CallerLocation is the location Twilio reports for an incoming call.
type CallerLocation struct {
	City    string
	State   string
	Country string
}

// WeatherService is the slice of the weather client the hotline needs.
type WeatherService interface {
	CurrentByLocation(ctx context.Context, city, state, country string) (weather.Report, error)
}

var _ WeatherService = (*weather.Client)(nil)

// Service answers hotline calls.
type Service struct {
	weather WeatherService
	rng     func(n int) int
	logger  util.Logger
}

// New creates a Service backed by the given weather source.
func New(weather WeatherService) *Service {
	return &Service{
		weather: weather,
		rng:     rand.IntN,
		logger:  util.GetLogger("hotline"),
	}
}

// ResolveLocation fills in a caller location. Twilio does not always carry
// the caller's city and state; when any field is blank the whole location
// falls back to a random state capital.
func (s *Service) ResolveLocation(loc CallerLocation) CallerLocation {
	if loc.City != "" && loc.State != "" && loc.Country != "" {
		return loc
	}

	all := states.All()
	st := all[s.rng(len(all))]
	s.logger.Debug().Str("state", st.Name).Msg("Caller location unavailable, picking a capital")
	return CallerLocation{City: st.Capital, State: st.Name, Country: "US"}
}

// Answer resolves the caller's location and returns the spoken weather
// report for it.
func (s *Service) Answer(ctx context.Context, loc CallerLocation) (string, error) {
	loc = s.ResolveLocation(loc)

	report, err := s.weather.CurrentByLocation(ctx, loc.City, loc.State, loc.Country)
	if err != nil {
		return "", err
	}
	return Greeting(report), nil
}

// Greeting renders the spoken response for a weather report.
func Greeting(r weather.Report) string {
	temp := strconv.FormatFloat(r.TempF, 'f', -1, 64)
	return fmt.Sprintf("Thank you for calling the weather hotline. The temperature in %s, %s is %s degrees.",
		r.City, r.State, temp)
}
