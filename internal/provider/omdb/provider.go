package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/provider"
	"github.com/Digital-Shane/omdb"
)

const (
	providerName   = "omdb"
	defaultTimeout = 10 * time.Second
)

var imdbIDRe = regexp.MustCompile(`^tt\d+$`)

// Resolver implements provider.Resolver against the OMDb API.
type Resolver struct {
	client     *omdb.Client
	httpClient *http.Client
	apiKey     string
	timeout    time.Duration
}

// New creates an unconfigured resolver.
func New() *Resolver {
	return &Resolver{timeout: defaultTimeout}
}

// Configure applies configuration to the resolver. Recognized keys are
// "api_key" (required), "timeout" as a time.Duration and "timeout_seconds".
func (r *Resolver) Configure(config map[string]interface{}) error {
	apiKeyRaw, ok := config["api_key"].(string)
	if !ok {
		return fmt.Errorf("api_key is required")
	}

	apiKey := strings.TrimSpace(apiKeyRaw)
	if apiKey == "" {
		return fmt.Errorf("api_key is required")
	}

	if seconds, ok := config["timeout_seconds"].(int); ok && seconds > 0 {
		r.timeout = time.Duration(seconds) * time.Second
	}
	if d, ok := config["timeout"].(time.Duration); ok && d > 0 {
		r.timeout = d
	}

	// Allow overriding the HTTP client before configuration (useful for tests).
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: r.timeout}
	}

	r.apiKey = apiKey
	r.client = omdb.NewClient(r.apiKey, r.httpClient)

	return nil
}

// Resolve looks id up as the given kind and returns a sanitized title and a
// year in library form.
func (r *Resolver) Resolve(ctx context.Context, id string, kind provider.Kind) (provider.Result, error) {
	if r.client == nil || r.apiKey == "" {
		return provider.Result{}, fmt.Errorf("omdb resolver not configured")
	}
	if !imdbIDRe.MatchString(id) {
		return provider.Result{}, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  fmt.Sprintf("invalid imdb id %q", id),
		}
	}
	if err := ctx.Err(); err != nil {
		return provider.Result{}, err
	}

	query := omdb.QueryData{ImdbID: id}
	if kind == provider.KindSeries {
		query.SearchType = "series"
	}

	result, err := r.client.SearchByImdbID(query)
	if err != nil {
		return provider.Result{}, r.mapError(err)
	}

	var title, year string
	switch v := result.(type) {
	case omdb.MovieResult:
		title, year = v.Title, omdb.FirstYear(v.Year)
	case *omdb.MovieResult:
		title, year = v.Title, omdb.FirstYear(v.Year)
	case omdb.SeriesResult:
		title, year = v.Title, library.NormalizeYearRange(v.Year)
	case *omdb.SeriesResult:
		title, year = v.Title, library.NormalizeYearRange(v.Year)
	default:
		return provider.Result{}, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  fmt.Sprintf("%s %s not found", kind, id),
		}
	}

	title, err = library.SanitizeTitle(title)
	if err != nil {
		return provider.Result{}, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  fmt.Sprintf("%s %s: %v", kind, id, err),
		}
	}
	if year == "" {
		return provider.Result{}, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  fmt.Sprintf("%s %s has no year", kind, id),
		}
	}
	return provider.Result{Title: title, Year: year}, nil
}

func (r *Resolver) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "missing omdb api key"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "OMDb authentication failed: " + msg,
			Retry:    false,
		}
	case strings.Contains(lower, "not found"), strings.Contains(lower, "incorrect imdb id"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  msg,
			Retry:    false,
		}
	case strings.Contains(lower, "limit reached"), strings.Contains(lower, "too many requests"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    msg,
			Retry:      true,
			RetryAfter: 5,
		}
	default:
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeUnknown,
			Message:  msg,
			Retry:    false,
		}
	}
}
