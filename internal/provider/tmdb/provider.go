package tmdb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/provider"
	"github.com/ryanbradynd05/go-tmdb"
)

const (
	providerName = "tmdb"
	imdbSource   = "imdb_id"
)

var imdbIDRe = regexp.MustCompile(`^tt\d+$`)

// Client is the part of *tmdb.TMDb the resolver uses.
type Client interface {
	GetFind(id, source string, options map[string]string) (*tmdb.FindResults, error)
	GetTvInfo(id int, options map[string]string) (*tmdb.TV, error)
}

// Resolver implements provider.Resolver against The Movie Database. IMDb
// ids are looked up through the find endpoint.
type Resolver struct {
	client   Client
	apiKey   string
	language string
}

// New creates an unconfigured resolver.
func New() *Resolver {
	return &Resolver{language: "en-US"}
}

// Configure applies configuration to the resolver. Recognized keys are
// "api_key" (required) and "language".
func (r *Resolver) Configure(config map[string]interface{}) error {
	apiKeyRaw, ok := config["api_key"].(string)
	if !ok {
		return fmt.Errorf("api_key is required")
	}
	apiKey := strings.TrimSpace(apiKeyRaw)
	if apiKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if lang, ok := config["language"].(string); ok && lang != "" {
		r.language = lang
	}

	r.apiKey = apiKey
	if r.client == nil {
		r.client = tmdb.Init(tmdb.Config{APIKey: apiKey})
	}
	return nil
}

// Resolve looks id up as the given kind. Series years are built from the
// first and last air dates of the show.
func (r *Resolver) Resolve(ctx context.Context, id string, kind provider.Kind) (provider.Result, error) {
	if r.client == nil || r.apiKey == "" {
		return provider.Result{}, fmt.Errorf("tmdb resolver not configured")
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

	options := map[string]string{"language": r.language}
	found, err := r.client.GetFind(id, imdbSource, options)
	if err != nil {
		return provider.Result{}, r.mapError(err)
	}

	var title, year string
	switch {
	case found == nil:
	case kind == provider.KindSeries && len(found.TvResults) > 0:
		show := found.TvResults[0]
		title, year = show.Name, library.ReleaseYear(show.FirstAirDate)
		if err := ctx.Err(); err != nil {
			return provider.Result{}, err
		}
		// The find result only carries the premiere; the run needs details.
		info, err := r.client.GetTvInfo(show.ID, options)
		if err != nil {
			return provider.Result{}, r.mapError(err)
		}
		if info != nil {
			if info.Name != "" {
				title = info.Name
			}
			if span := library.YearSpan(info.FirstAirDate, info.LastAirDate, info.InProduction); span != "" {
				year = span
			}
		}
	case kind == provider.KindMovie && len(found.MovieResults) > 0:
		movie := found.MovieResults[0]
		title, year = movie.Title, library.ReleaseYear(movie.ReleaseDate)
	}

	if title == "" {
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

// mapError classifies go-tmdb errors, which read "Code (<status>): <message>"
// with TMDB status codes rather than HTTP ones.
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
	case strings.Contains(lower, "code (7)"), strings.Contains(lower, "invalid api key"),
		strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  "TMDB authentication failed: " + msg,
		}
	case strings.Contains(lower, "code (34)"), strings.Contains(lower, "could not be found"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Message:  msg,
		}
	case strings.Contains(lower, "code (25)"), strings.Contains(lower, "429"), strings.Contains(lower, "rate limit"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    "TMDB rate limit exceeded",
			Retry:      true,
			RetryAfter: 10,
		}
	case strings.Contains(lower, "503"), strings.Contains(lower, "unavailable"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeUnavailable,
			Message:    "TMDB service unavailable",
			Retry:      true,
			RetryAfter: 30,
		}
	default:
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeUnknown,
			Message:  "TMDB error: " + msg,
		}
	}
}
