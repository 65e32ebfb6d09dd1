package tvdb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Digital-Shane/library-tidy/internal/library"
	"github.com/Digital-Shane/library-tidy/internal/provider"
	tvdbapi "github.com/dashotv/tvdb"
	"github.com/dashotv/tvdb/openapi/models/shared"
)

const (
	providerName  = "tvdb"
	statusRunning = "continuing"
)

var imdbIDRe = regexp.MustCompile(`^tt\d+$`)

// Client captures the dashotv client methods used by the resolver.
type Client interface {
	GetSearchResultsByRemoteID(remoteID string) (*tvdbapi.GetSearchResultsByRemoteIDResponse, error)
}

// login opens an authenticated session. Tests replace it.
var login = func(apiKey string) (Client, error) {
	return tvdbapi.Login(apiKey)
}

// Resolver implements provider.Resolver against TheTVDB, which indexes its
// records by IMDb id as a remote id.
type Resolver struct {
	client Client
	apiKey string
}

// New creates an unconfigured resolver.
func New() *Resolver {
	return &Resolver{}
}

// Configure logs in with "api_key".
func (r *Resolver) Configure(config map[string]interface{}) error {
	apiKeyRaw, ok := config["api_key"].(string)
	if !ok {
		return fmt.Errorf("api_key is required")
	}
	apiKey := strings.TrimSpace(apiKeyRaw)
	if apiKey == "" {
		return fmt.Errorf("api_key is required")
	}

	client, err := login(apiKey)
	if err != nil {
		return r.mapError(err)
	}
	r.apiKey = apiKey
	r.client = client
	return nil
}

func (r *Resolver) Resolve(ctx context.Context, id string, kind provider.Kind) (provider.Result, error) {
	if r.client == nil || r.apiKey == "" {
		return provider.Result{}, fmt.Errorf("tvdb resolver not configured")
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

	resp, err := r.client.GetSearchResultsByRemoteID(id)
	if err != nil {
		return provider.Result{}, r.mapError(err)
	}

	var title, year string
	for i := range resp.GetData() {
		hit := &resp.Data[i]
		if kind == provider.KindSeries {
			if s := hit.GetSeries(); s != nil {
				title, year = seriesFields(s)
				break
			}
			continue
		}
		if m := hit.GetMovie(); m != nil {
			title, year = value(m.GetName()), library.ReleaseYear(value(m.GetYear()))
			break
		}
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

func seriesFields(s *shared.SeriesBaseRecord) (title, year string) {
	running := strings.EqualFold(value(s.GetStatus().GetName()), statusRunning)
	year = library.YearSpan(value(s.GetFirstAired()), value(s.GetLastAired()), running)
	if year == "" {
		year = library.ReleaseYear(value(s.GetYear()))
	}
	return value(s.GetName()), year
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
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
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"), strings.Contains(lower, "apikey"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeAuthFailed, Message: "TVDB authentication failed: " + msg}
	case strings.Contains(lower, "429"), strings.Contains(lower, "too many"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeRateLimited, Message: msg, Retry: true, RetryAfter: 5}
	case strings.Contains(lower, "404"), strings.Contains(lower, "not found"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeNotFound, Message: msg}
	case strings.Contains(lower, "503"), strings.Contains(lower, "unavailable"):
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeUnavailable, Message: msg, Retry: true, RetryAfter: 30}
	default:
		return &provider.ProviderError{Provider: providerName, Code: provider.CodeUnknown, Message: msg}
	}
}
