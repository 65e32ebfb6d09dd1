package provider

//go:generate mockgen -source=interface.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
)

// Kind selects which catalog entry type an identifier is resolved as.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Result is the authoritative naming data for one catalog entry.
type Result struct {
	Title string
	Year  string
}

// Resolver maps a stable IMDb identifier to its catalog title and year.
// Implementations return errors matching ErrNotFound, ErrQuotaExceeded or
// ErrAuth where they apply.
type Resolver interface {
	Resolve(ctx context.Context, id string, kind Kind) (Result, error)
}

// Prober reports the pixel height of the first video stream of a file.
type Prober interface {
	Height(ctx context.Context, path string) (int, error)
}
