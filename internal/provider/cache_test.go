package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type countingResolver struct {
	calls   map[string]int
	results map[string]Result
	err     error
}

func (r *countingResolver) Resolve(_ context.Context, id string, kind Kind) (Result, error) {
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[cacheKey(kind, id)]++
	if r.err != nil {
		return Result{}, r.err
	}
	return r.results[id], nil
}

func TestCachedResolverMemoizesSuccess(t *testing.T) {
	t.Parallel()

	next := &countingResolver{results: map[string]Result{
		"tt0052357": {Title: "Vertigo", Year: "1958"},
	}}
	cached := NewCachedResolver(next, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cached.Resolve(ctx, "tt0052357", KindMovie)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if diff := cmp.Diff(Result{Title: "Vertigo", Year: "1958"}, got); diff != "" {
			t.Fatalf("Resolve() mismatch (-want +got):\n%s", diff)
		}
	}

	if got := next.calls["movie:tt0052357"]; got != 1 {
		t.Errorf("wrapped resolver called %d times, want 1", got)
	}
	if got := cached.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestCachedResolverKeysByKind(t *testing.T) {
	t.Parallel()

	next := &countingResolver{results: map[string]Result{"tt1": {Title: "X", Year: "2000"}}}
	cached := NewCachedResolver(next, 0)

	_, _ = cached.Resolve(context.Background(), "tt1", KindMovie)
	_, _ = cached.Resolve(context.Background(), "tt1", KindSeries)

	if next.calls["movie:tt1"] != 1 || next.calls["series:tt1"] != 1 {
		t.Errorf("calls = %v, want one per kind", next.calls)
	}
}

func TestCachedResolverDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	quota := &ProviderError{Provider: "omdb", Code: CodeRateLimited, Message: "Request limit reached!"}
	next := &countingResolver{err: quota}
	cached := NewCachedResolver(next, 0)

	for i := 0; i < 2; i++ {
		_, err := cached.Resolve(context.Background(), "tt2", KindSeries)
		if !errors.Is(err, ErrQuotaExceeded) {
			t.Fatalf("Resolve() error = %v, want ErrQuotaExceeded", err)
		}
	}
	if got := next.calls["series:tt2"]; got != 2 {
		t.Errorf("wrapped resolver called %d times, want 2", got)
	}
	if cached.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cached.Len())
	}
}

func TestProviderErrorIs(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		code   string
		target error
		want   bool
	}{
		"not found":    {CodeNotFound, ErrNotFound, true},
		"rate limited": {CodeRateLimited, ErrQuotaExceeded, true},
		"auth":         {CodeAuthFailed, ErrAuth, true},
		"wrong target": {CodeNotFound, ErrQuotaExceeded, false},
		"unknown":      {CodeUnknown, ErrNotFound, false},
	}
	for name, tc := range tests {
		err := error(&ProviderError{Code: tc.code, Message: name})
		if got := errors.Is(err, tc.target); got != tc.want {
			t.Errorf("%s: errors.Is() = %v, want %v", name, got, tc.want)
		}
	}
}
