package ffprobe

import (
	"context"
	"fmt"
	"time"

	"github.com/Digital-Shane/library-tidy/internal/provider"
	"gopkg.in/vansante/go-ffprobe.v2"
)

const (
	providerName   = "ffprobe"
	defaultTimeout = 30 * time.Second
)

// probeFunc defines the function signature used to execute ffprobe.
type probeFunc func(ctx context.Context, path string, extraOpts ...string) (*ffprobe.ProbeData, error)

// Prober implements provider.Prober by running ffprobe on the file.
type Prober struct {
	probe   probeFunc
	timeout time.Duration
}

// New creates a prober that shells out to the ffprobe binary on PATH.
func New() *Prober {
	return &Prober{
		probe:   ffprobe.ProbeURL,
		timeout: defaultTimeout,
	}
}

// Height returns the pixel height of the first video stream in path.
func (p *Prober) Height(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeInvalidRequest,
			Message:  "ffprobe requires a non-empty file path",
		}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	data, err := p.probe(ctx, path)
	if err != nil {
		return 0, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeProbeFailed,
			Message:  fmt.Sprintf("ffprobe failed for %s: %v", path, err),
		}
	}

	var stream *ffprobe.Stream
	if data != nil {
		stream = data.FirstVideoStream()
	}
	if stream == nil {
		return 0, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeProbeFailed,
			Message:  fmt.Sprintf("no video stream in %s", path),
		}
	}
	if stream.Height <= 0 {
		return 0, &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeProbeFailed,
			Message:  fmt.Sprintf("video stream in %s reports no height", path),
		}
	}
	return stream.Height, nil
}
