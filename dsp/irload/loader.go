package irload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-fxgraph/dsp/unit"
)

// ErrNotFound is returned when a locator names no resource.
var ErrNotFound = errors.New("irload: resource not found")

const defaultLimit = 4

// Option configures a FileLoader.
type Option func(*FileLoader)

// WithLimit bounds the number of files decoded at once. Values below 1 are
// ignored.
func WithLimit(n int) Option {
	return func(l *FileLoader) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithLogger sets the logger for per-file decode events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *FileLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// FileLoader decodes WAV impulse responses from a file system. Locators are
// slash-separated paths; a leading slash is ignored.
type FileLoader struct {
	fsys   fs.FS
	limit  int
	logger *slog.Logger
}

// NewFileLoader creates a loader reading from fsys.
func NewFileLoader(fsys fs.FS, opts ...Option) *FileLoader {
	l := &FileLoader{
		fsys:   fsys,
		limit:  defaultLimit,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load decodes every locator in the background and calls done once. The
// first failure cancels the remaining decodes and is reported alone.
func (l *FileLoader) Load(ctx context.Context, locators map[string]string, done func(map[string]*unit.Buffer, error)) {
	go func() {
		done(l.loadAll(ctx, locators))
	}()
}

func (l *FileLoader) loadAll(ctx context.Context, locators map[string]string) (map[string]*unit.Buffer, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)

	var mu sync.Mutex
	out := make(map[string]*unit.Buffer, len(locators))

	for name, loc := range locators {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			buf, err := l.decode(loc)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			l.logger.Debug("impulse response decoded",
				"name", name, "locator", loc, "frames", buf.Len(), "channels", buf.NumChannels())

			mu.Lock()
			out[name] = buf
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (l *FileLoader) decode(loc string) (*unit.Buffer, error) {
	name := strings.TrimLeft(loc, "/")

	f, err := l.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}

		return nil, err
	}
	defer f.Close()

	buf, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, err)
	}

	return buf, nil
}

// MapLoader serves buffers keyed by locator.
type MapLoader map[string]*unit.Buffer

// Load resolves every locator in the background and calls done once.
func (m MapLoader) Load(_ context.Context, locators map[string]string, done func(map[string]*unit.Buffer, error)) {
	go func() {
		out := make(map[string]*unit.Buffer, len(locators))

		for name, loc := range locators {
			buf, ok := m[loc]
			if !ok {
				done(nil, fmt.Errorf("%w: %s", ErrNotFound, loc))

				return
			}

			out[name] = buf
		}

		done(out, nil)
	}()
}
