package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lucky-wheel/internal/config"
)

var (
	mu     sync.Mutex
	sink   io.Writer = os.Stdout
	closer io.Closer
)

// Init configures the global zerolog logger from cfg. When LOG_FILE is
// set, output goes to a size-capped file instead of stdout.
func Init(cfg config.LogConfig) {
	mu.Lock()
	defer mu.Unlock()

	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	sink = os.Stdout
	closer = nil
	if path := strings.TrimSpace(cfg.File); path != "" {
		if w, err := newSizeLimitedWriter(path, cfg.MaxMB); err == nil {
			sink = w
			closer = w
		}
	}

	output := sink
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: sink}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the sink Init selected, for handlers that build their
// own logger on top of it.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return sink
}

// Close closes the file sink when one is in use.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		err := closer.Close()
		closer = nil
		return err
	}
	return nil
}
