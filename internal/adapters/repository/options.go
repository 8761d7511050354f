package repository

import "github.com/okian/lineup/pkg/logger"

// Option applies a configuration option to a Roster or Synergy store.
type Option func(*settings)

type settings struct {
	path   string
	watch  bool
	logger logger.Logger
}

func newSettings(opts []Option) settings {
	s := settings{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithFile persists the store to a CSV file at path. The file is read on
// construction and rewritten after every mutation. A missing file is an
// empty store.
func WithFile(path string) Option {
	return func(s *settings) {
		s.path = path
	}
}

// WithWatch reloads the store when its file changes on disk. It has no
// effect without WithFile.
func WithWatch(enabled bool) Option {
	return func(s *settings) {
		s.watch = enabled
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
