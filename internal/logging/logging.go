package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the optional rotating file sink.
type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a logger writing to stdout, and also to a rotating file when
// opts.File is set. The returned closer flushes and closes that file.
func New(prefix string, opts Options) (*log.Logger, io.Closer, error) {
	return newLogger(os.Stdout, prefix, opts)
}

func newLogger(stdout io.Writer, prefix string, opts Options) (*log.Logger, io.Closer, error) {
	flags := log.LstdFlags | log.LUTC | log.Lshortfile
	if opts.File == "" {
		return log.New(stdout, prefix, flags), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, nil, err
	}
	rot := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    orDefault(opts.MaxSizeMB, 50),
		MaxBackups: orDefault(opts.MaxBackups, 3),
		MaxAge:     orDefault(opts.MaxAgeDays, 7),
	}
	return log.New(io.MultiWriter(stdout, rot), prefix, flags), rot, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
