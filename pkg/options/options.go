// Package options holds the functional options shared by the client and
// session packages.
package options

import (
	"context"
	"log/slog"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// DefaultReadTimeout bounds a single HID report read. A device that
// stays silent past it is treated as unresponsive.
const DefaultReadTimeout = 3 * time.Second

type Options struct {
	Logger       *slog.Logger
	EncMode      cbor.EncMode
	DecMode      cbor.DecMode
	Context      context.Context
	Paths        []string
	ReadTimeout  time.Duration
	UseNamedPipe bool
}

type Option func(*Options)

func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func WithEncMode(encMode cbor.EncMode) Option {
	return func(opts *Options) {
		opts.EncMode = encMode
	}
}

func WithDecMode(decMode cbor.DecMode) Option {
	return func(opts *Options) {
		opts.DecMode = decMode
	}
}

func WithContext(ctx context.Context) Option {
	return func(opts *Options) {
		opts.Context = ctx
	}
}

func WithPaths(paths ...string) Option {
	return func(opts *Options) {
		opts.Paths = paths
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(opts *Options) {
		opts.ReadTimeout = d
	}
}

func WithUseNamedPipes() Option {
	return func(opts *Options) {
		opts.UseNamedPipe = true
	}
}

func NewOptions(opts ...Option) *Options {
	encMode, _ := cbor.CTAP2EncOptions().EncMode()

	// Responses are decoded strictly: CTAP2 canonical CBOR has no
	// indefinite-length items, and a duplicate map key is malformed.
	decMode, _ := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()

	oo := &Options{
		Logger:      slog.Default(),
		EncMode:     encMode,
		DecMode:     decMode,
		Context:     context.Background(),
		ReadTimeout: DefaultReadTimeout,
	}

	for _, opt := range opts {
		opt(oo)
	}

	return oo
}
