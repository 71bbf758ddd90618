// Package labstruct extracts lab exam result tables from PDF reports.
package labstruct

import (
	"runtime"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/locator"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/parser"
)

// DefaultMaxFileSize is the largest document ExtractFile reads by default.
const DefaultMaxFileSize int64 = 10 << 20

// Options configures extraction behavior.
type Options struct {
	// Engine names the layout engine used to find tables ("tabula" or "rows").
	Engine string
	// Layout names the heuristics that normalize detected grids ("vendor" or "plain").
	Layout string
	// Detection tunes table detection.
	Detection locator.Config
	// MaxFileSize limits ExtractFile input size in bytes. Zero disables the limit.
	MaxFileSize int64
	// Concurrency bounds the documents ExtractFiles processes at once.
	// Zero or negative means runtime.NumCPU().
	Concurrency int
	// Locator, when set, is used instead of the engine named by Engine.
	Locator locator.Engine
}

// DefaultOptions returns default extraction options.
func DefaultOptions() Options {
	return Options{
		Engine:      locator.EngineTabula,
		Layout:      "vendor",
		Detection:   locator.DefaultConfig(),
		MaxFileSize: DefaultMaxFileSize,
	}
}

// engine returns the configured layout engine.
func (o Options) engine() (locator.Engine, error) {
	if o.Locator != nil {
		return o.Locator, nil
	}
	name := o.Engine
	if name == "" {
		name = locator.EngineTabula
	}
	return locator.Get(name, o.Detection)
}

// layout returns the configured grid heuristics.
func (o Options) layout() (parser.Layout, error) {
	name := o.Layout
	if name == "" {
		name = "vendor"
	}
	return parser.GetLayout(name)
}

// workers returns the effective batch concurrency.
func (o Options) workers() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return runtime.NumCPU()
}
