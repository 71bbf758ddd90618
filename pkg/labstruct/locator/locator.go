// Package locator finds table grids in PDF documents through pluggable
// layout engines.
package locator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ukaji3/labstruct-go/internal/logger"
	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

var log = logger.GetLogger("locator")

// ErrUnknownEngine indicates no engine is registered under the requested name.
var ErrUnknownEngine = errors.New("unknown layout engine")

// ErrEmptyDocument indicates a document with no content bytes.
var ErrEmptyDocument = errors.New("empty document")

// Engine opens documents for table detection.
type Engine interface {
	// Name returns the engine name
	Name() string

	// Open parses content as a document.
	Open(content []byte) (Document, error)
}

// Document is an opened document whose pages can be searched for tables.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// FindTables returns the tables detected on a 0-based page, in detection order.
	FindTables(page int) ([]models.RawTable, error)

	// Close releases the resources held by the document.
	Close() error
}

// EngineFactory builds an engine from detection settings.
type EngineFactory func(cfg Config) Engine

var (
	enginesMu sync.RWMutex
	engines   = map[string]EngineFactory{}
)

// Register makes an engine factory available by name.
func Register(name string, factory EngineFactory) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	engines[name] = factory
}

// Get builds the named engine.
func Get(name string, cfg Config) (Engine, error) {
	enginesMu.RLock()
	factory, ok := engines[name]
	enginesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownEngine, name, strings.Join(Names(), ", "))
	}
	return factory(cfg), nil
}

// Names returns the registered engine names, sorted.
func Names() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(EngineTabula, func(cfg Config) Engine { return NewTabulaEngine(cfg) })
	Register(EngineRows, func(cfg Config) Engine { return NewRowsEngine(cfg) })
}

// textCell turns extracted text into a cell; blank text is missing.
func textCell(s string) models.Cell {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Missing
	}
	return models.Text(s)
}
