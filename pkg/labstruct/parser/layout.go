package parser

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ukaji3/labstruct-go/pkg/labstruct/models"
)

// Layout holds the report-specific heuristics that turn a detected grid into
// a frame with canonical columns.
type Layout interface {
	// Name returns the layout name
	Name() string

	// Normalize drops empty and padding columns. An empty result means the
	// table should be skipped.
	Normalize(f models.Frame) models.Frame

	// Reconcile settles column names and promotes the working header.
	Reconcile(f models.Frame) (models.Frame, error)
}

// VendorLayout handles reports whose table detection pads the grid with
// repeated trailing columns and sometimes misreads a data row as the header.
type VendorLayout struct{}

func (VendorLayout) Name() string { return "vendor" }

func (VendorLayout) Normalize(f models.Frame) models.Frame {
	if f.Empty() {
		return models.Frame{}
	}
	f = DropEmptyColumns(f)
	if f.Empty() {
		return models.Frame{}
	}
	return DropJunkColumns(f)
}

func (VendorLayout) Reconcile(f models.Frame) (models.Frame, error) {
	return ReconcileHeader(f)
}

// PlainLayout trusts the detected header and only drops empty columns. The
// detected column labels double as the working header, so visit labels are
// read from them.
type PlainLayout struct{}

func (PlainLayout) Name() string { return "plain" }

func (PlainLayout) Normalize(f models.Frame) models.Frame {
	if f.Empty() {
		return models.Frame{}
	}
	return DropEmptyColumns(f)
}

func (PlainLayout) Reconcile(f models.Frame) (models.Frame, error) {
	if len(f.Rows) == 0 {
		return models.Frame{}, nil
	}
	names := make([]string, len(f.Columns))
	header := make([]models.Cell, len(f.Columns))
	for i, name := range f.Columns {
		names[i] = strings.ReplaceAll(name, "\n", " ")
		header[i] = models.Text(name)
	}
	return models.Frame{Columns: names, Header: header, Rows: f.Rows}, nil
}

var (
	layoutsMu sync.RWMutex
	layouts   = map[string]Layout{}
)

// RegisterLayout makes a layout available by name.
func RegisterLayout(l Layout) {
	layoutsMu.Lock()
	defer layoutsMu.Unlock()
	layouts[l.Name()] = l
}

// GetLayout returns the named layout.
func GetLayout(name string) (Layout, error) {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()
	l, ok := layouts[name]
	if !ok {
		return nil, fmt.Errorf("unknown layout %q", name)
	}
	return l, nil
}

// Layouts returns the registered layout names, sorted.
func Layouts() []string {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterLayout(VendorLayout{})
	RegisterLayout(PlainLayout{})
}
