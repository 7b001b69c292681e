// Package register reports which backend integrations this process talks
// to. It is read-only and safe to call at any time.
package register

import (
	"fmt"
	"reflect"
	"strings"

	"omc/internal/types"
)

// Versioned is anything that can name itself and its version.
type Versioned interface {
	Name() string
	Version() string
}

// Register collects the integrations to report on.
type Register struct {
	product string
	entries []Versioned
	logger  types.Logger
}

// New creates a Register for the product version and integrations. Nil
// entries are allowed and skipped when reporting.
func New(productVersion string, logger types.Logger, entries ...Versioned) *Register {
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Register{product: productVersion, entries: entries, logger: logger}
}

// ReportVersions renders "OMC v{x} | {Name} v{Version}, ...". Unavailable
// integrations are left out; if reading them fails the report degrades to
// the product version alone.
func (r *Register) ReportVersions() (report string) {
	head := "OMC v" + strings.TrimPrefix(r.product, "v")

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("versions register failed", "panic", fmt.Sprint(rec))
			report = head
		}
	}()

	parts := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		if isNil(e) {
			continue
		}
		name, version := e.Name(), e.Version()
		if name == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s v%s", name, strings.TrimPrefix(version, "v")))
	}
	if len(parts) == 0 {
		return head
	}
	return head + " | " + strings.Join(parts, ", ")
}

// isNil catches typed nil pointers stored in the interface.
func isNil(v Versioned) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
