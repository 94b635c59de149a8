// Package structures defines the measurement record kinds the viewer knows
// about and the Frame record stored in the hierarchy.
package structures

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownKind indicates a lookup of a kind that was never registered.
var ErrUnknownKind = errors.New("unknown structure kind")

// Column describes a required data column.
type Column struct {
	Name string
	Unit string
}

// Structure describes one record kind.
type Structure struct {
	// Label is the category shown as the group row.
	Label       string
	Description string

	// X and Y name the default plot axes.
	X string
	Y string

	Columns  []Column
	Metadata map[string]string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Structure{}
)

// Register adds s to the registry, replacing any kind with the same label.
func Register(s Structure) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Label] = s
}

// Lookup returns the structure registered under label.
func Lookup(label string) (Structure, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[label]
	if !ok {
		return Structure{}, fmt.Errorf("%w: %s", ErrUnknownKind, label)
	}
	return s, nil
}

// Kinds returns the registered labels, sorted.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for label := range registry {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

func init() {
	Register(Structure{
		Label:       "VSM",
		Description: "Vibrating sample magnetometer: applied field versus magnetic moment",
		X:           "Field",
		Y:           "Moment",
		Columns: []Column{
			{Name: "Field", Unit: "G"},
			{Name: "Moment", Unit: "emu"},
		},
		Metadata: map[string]string{"mass": "1", "density": "1"},
	})
	Register(Structure{
		Label:       "PowderDiffraction",
		Description: "Powder X-ray diffraction: scattering angle versus intensity",
		X:           "TwoTheta",
		Y:           "Intensity",
		Columns: []Column{
			{Name: "TwoTheta", Unit: "deg"},
			{Name: "Intensity", Unit: "counts"},
		},
		Metadata: map[string]string{"wavelength": "1.5406"},
	})
}
