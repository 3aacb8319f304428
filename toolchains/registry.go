// Package toolchains holds the bootstrap recipes for the supported target
// ecosystems, keyed by name.
package toolchains

import (
	"fmt"
	"sync"

	"github.com/calloway/weatherline"
)

// Options carries the per-toolchain knobs a factory may honor. Zero values
// mean "use the toolchain's defaults".
type Options struct {
	Interpreter string // interpreter binary used to create the environment
}

// Factory builds a configured [weatherline.Toolchain] from options.
type Factory func(opts Options) (weatherline.Toolchain, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register ties a factory to a toolchain name and should be called for each
// supported toolchain during app init
func Register(name string, factory Factory) {
	mu.Lock()
	factories[name] = factory
	mu.Unlock()
}

// New picks the right factory based on the toolchain name.
// All expected toolchains should be registered with [Register]
// before calling this function.
func New(name string, opts Options) (weatherline.Toolchain, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no toolchain registered for %q", name)
	}
	return f(opts)
}
