// Package builder runs the construction stages that turn a body configuration into
// scene nodes, physics and volumes.
package builder

import (
	"fmt"
	"log"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/core/domain/service/orbit"
	"orrery/backend/internal/core/port/in/bodyloading"
	"orrery/backend/internal/core/port/out/assets"
	"orrery/backend/internal/core/port/out/scene"
	"orrery/backend/internal/world"
)

// Stage is one construction step. Applies decides from the configuration alone;
// a stage that does not apply is skipped silently.
type Stage interface {
	Name() string
	Applies(ctx *Context) bool
	Build(ctx *Context) error
}

// Pipeline is the ordered stage list.
// Generation runs Generate, Shared, Finalize; an in-place update runs only Shared.
type Pipeline struct {
	Generate []Stage
	Shared   []Stage
	Finalize []Stage
}

// Context is the construction state shared by the stages of one body
type Context struct {
	Descriptor *entity.BodyDescriptor
	Config     *entity.BodyConfig
	Body       *world.Body
	Pass       int
	// Updating is true on the in-place update path
	Updating bool

	Root      world.NodeID
	Sector    world.NodeID
	Water     world.NodeID
	Primary   *world.Body
	Placement orbit.Placement

	Host     scene.Host
	Deferrer scene.Deferrer
	Assets   assets.Provider
	Loader   bodyloading.LoadPort
	Quantum  bodyloading.QuantumPort
	Logger   *log.Logger
}

func (c *Context) Name() string {
	return c.Config.Name
}

// LoadAsset resolves an asset against the body's owner namespace
func (c *Context) LoadAsset(bundle, path string) (*scene.AssetNode, error) {
	return c.Assets.LoadAsset(c.Descriptor.Owner, bundle, path)
}

// Warnf logs a body-scoped warning
func (c *Context) Warnf(format string, args ...interface{}) {
	c.Logger.Printf("[Builder] WARNING: [%s] %s", c.Name(), fmt.Sprintf(format, args...))
}
