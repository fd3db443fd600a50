package builder

import (
	"fmt"
	"log"
	"time"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/core/domain/service/orbit"
	"orrery/backend/internal/core/port/in/bodyloading"
	"orrery/backend/internal/core/port/out/assets"
	"orrery/backend/internal/core/port/out/registry"
	"orrery/backend/internal/core/port/out/scene"
	apperrors "orrery/backend/internal/shared/errors"
	"orrery/backend/internal/telemetry"
	"orrery/backend/internal/world"
)

// Recorder receives build events
type Recorder interface {
	Record(ev telemetry.BuildEvent)
}

type nopRecorder struct{}

func (nopRecorder) Record(telemetry.BuildEvent) {}

// Dependencies are the collaborators shared by every body the orchestrator builds
type Dependencies struct {
	Host     scene.Host
	Deferrer scene.Deferrer
	Assets   assets.Provider
	Registry registry.ObjectRegistry
	Quantum  bodyloading.QuantumPort
	Recorder Recorder
	Logger   *log.Logger
	// DefaultAnchor is the body used when a primary reference cannot be resolved
	DefaultAnchor string
}

// Orchestrator applies the stage pipeline to one body at a time
type Orchestrator struct {
	deps     Dependencies
	pipeline Pipeline
	loader   bodyloading.LoadPort
}

func NewOrchestrator(deps Dependencies, pipeline Pipeline) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.DefaultAnchor == "" {
		deps.DefaultAnchor = "SUN"
	}
	deps.Logger.Printf("[Builder] Using %s", pipeline)
	return &Orchestrator{deps: deps, pipeline: pipeline}
}

// SetLoader connects the queue that stages use to spawn sibling bodies
func (o *Orchestrator) SetLoader(loader bodyloading.LoadPort) {
	o.loader = loader
}

// Generate builds a body that does not exist yet and registers it.
// On a stage failure the body's remaining stages are abandoned; nothing already built is rolled back.
func (o *Orchestrator) Generate(desc *entity.BodyDescriptor, pass int) (*world.Body, error) {
	cfg := desc.Config
	o.deps.Logger.Printf("[Builder] Begin generation sequence of [%s] ...", cfg.Name)

	root := o.deps.Host.CreateNode(entity.NodeName(cfg.Name), 0)
	o.deps.Host.SetActive(root, false)

	ctx := o.newContext(desc, pass)
	ctx.Root = root
	ctx.Body = &world.Body{
		ID:     entity.CanonicalName(cfg.Name),
		Name:   cfg.Name,
		Root:   root,
		IsMoon: cfg.Orbit.IsMoon,
	}
	ctx.Primary = o.resolvePrimary(ctx)
	ctx.Body.Primary = ctx.Primary
	ctx.Body.SphereOfInfluence = SphereOfInfluence(cfg)

	primaryPosition := ctx.Primary.PositionOrZero()
	ctx.Placement = orbit.Solve(cfg.Orbit, primaryPosition, ctx.Primary.Falloff())
	cfg.Orbit = ctx.Placement.Elements

	stages := make([]Stage, 0, len(o.pipeline.Generate)+len(o.pipeline.Shared)+len(o.pipeline.Finalize))
	stages = append(stages, o.pipeline.Generate...)
	stages = append(stages, o.pipeline.Shared...)
	stages = append(stages, o.pipeline.Finalize...)

	if err := o.run(ctx, stages); err != nil {
		return nil, err
	}

	desc.Object = ctx.Body
	o.deps.Host.SetActive(root, true)
	o.deps.Registry.RegisterCustom(ctx.Body)

	o.deps.Logger.Printf("[Builder] Generation of [%s] completed.", cfg.Name)
	return ctx.Body, nil
}

// Update re-applies the shared stages to a body that is already in the world.
// Geometry, placement and physics are left as they are.
func (o *Orchestrator) Update(desc *entity.BodyDescriptor, existing *world.Body, pass int) error {
	o.deps.Logger.Printf("[Builder] Updating existing body %s", existing.ID)

	ctx := o.newContext(desc, pass)
	ctx.Updating = true
	ctx.Body = existing
	ctx.Root = existing.Root
	ctx.Primary = existing.Primary
	ctx.Sector = existing.Sector
	if ctx.Sector == 0 {
		if sector, ok := o.deps.Host.Find(existing.Root, "Sector"); ok {
			ctx.Sector = sector
			existing.Sector = sector
		} else {
			ctx.Sector = existing.Root
		}
	}
	if water, ok := o.deps.Host.Find(ctx.Sector, "Water"); ok {
		ctx.Water = water
	}

	if err := o.run(ctx, o.pipeline.Shared); err != nil {
		return err
	}
	desc.Object = existing
	return nil
}

func (o *Orchestrator) newContext(desc *entity.BodyDescriptor, pass int) *Context {
	return &Context{
		Descriptor: desc,
		Config:     desc.Config,
		Pass:       pass,
		Host:       o.deps.Host,
		Deferrer:   o.deps.Deferrer,
		Assets:     o.deps.Assets,
		Loader:     o.loader,
		Quantum:    o.deps.Quantum,
		Logger:     o.deps.Logger,
	}
}

// resolvePrimary finds the primary body, falling back to the default anchor
func (o *Orchestrator) resolvePrimary(ctx *Context) *world.Body {
	ref := ctx.Config.Orbit.PrimaryBody
	if ref == "" {
		return nil
	}
	if body, ok := o.lookup(ref); ok {
		return body
	}

	err := apperrors.ConfigurationReferencef(ctx.Name(), "could not find primary body %q, defaulting to %s", ref, o.deps.DefaultAnchor)
	o.deps.Logger.Printf("[Builder] WARNING: %v", err)
	o.record(ctx, "", telemetry.StatusWarning, 0, err.Error())

	if body, ok := o.lookup(o.deps.DefaultAnchor); ok {
		return body
	}
	return nil
}

func (o *Orchestrator) lookup(name string) (*world.Body, bool) {
	if body, ok := o.deps.Registry.Lookup(entity.CanonicalName(name)); ok {
		return body, true
	}
	return o.deps.Registry.Lookup(entity.CompactName(name))
}

// run executes stages in order, each at most once
func (o *Orchestrator) run(ctx *Context, stages []Stage) error {
	done := make(map[string]bool, len(stages))

	for _, stage := range stages {
		name := stage.Name()
		if done[name] {
			o.deps.Logger.Printf("[Builder] WARNING: [%s] stage %s listed twice, ignoring repeat", ctx.Name(), name)
			continue
		}
		done[name] = true

		if !stage.Applies(ctx) {
			continue
		}

		start := time.Now()
		err := o.runStage(ctx, stage)
		elapsed := time.Since(start)

		switch {
		case err == nil:
		case apperrors.IsAssetLoad(err):
			wrapped := apperrors.WrapStage(ctx.Name(), name, err)
			o.deps.Logger.Printf("[Builder] WARNING: %v", wrapped)
			o.record(ctx, name, telemetry.StatusAssetMissing, elapsed, wrapped.Error())
		default:
			wrapped := apperrors.WrapStage(ctx.Name(), name, err)
			o.deps.Logger.Printf("[Builder] ERROR: %v", wrapped)
			o.record(ctx, name, telemetry.StatusStageFailed, elapsed, wrapped.Error())
			return wrapped
		}
	}
	return nil
}

func (o *Orchestrator) runStage(ctx *Context, stage Stage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.StageConstructionf(ctx.Name(), stage.Name(), "panic: %v", r)
		}
	}()
	return stage.Build(ctx)
}

func (o *Orchestrator) record(ctx *Context, stage string, status telemetry.Status, d time.Duration, msg string) {
	o.deps.Recorder.Record(telemetry.BuildEvent{
		Body:     ctx.Name(),
		Stage:    stage,
		Pass:     ctx.Pass,
		Status:   status,
		Duration: d,
		Message:  msg,
	})
}

// SphereOfInfluence is the larger of the atmosphere size and twice the surface size
func SphereOfInfluence(cfg *entity.BodyConfig) float64 {
	atmo := 0.0
	if cfg.Atmosphere != nil {
		atmo = cfg.Atmosphere.Size
	}
	if s := cfg.Base.SurfaceSize * 2; s > atmo {
		return s
	}
	return atmo
}

// String is used in logs
func (p Pipeline) String() string {
	return fmt.Sprintf("pipeline(generate=%d shared=%d finalize=%d)", len(p.Generate), len(p.Shared), len(p.Finalize))
}
