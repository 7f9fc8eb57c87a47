package ibl

import (
	"fmt"

	"skyibl/gfx"
)

// targetScope remembers the bound targets and viewport of a context.
type targetScope struct {
	ctx      gfx.Context
	rt       gfx.RenderTarget
	ds       gfx.DepthTarget
	viewport gfx.Viewport
}

func captureTargets(ctx gfx.Context) targetScope {
	rt, ds := ctx.RenderTargets()
	return targetScope{
		ctx:      ctx,
		rt:       rt,
		ds:       ds,
		viewport: ctx.Viewport(),
	}
}

func (scope targetScope) Restore() {
	scope.ctx.SetRenderTargets(scope.rt, scope.ds)
	scope.ctx.SetViewport(scope.viewport)
}

// pass fills one layer and level of the target texture.
type pass struct {
	layer, level int
	size         int
	// setup stages per pass values on the pixel shader
	setup func(ps gfx.Shader)
}

type passRenderer struct {
	dev    gfx.Device
	ctx    gfx.Context
	vs, ps gfx.Shader
	target gfx.Texture
}

// run draws every pass and restores the previous targets on all paths.
func (r *passRenderer) run(passes []pass) error {
	scope := captureTargets(r.ctx)
	defer scope.Restore()

	for _, p := range passes {
		if err := r.draw(p); err != nil {
			return err
		}
	}
	return nil
}

func (r *passRenderer) draw(p pass) error {
	rt, err := r.dev.CreateRenderTarget(r.target, p.layer, p.level)
	if err != nil {
		return fmt.Errorf("could not create render target for %q layer %d level %d: %w", r.target.Desc().Label, p.layer, p.level, err)
	}
	defer rt.Release()

	r.ctx.ClearRenderTarget(rt, [4]float32{})
	r.ctx.SetRenderTargets(rt, nil)
	r.ctx.SetViewport(gfx.SquareViewport(p.size))

	r.vs.Activate()
	r.ps.Activate()
	if p.setup != nil {
		p.setup(r.ps)
	}
	r.vs.Upload()
	r.ps.Upload()

	// the vertex stage synthesizes a full-screen triangle
	r.ctx.Draw(3, 0)
	r.ctx.Flush()
	return nil
}
