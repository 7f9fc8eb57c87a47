package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraLookClampsPitch(t *testing.T) {
	cam := &Camera{}
	cam.Look(mgl32.Vec2{0, 1000}, 1)
	assert.Equal(t, float32(90), cam.Orientation[0])
	cam.Look(mgl32.Vec2{40, -2000}, 0.5)
	assert.Equal(t, float32(-90), cam.Orientation[0])
	assert.Equal(t, float32(20), cam.Orientation[1])
}

func TestCameraViewHasNoTranslation(t *testing.T) {
	cam := &Camera{Orientation: mgl32.Vec3{30, 120, 0}}
	cam.UpdateViewMatrix()
	view := cam.View()
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, view.Col(3))

	// rotation only, directions keep their length
	dir := view.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	assert.InDelta(t, 1, dir.Len(), 1e-5)
}

func TestCameraZoomClampsFov(t *testing.T) {
	cam := &Camera{VerticalFov: 70, ViewportDimension: mgl32.Vec2{16, 9}, ClippingPlanes: mgl32.Vec2{0.1, 10}}
	cam.Zoom(100)
	assert.Equal(t, float32(10), cam.VerticalFov)
	cam.Zoom(-500)
	assert.Equal(t, float32(120), cam.VerticalFov)
	assert.NotEqual(t, mgl32.Mat4{}, cam.Projection())
}
