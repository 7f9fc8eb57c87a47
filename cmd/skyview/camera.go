package main

import (
	"skyibl/libutil"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera only rotates, the sky is always centered on the viewer.
type Camera struct {
	// pitch, yaw, roll in degrees
	Orientation mgl32.Vec3
	// in degrees
	VerticalFov       float32
	ViewportDimension mgl32.Vec2
	ClippingPlanes    mgl32.Vec2
	ViewMatrix        mgl32.Mat4
	ProjectionMatrix  mgl32.Mat4
}

func (cam *Camera) UpdateViewMatrix() {
	cam.ViewMatrix = cam.Quaternion().Mat4()
}

func (cam *Camera) UpdateProjectionMatrix() {
	w, h := cam.ViewportDimension[0], cam.ViewportDimension[1]
	if h == 0 {
		h = 1
	}
	n, f := cam.ClippingPlanes[0], cam.ClippingPlanes[1]
	cam.ProjectionMatrix = mgl32.Perspective(cam.VerticalFov*libutil.Deg2Rad, w/h, n, f)
}

func (cam *Camera) Quaternion() mgl32.Quat {
	return mgl32.AnglesToQuat(cam.Orientation[0]*libutil.Deg2Rad, cam.Orientation[1]*libutil.Deg2Rad, cam.Orientation[2]*libutil.Deg2Rad, mgl32.XYZ)
}

// Look turns the camera by a cursor delta in pixels, pitch is clamped to straight up and down.
func (cam *Camera) Look(delta mgl32.Vec2, sensitivity float32) {
	cam.Orientation[0] = mgl32.Clamp(cam.Orientation[0]+delta[1]*sensitivity, -90, 90)
	cam.Orientation[1] += delta[0] * sensitivity
}

func (cam *Camera) Zoom(degrees float32) {
	cam.VerticalFov = mgl32.Clamp(cam.VerticalFov-degrees, 10, 120)
	cam.UpdateProjectionMatrix()
}

func (cam *Camera) View() mgl32.Mat4 {
	return cam.ViewMatrix
}

func (cam *Camera) Projection() mgl32.Mat4 {
	return cam.ProjectionMatrix
}
