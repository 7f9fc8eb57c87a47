package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// viewerKeys are the only keys the viewer polls
var viewerKeys = []glfw.Key{glfw.KeyEscape, glfw.KeyR}

type InputManager interface {
	CursorDelta() mgl32.Vec2
	ScrollDelta() float32
	IsDragging() bool
	IsKeyTap(key glfw.Key) bool
	OnScroll(y float64)
	Update(window *glfw.Window)
}

type input struct {
	cursor, prevCursor mgl32.Vec2
	scroll, pending    float32
	dragging           bool
	down, prevDown     map[glfw.Key]bool
}

func NewInputManager(window *glfw.Window) InputManager {
	i := &input{down: map[glfw.Key]bool{}, prevDown: map[glfw.Key]bool{}}
	i.Update(window)
	i.prevCursor = i.cursor
	return i
}

// OnScroll accumulates wheel movement until the next Update.
func (i *input) OnScroll(y float64) {
	i.pending += float32(y)
}

func (i *input) CursorDelta() mgl32.Vec2 {
	return i.cursor.Sub(i.prevCursor)
}

func (i *input) ScrollDelta() float32 {
	return i.scroll
}

// IsDragging reports if a mouse button is held.
func (i *input) IsDragging() bool {
	return i.dragging
}

func (i *input) IsKeyTap(key glfw.Key) bool {
	return i.down[key] && !i.prevDown[key]
}

func (i *input) Update(window *glfw.Window) {
	x, y := window.GetCursorPos()
	i.prevCursor = i.cursor
	i.cursor = mgl32.Vec2{float32(x), float32(y)}

	i.scroll, i.pending = i.pending, 0

	i.dragging = window.GetMouseButton(glfw.MouseButtonLeft) != glfw.Release ||
		window.GetMouseButton(glfw.MouseButtonRight) != glfw.Release

	i.prevDown, i.down = i.down, i.prevDown
	for _, key := range viewerKeys {
		i.down[key] = window.GetKey(key) != glfw.Release
	}
}
