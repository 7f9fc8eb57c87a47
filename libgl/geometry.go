package libgl

import (
	"encoding/binary"
	"unsafe"

	"skyibl/liblog"

	"github.com/go-gl/gl/v4.5-core/gl"
	"go.uber.org/zap"
)

type buffer struct {
	glId uint32
	size int
	// storage allocated with glNamedBufferStorage cannot be resized
	immutable bool
}

type UnboundBuffer interface {
	Id() uint32
	Allocate(data any, flags int)
	AllocateEmptyMutable(size int, usage int)
	WritePointer(offset, size int, data unsafe.Pointer)
	Size() int
	Delete()
}

func NewBuffer() UnboundBuffer {
	var id uint32
	gl.CreateBuffers(1, &id)
	return &buffer{glId: id}
}

func (buf *buffer) Id() uint32 {
	return buf.glId
}

func (buf *buffer) Size() int {
	return buf.size
}

// Allocate creates immutable storage holding data, a fixed size value or slice.
func (buf *buffer) Allocate(data any, flags int) {
	if buf.immutable {
		liblog.Log.Panic("buffer storage is immutable", zap.Uint32("buffer", buf.glId))
	}
	size := binary.Size(data)
	if size == -1 {
		liblog.Log.Panic("buffer data does not have a fixed size", zap.Any("type", data))
	}
	if size == 0 {
		return
	}
	gl.NamedBufferStorage(buf.glId, size, Pointer(data), uint32(flags))
	buf.size = size
	buf.immutable = true
}

// AllocateEmptyMutable (re)creates uninitialized storage of size bytes.
func (buf *buffer) AllocateEmptyMutable(size int, usage int) {
	if buf.immutable {
		liblog.Log.Panic("buffer storage is immutable", zap.Uint32("buffer", buf.glId))
	}
	if size == 0 {
		return
	}
	gl.NamedBufferData(buf.glId, size, nil, uint32(usage))
	buf.size = size
}

func (buf *buffer) WritePointer(offset, size int, data unsafe.Pointer) {
	if size == 0 {
		return
	}
	gl.NamedBufferSubData(buf.glId, offset, size, data)
}

func (buf *buffer) Delete() {
	if buf.glId == 0 {
		return
	}
	gl.DeleteBuffers(1, &buf.glId)
	buf.glId = 0
	buf.size = 0
}

type vertexArray struct {
	glId uint32
}

type UnboundVertexArray interface {
	Layout(bufferIndex int, attributeIndex int, size int, dataType int, normalized bool, offset int)
	BindBuffer(bufferIndex int, buf UnboundBuffer, offset int, stride int)
	BindElementBuffer(buf UnboundBuffer)
	Id() uint32
	Bind()
	Delete()
}

func NewVertexArray() UnboundVertexArray {
	var id uint32
	gl.CreateVertexArrays(1, &id)
	return &vertexArray{glId: id}
}

func (vao *vertexArray) Bind() {
	State.BindVertexArray(vao.glId)
}

func (vao *vertexArray) Id() uint32 {
	return vao.glId
}

func (vao *vertexArray) Layout(bufferIndex int, attributeIndex int, size int, dataType int, normalized bool, offset int) {
	attr := uint32(attributeIndex)
	gl.EnableVertexArrayAttrib(vao.glId, attr)
	gl.VertexArrayAttribFormat(vao.glId, attr, int32(size), uint32(dataType), normalized, uint32(offset))
	gl.VertexArrayAttribBinding(vao.glId, attr, uint32(bufferIndex))
}

func (vao *vertexArray) BindBuffer(bufferIndex int, buf UnboundBuffer, offset int, stride int) {
	gl.VertexArrayVertexBuffer(vao.glId, uint32(bufferIndex), buf.Id(), offset, int32(stride))
}

func (vao *vertexArray) BindElementBuffer(buf UnboundBuffer) {
	gl.VertexArrayElementBuffer(vao.glId, buf.Id())
}

func (vao *vertexArray) Delete() {
	if vao.glId == 0 {
		return
	}
	if State.VertexArray == vao.glId {
		State.VertexArray = 0
	}
	gl.DeleteVertexArrays(1, &vao.glId)
	vao.glId = 0
}
