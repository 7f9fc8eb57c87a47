package libgl

import (
	"strings"
	"unsafe"

	"skyibl/liblog"

	"github.com/go-gl/gl/v4.5-core/gl"
	"go.uber.org/zap"
)

type LabeledGlObject interface {
	SetDebugLabel(string)
}

func setObjectLabel(namespace, id uint32, label string) {
	if label == "" {
		return
	}
	bytes := []byte(label)
	gl.ObjectLabel(namespace, id, int32(len(bytes)), (*uint8)(unsafe.Pointer(&bytes[0])))
}

var (
	debugSeverities = map[uint32]string{
		gl.DEBUG_SEVERITY_HIGH:         "CRITICAL_ERROR",
		gl.DEBUG_SEVERITY_MEDIUM:       "ERROR",
		gl.DEBUG_SEVERITY_LOW:          "WARNING",
		gl.DEBUG_SEVERITY_NOTIFICATION: "INFO",
	}
	debugTypes = map[uint32]string{
		gl.DEBUG_TYPE_ERROR:               "ERROR",
		gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR: "DEPRECATED_BEHAVIOR",
		gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:  "UNDEFINED_BEHAVIOR",
		gl.DEBUG_TYPE_PERFORMANCE:         "PERFORMANCE",
		gl.DEBUG_TYPE_PORTABILITY:         "PORTABILITY",
		gl.DEBUG_TYPE_OTHER:               "OTHER",
		gl.DEBUG_TYPE_MARKER:              "MARKER",
	}
	debugSources = map[uint32]string{
		gl.DEBUG_SOURCE_API:             "GRAPHICS_LIBRARY",
		gl.DEBUG_SOURCE_SHADER_COMPILER: "SHADER_COMPILER",
		gl.DEBUG_SOURCE_WINDOW_SYSTEM:   "WINDOW_SYSTEM",
		gl.DEBUG_SOURCE_THIRD_PARTY:     "THIRD_PARTY",
		gl.DEBUG_SOURCE_APPLICATION:     "APPLICATION",
		gl.DEBUG_SOURCE_OTHER:           "OTHER",
	}
)

// EnableDebugOutput routes driver messages to liblog.Log. Messages of high
// severity panic with the debug group stack they were raised in.
func EnableDebugOutput() {
	gl.Enable(gl.DEBUG_OUTPUT)
	gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
	groupStack := []string{"top"}
	gl.DebugMessageCallback(func(source, gltype, id, severity uint32, length int32, message string, userParam unsafe.Pointer) {
		switch gltype {
		case gl.DEBUG_TYPE_PUSH_GROUP:
			groupStack = append(groupStack, message)
			return
		case gl.DEBUG_TYPE_POP_GROUP:
			if len(groupStack) > 1 {
				groupStack = groupStack[:len(groupStack)-1]
			}
			return
		}

		fields := []zap.Field{
			zap.String("severity", debugSeverities[severity]),
			zap.String("type", debugTypes[gltype]),
			zap.Uint32("id", id),
			zap.String("source", debugSources[source]),
		}
		switch severity {
		case gl.DEBUG_SEVERITY_HIGH:
			fields = append(fields, zap.String("stack", strings.Join(groupStack, " > ")))
			liblog.Log.Panic(message, fields...)
		case gl.DEBUG_SEVERITY_MEDIUM:
			liblog.Log.Error(message, fields...)
		case gl.DEBUG_SEVERITY_LOW:
			liblog.Log.Warn(message, fields...)
		default:
			liblog.Log.Debug(message, fields...)
		}
	}, nil)

	// noisy nvidia notifications about buffer placement and sampler state
	disabled := []uint32{131185}
	gl.DebugMessageControl(gl.DEBUG_SOURCE_API, gl.DEBUG_TYPE_OTHER, gl.DONT_CARE, int32(len(disabled)), &disabled[0], false)
	disabled = []uint32{131222}
	gl.DebugMessageControl(gl.DEBUG_SOURCE_API, gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR, gl.DONT_CARE, int32(len(disabled)), &disabled[0], false)
}

// PushDebugGroup names the following commands in debuggers, call the returned func to pop it.
func PushDebugGroup(name string) func() {
	gl.PushDebugGroup(gl.DEBUG_SOURCE_APPLICATION, 1, -1, gl.Str(name+"\x00"))
	return gl.PopDebugGroup
}
