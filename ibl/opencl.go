package ibl

import (
	_ "embed"
	"fmt"
	"unsafe"

	"skyibl/libio"

	"github.com/Qendolin/go-opencl/cl"
	"golang.org/x/exp/slices"
)

//go:embed brdf.cl
var openclBrdfSrc string

type clCore struct {
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
}

type DeviceType = cl.DeviceType

const (
	DeviceTypeCPU         = DeviceType(cl.DeviceTypeCPU)
	DeviceTypeGPU         = DeviceType(cl.DeviceTypeGPU)
	DeviceTypeAccelerator = DeviceType(cl.DeviceTypeAccelerator)
)

// rankDevices orders the preferred type first, then by compute units times clock.
func rankDevices(devices []*cl.Device, preferredDevice DeviceType) {
	slices.SortFunc(devices, func(a, b *cl.Device) int {
		if a.Type() == preferredDevice && b.Type() != preferredDevice {
			return -1
		}
		if a.Type() != preferredDevice && b.Type() == preferredDevice {
			return 1
		}

		aPower := a.MaxComputeUnits() * a.MaxClockFrequency()
		bPower := b.MaxComputeUnits() * b.MaxClockFrequency()

		return bPower - aPower
	})
}

func newClCore(preferredDevice DeviceType, programs ...string) (core *clCore, err error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		return nil, err
	}

	var devices []*cl.Device
	for _, p := range platforms {
		devs, err := p.GetDevices(cl.DeviceTypeAll)
		if err != nil {
			continue
		}
		devices = append(devices, devs...)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no opencl devices found")
	}

	rankDevices(devices, preferredDevice)
	device := devices[0]

	ctx, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, err
	}

	queue, err := ctx.CreateCommandQueue(device, 0)
	if err != nil {
		ctx.Release()
		return nil, err
	}

	prog, err := ctx.CreateProgramWithSource(programs)
	if err != nil {
		queue.Release()
		ctx.Release()
		return nil, err
	}
	err = prog.BuildProgram(nil, "")
	if err != nil {
		prog.Release()
		queue.Release()
		ctx.Release()
		return nil, fmt.Errorf("could not build opencl program: %w", err)
	}

	return &clCore{
		context: ctx,
		queue:   queue,
		program: prog,
	}, nil
}

func (core *clCore) Release() {
	core.program.Release()
	core.queue.Release()
	core.context.Release()
}

// GenerateClBrdfLut bakes the same table as GenerateSwBrdfLut on an OpenCL device.
func GenerateClBrdfLut(preferredDevice DeviceType, size, quality int) (*libio.FloatImage, error) {
	if size < 1 || quality < 1 {
		return nil, fmt.Errorf("%w: brdf lut size %d with %d samples", ErrInvalidSize, size, quality)
	}

	core, err := newClCore(preferredDevice, openclBrdfSrc)
	if err != nil {
		return nil, err
	}
	defer core.Release()

	kernel, err := core.program.CreateKernel("integrate_brdf")
	if err != nil {
		return nil, err
	}
	defer kernel.Release()

	samples := generateHammersleySequence(quality)
	sampleBuf, err := core.context.CreateBuffer(cl.MemReadOnly|cl.MemCopyHostPtr, len(samples)*int(unsafe.Sizeof(samples[0])), unsafe.Pointer(&samples[0]))
	if err != nil {
		return nil, err
	}
	defer sampleBuf.Release()

	dstImage, err := core.context.CreateImage(cl.MemWriteOnly, cl.ImageFormat{
		ChannelOrder:    cl.ChannelOrderRG,
		ChannelDataType: cl.ChannelDataTypeFloat,
	}, cl.ImageDescription{
		Type:   cl.MemObjectTypeImage2D,
		Width:  size,
		Height: size,
	}, size*size*2*4, nil)
	if err != nil {
		return nil, err
	}
	defer dstImage.Release()

	err = kernel.SetArgBuffer(0, dstImage)
	if err != nil {
		return nil, err
	}
	err = kernel.SetArgInt32(1, int32(size))
	if err != nil {
		return nil, err
	}
	err = kernel.SetArgFloat32(2, 1.0/float32(size))
	if err != nil {
		return nil, err
	}
	err = kernel.SetArgBuffer(3, sampleBuf)
	if err != nil {
		return nil, err
	}
	err = kernel.SetArgInt32(4, int32(len(samples)))
	if err != nil {
		return nil, err
	}

	localWorkSize := []int{16, 16}
	globalWorkSize := []int{roundUpKernelSize(localWorkSize[0], size), roundUpKernelSize(localWorkSize[1], size)}

	_, err = core.queue.EnqueueNDRangeKernel(kernel, []int{0, 0}, globalWorkSize, localWorkSize, nil)
	if err != nil {
		return nil, err
	}

	result := make([]float32, size*size*2)
	_, err = core.queue.EnqueueReadImage(dstImage, true, [3]int{}, [3]int{size, size, 1}, 0, 0, unsafe.Pointer(&result[0]), nil)
	if err != nil {
		return nil, err
	}

	return libio.NewFloatImage(result, 2, size, size), nil
}

func roundUpKernelSize(groupSize, globalSize int) int {
	r := globalSize % groupSize
	if r == 0 {
		return globalSize
	}
	return globalSize + groupSize - r
}
