package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"skyibl/ibl"
	"skyibl/libio"
	"skyibl/liblog"

	"go.uber.org/zap"
)

var args = struct {
	samples     int
	size        int
	preview     bool
	grayscale   bool
	software    bool
	debug       bool
	compression int
}{
	samples:     1024,
	size:        256,
	compression: 1,
}

func printGeneralUsage() {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s [arguments] <out>\n\n", exe)
	fmt.Fprintf(os.Stderr, "The arguments are:\n\n")
	flag.CommandLine.SetOutput(os.Stderr)
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.IntVar(&args.samples, "samples", args.samples, "samples of the integral")
	flag.IntVar(&args.size, "size", args.size, "size of the lut")
	flag.BoolVar(&args.preview, "preview", args.preview, "generate normalized preview png")
	flag.BoolVar(&args.grayscale, "grayscale", args.grayscale, "generate seperate grayscale images")
	flag.BoolVar(&args.software, "software", args.software, "skip opencl and integrate on the cpu")
	flag.BoolVar(&args.debug, "debug", args.debug, "log to the console at debug level")
	flag.IntVar(&args.compression, "compression", args.compression, "0=none, 1=fixed-point + lz4-fast")

	flag.Parse()

	if flag.NArg() != 1 || args.size < 1 || args.samples < 1 {
		printGeneralUsage()
	}

	harderr(liblog.Init(args.debug))
	defer liblog.Sync()

	img := generate()

	fileext := path.Ext(flag.Arg(0))
	filename := strings.TrimSuffix(flag.Arg(0), fileext)

	if args.grayscale {
		saveFloatImage(img.Shuffle([]int{0}), filename+"_r", fileext)
		saveFloatImage(img.Shuffle([]int{1}), filename+"_g", fileext)
	} else {
		saveFloatImage(img, filename, fileext)
	}
}

func generate() *libio.FloatImage {
	start := time.Now()
	if !args.software {
		runtime.LockOSThread()
		img, err := ibl.GenerateClBrdfLut(ibl.DeviceTypeGPU, args.size, args.samples)
		if err == nil {
			liblog.Log.Info("generated brdf lut", zap.String("impl", "opencl"), zap.Int("size", args.size), zap.Duration("took", time.Since(start)))
			return img
		}
		liblog.Log.Warn("opencl unavailable, falling back to software", zap.Error(err))
	}
	img := ibl.GenerateSwBrdfLut(args.size, args.samples)
	liblog.Log.Info("generated brdf lut", zap.String("impl", "software"), zap.Int("size", args.size), zap.Duration("took", time.Since(start)))
	return img
}

func saveFloatImage(img *libio.FloatImage, filename, fileext string) {
	file, err := os.OpenFile(filename+fileext, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	harderr(err)
	defer file.Close()

	err = libio.EncodeFloatImage(file, img, libio.FloatImageCompression(args.compression))
	harderr(err)

	if args.preview {
		if img.Channels == 1 {
			img = img.Shuffle([]int{0, 0, 0})
		} else {
			img = img.ToChannels(3, 0)
		}

		preview, err := os.OpenFile(filename+".png", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
		harderr(err)
		defer preview.Close()

		img.Normalize()
		// row 0 is roughness 0, put it at the bottom
		err = png.Encode(preview, img.ToIntImage().ToRGBA(true))
		harderr(err)
	}
}

func harderr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
