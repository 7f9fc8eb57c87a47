package main

import (
	"flag"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"skyibl/ibl"
	"skyibl/libio"
)

type unpackArgs struct {
	commonArgs
	gamma    float64
	exposure float64
}

func createUnpackCommand() *command {
	args := unpackArgs{
		commonArgs: commonArgs{
			ext: ".png",
		},
		gamma:    1,
		exposure: 1,
	}

	flags := flag.NewFlagSet("unpack", flag.ExitOnError)
	registerCommonFlags(flags, &args.commonArgs)
	flags.Float64Var(&args.gamma, "gamma", args.gamma, "gamma applied to the preview")
	flags.Float64Var(&args.exposure, "exposure", args.exposure, "scale applied before tonemapping")

	return &command{
		Name: "unpack",
		Help: "write the faces of ibl environments as images",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.gamma <= 0 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			success := 0
			inputFiles := gatherInputFiles(self.Flags.Args())
			for i, p := range inputFiles {
				info("Processing file %d/%d %q ...", i+1, len(inputFiles), filepath.ToSlash(filepath.Clean(p)))
				if !softerr(unpackFile(args, p)) {
					success++
				}
			}
			info("Unpacked %d/%d files", success, len(inputFiles))
		},
		Flags: flags,
	}
}

func unpackFile(args unpackArgs, p string) error {
	env, err := ibl.DecodeIblEnvFile(p)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	for face, pix := range env.Faces {
		img := libio.NewFloatImage(append([]float32(nil), pix...), 3, env.Size, env.Size)
		img.Tonemap(float32(args.gamma), float32(args.exposure))

		name := filepath.Join(cargs.out, base+cargs.suffix+"_"+faceNames[face]+cargs.ext)
		info("Writing %q ...", filepath.ToSlash(filepath.Clean(name)))
		if err := writePng(name, img); err != nil {
			return err
		}
	}
	return nil
}

// file name safe versions of the face names
var faceNames = [6]string{"px", "nx", "py", "ny", "pz", "nz"}

func writePng(name string, img *libio.FloatImage) error {
	file, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	defer closeFile(file)
	return png.Encode(file, img.ToIntImage().ToRGBA(false))
}
