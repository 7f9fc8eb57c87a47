package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"skyibl/gfx"
	"skyibl/ibl"
	"skyibl/libio"
	"skyibl/liblog"

	"go.uber.org/zap"
)

type packArgs struct {
	commonArgs
	name string
}

func createPackCommand() *command {
	args := packArgs{
		commonArgs: commonArgs{
			ext:      ".iblenv",
			compress: 2,
		},
		name: "environment",
	}

	flags := flag.NewFlagSet("pack", flag.ExitOnError)
	registerCommonFlags(flags, &args.commonArgs)
	flags.StringVar(&args.name, "name", args.name, "the result file name without extension")

	return &command{
		Name: "pack",
		Help: "pack six face images into an ibl environment",
		Run: func(self *command) {
			if self.Flags.NArg() != 6 || args.compress < 0 || args.compress > 10 {
				printCommandUsage(self, " +x -x +y -y +z -z")
			}
			setCommonArgs(&args.commonArgs)

			var paths [6]string
			copy(paths[:], self.Flags.Args())
			harderr(runPack(args, paths))
		},
		Flags: flags,
	}
}

func runPack(args packArgs, paths [6]string) error {
	var faces [6]*libio.IntImage
	for i, p := range paths {
		info("Reading %v face %q ...", gfx.CubeFaces[i], filepath.ToSlash(p))
		img, err := libio.DecodeImageFile(p)
		if err != nil {
			return err
		}
		if img.Width != img.Height || (i > 0 && img.Width != faces[0].Width) {
			return fmt.Errorf("%w: %v face is %dx%d, expected square faces of the same size", ibl.ErrFaceMismatch, gfx.CubeFaces[i], img.Width, img.Height)
		}
		faces[i] = img
	}

	size := faces[0].Width
	data := make([]float32, 0, 6*size*size*3)
	for _, img := range faces {
		rgb := img.ToChannels(3)
		for _, v := range rgb.Pix {
			data = append(data, float32(v)/0xff)
		}
	}
	env := ibl.NewIblEnv(data, size)

	outFilename := filepath.Join(cargs.out, args.name+cargs.suffix+cargs.ext)
	info("Writing %q ...", filepath.ToSlash(filepath.Clean(outFilename)))
	if err := writeIblEnv(outFilename, env); err != nil {
		return err
	}
	liblog.Log.Debug("packed ibl environment", zap.Int("size", size), zap.String("file", outFilename))
	return nil
}

// writeIblEnv removes the partial file when encoding fails.
func writeIblEnv(filename string, env *ibl.IblEnv) error {
	outFile, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer closeFile(outFile)

	err = ibl.EncodeIblEnv(outFile, env, ibl.OptCompress(cargs.compress-1))
	if err != nil {
		outFile.Close()
		os.Remove(filename)
		return err
	}
	return nil
}
