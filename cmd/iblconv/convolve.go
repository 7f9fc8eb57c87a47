package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"skyibl/ibl"
)

type irradianceArgs struct {
	commonArgs
	size      int
	stepPhi   float64
	stepTheta float64
}

func createIrradianceCommand() *command {
	defaults := ibl.DefaultIrradianceOptions()
	args := irradianceArgs{
		commonArgs: commonArgs{
			ext:      ".iblenv",
			suffix:   "_irradiance",
			compress: 2,
		},
		size:      32,
		stepPhi:   float64(defaults.StepPhi),
		stepTheta: float64(defaults.StepTheta),
	}

	flags := flag.NewFlagSet("irradiance", flag.ExitOnError)
	registerCommonFlags(flags, &args.commonArgs)
	flags.IntVar(&args.size, "size", args.size, "the cubemap face resolution")
	flags.Float64Var(&args.stepPhi, "step-phi", args.stepPhi, "azimuth sample spacing in radians")
	flags.Float64Var(&args.stepTheta, "step-theta", args.stepTheta, "elevation sample spacing in radians")

	return &command{
		Name: "irradiance",
		Help: "convolve ibl environments into diffuse irradiance maps on the cpu",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.size < 1 || args.stepPhi <= 0 || args.stepTheta <= 0 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			runConvolve(self.Flags.Args(), func(src *ibl.IblEnv) *ibl.IblEnv {
				info("Convolving to %dx%d cubemap ...", args.size, args.size)
				return ibl.ConvolveIrradiance(src, args.size, float32(args.stepPhi), float32(args.stepTheta))
			})
		},
		Flags: flags,
	}
}

type prefilterArgs struct {
	commonArgs
	size      int
	roughness float64
	samples   int
}

func createPrefilterCommand() *command {
	args := prefilterArgs{
		commonArgs: commonArgs{
			ext:      ".iblenv",
			suffix:   "_specular",
			compress: 2,
		},
		size:      64,
		roughness: 0.5,
		samples:   256,
	}

	flags := flag.NewFlagSet("prefilter", flag.ExitOnError)
	registerCommonFlags(flags, &args.commonArgs)
	flags.IntVar(&args.size, "size", args.size, "the cubemap face resolution")
	flags.Float64Var(&args.roughness, "roughness", args.roughness, "the roughness from 0 to 1")
	flags.IntVar(&args.samples, "samples", args.samples, "number of importance samples")

	return &command{
		Name: "prefilter",
		Help: "prefilter ibl environments for one specular roughness on the cpu",
		Run: func(self *command) {
			if self.Flags.NArg() < 1 || args.size < 1 || args.samples < 1 || args.roughness < 0 || args.roughness > 1 {
				printCommandUsage(self, " file-glob...")
			}
			setCommonArgs(&args.commonArgs)

			runConvolve(self.Flags.Args(), func(src *ibl.IblEnv) *ibl.IblEnv {
				info("Prefiltering to %dx%d cubemap at roughness %.3f ...", args.size, args.size, args.roughness)
				return ibl.ConvolveSpecular(src, args.size, float32(args.roughness), args.samples)
			})
		},
		Flags: flags,
	}
}

func runConvolve(globs []string, conv func(src *ibl.IblEnv) *ibl.IblEnv) {
	inputFiles := gatherInputFiles(globs)
	success := 0
	start := time.Now()
	for i, p := range inputFiles {
		info("Processing file %d/%d %q ...", i+1, len(inputFiles), filepath.ToSlash(filepath.Clean(p)))
		if !softerr(convolveFile(p, conv)) {
			success++
		}
	}
	took := float32(time.Since(start).Milliseconds()) / 1000
	info("Convolved %d/%d files in %.3f seconds", success, len(inputFiles), took)
}

func convolveFile(p string, conv func(src *ibl.IblEnv) *ibl.IblEnv) error {
	src, err := ibl.DecodeIblEnvFile(p)
	if err != nil {
		return err
	}
	if src.Size == 0 {
		return fmt.Errorf("image has zero size")
	}

	outFilename := outputPath(p)
	if filepath.Clean(outFilename) == filepath.Clean(p) {
		return fmt.Errorf("output %q would overwrite the input", outFilename)
	}
	env := conv(src)

	info("Writing %q ...", filepath.ToSlash(filepath.Clean(outFilename)))
	return writeIblEnv(outFilename, env)
}
