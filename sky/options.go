package sky

import (
	"errors"
	"fmt"
	"os"

	"skyibl/gfx"
	"skyibl/ibl"

	"github.com/pelletier/go-toml/v2"
)

type Options struct {
	IrradianceSize      int     `toml:"irradiance_size"`
	IrradianceStepPhi   float32 `toml:"irradiance_step_phi"`
	IrradianceStepTheta float32 `toml:"irradiance_step_theta"`
	SpecularSize        int     `toml:"specular_size"`
	SpecularSkipLevels  int     `toml:"specular_skip_levels"`
	BRDFSize            int     `toml:"brdf_size"`
	// MapFormat is used by the irradiance and specular maps
	MapFormat gfx.Format `toml:"map_format"`
}

func DefaultOptions() Options {
	irradiance := ibl.DefaultIrradianceOptions()
	specular := ibl.DefaultSpecularOptions()
	return Options{
		IrradianceSize:      irradiance.Size,
		IrradianceStepPhi:   irradiance.StepPhi,
		IrradianceStepTheta: irradiance.StepTheta,
		SpecularSize:        specular.Size,
		SpecularSkipLevels:  specular.SkipLevels,
		BRDFSize:            ibl.DefaultBRDFOptions().Size,
		MapFormat:           gfx.FormatRGBA8,
	}
}

// LoadOptions reads a toml file over the defaults. Unknown keys are an error.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	file, err := os.Open(path)
	if err != nil {
		return opts, err
	}
	defer file.Close()

	dec := toml.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return opts, fmt.Errorf("could not load %q: %s", path, strict.String())
		}
		return opts, fmt.Errorf("could not load %q: %w", path, err)
	}

	return opts, opts.Validate()
}

func (opts Options) Validate() error {
	if err := opts.irradiance().Validate(); err != nil {
		return err
	}
	if err := opts.specular().Validate(); err != nil {
		return err
	}
	return opts.brdf().Validate()
}

func (opts Options) irradiance() ibl.IrradianceOptions {
	return ibl.IrradianceOptions{
		Size:      opts.IrradianceSize,
		StepPhi:   opts.IrradianceStepPhi,
		StepTheta: opts.IrradianceStepTheta,
		Format:    opts.MapFormat,
	}
}

func (opts Options) specular() ibl.SpecularOptions {
	return ibl.SpecularOptions{
		Size:       opts.SpecularSize,
		SkipLevels: opts.SpecularSkipLevels,
		Format:     opts.MapFormat,
	}
}

func (opts Options) brdf() ibl.BRDFOptions {
	return ibl.BRDFOptions{Size: opts.BRDFSize}
}
