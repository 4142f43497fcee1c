package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/hankthetank27/edlgen/internal/timecode"
)

const envPrefix = "EDLGEN_"

// Overrides carries CLI-flag values that, when set, take precedence over
// file and environment layers. A nil field means "flag not passed."
type Overrides struct {
	Title         *string
	Dir           *string
	Port          *int
	DeviceBackend *string
}

// Load resolves the config file path, then layers defaults < file < env
// < CLI overrides, validating the result.
func Load(explicitPath string, overrides Overrides) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return Loaded{}, fmt.Errorf("config: seed defaults: %w", err)
	}

	exists := true
	if err := k.Load(file.Provider(resolvedPath), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Loaded{}, fmt.Errorf("config: read %q: %w", resolvedPath, err)
		}
		exists = false
	}

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			key = strings.ReplaceAll(key, "__", ".")
			return key, value
		},
	}), nil); err != nil {
		return Loaded{}, fmt.Errorf("config: read env: %w", err)
	}

	applyOverrides(k, overrides)

	cfg := Config{
		Title:         k.String("title"),
		Dir:           k.String("dir"),
		Port:          k.Int("port"),
		SampleRate:    k.Int("sample_rate"),
		FPS:           timecode.Rate(k.Float64("fps")),
		NTSC:          k.String("ntsc"),
		InputChannel:  k.Int("input_channel"),
		BufferSize:    k.Int("buffer_size"),
		DeviceBackend: k.String("device_backend"),
		Device:        k.String("device"),
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Loaded{}, fmt.Errorf("config: %w", err)
	}

	return Loaded{Path: resolvedPath, Config: cfg, Warnings: warnings, Exists: exists}, nil
}

// applyOverrides layers explicit CLI flag values on top of the koanf
// tree, the highest-precedence layer.
func applyOverrides(k *koanf.Koanf, o Overrides) {
	set := map[string]any{}
	if o.Title != nil {
		set["title"] = *o.Title
	}
	if o.Dir != nil {
		set["dir"] = *o.Dir
	}
	if o.Port != nil {
		set["port"] = *o.Port
	}
	if o.DeviceBackend != nil {
		set["device_backend"] = *o.DeviceBackend
	}
	if len(set) == 0 {
		return
	}
	_ = k.Load(confmap.Provider(set, "."), nil)
}
