package sensor

import "sort"

// Preset names for common stream modes
const (
	PresetVGA  = "vga"
	PresetQVGA = "qvga"
	PresetHD   = "hd"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetVGA:  DefaultConfig(),
		PresetQVGA: QVGAConfig(),
		PresetHD:   HDConfig(),
	}
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, 3)
	for name := range Presets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// QVGAConfig returns 320x240 at 60 FPS.
// Cheap enough for a Raspberry Pi class host.
func QVGAConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 320
	cfg.Height = 240
	cfg.FPS = 60
	return cfg
}

// HDConfig returns 1280x720. Depth is noisier at this size.
func HDConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}
