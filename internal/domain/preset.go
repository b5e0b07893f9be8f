package domain

// Preset is a named generation configuration loaded from the presets file.
type Preset struct {
	Name        string
	Description string
	Config      GenerationConfig
}
