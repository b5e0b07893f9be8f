package presets

// File is the top-level structure of presets.yaml.
type File struct {
	Presets []Entry `yaml:"presets"`
}

// Entry is one preset as written in the file.
type Entry struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description,omitempty"`
	Length         int      `yaml:"length"`
	Categories     []string `yaml:"categories"`
	ExcludeSimilar bool     `yaml:"exclude_similar,omitempty"`
}
