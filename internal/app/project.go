package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml"
)

// ProjectFileName is the project configuration looked up next to the
// invocation directory.
const ProjectFileName = "pyslotgen.toml"

// Project is the project file as it is encoded in TOML.
type Project struct {
	Generate tomlGenerate `toml:"generate"`
	Log      tomlLog      `toml:"log"`
}

type tomlGenerate struct {
	Strategy string `toml:"strategy"`
	Crate    string `toml:"crate"`
	Suffix   string `toml:"suffix"`
	Jobs     int    `toml:"jobs"`
}

type tomlLog struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadProject reads a project file. A missing file is not an error unless
// required is set; an empty Project is returned instead.
func LoadProject(path string, required bool) (*Project, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return &Project{}, nil
		}
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	p := &Project{}
	if err := toml.Unmarshal(buff, p); err != nil {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, err)
	}
	return p, nil
}

// Fill copies project values into the fields of cfg that are still empty,
// so values already set from flags win.
func (p *Project) Fill(cfg *Config) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&cfg.Strategy, p.Generate.Strategy)
	fill(&cfg.Crate, p.Generate.Crate)
	fill(&cfg.Suffix, p.Generate.Suffix)
	fill(&cfg.LogLevel, p.Log.Level)
	fill(&cfg.LogFormat, p.Log.Format)
	if cfg.Jobs == 0 {
		cfg.Jobs = p.Generate.Jobs
	}
}
