package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/plume/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file written by 'plume new' at
// the project root. It is the marker that a directory is a Plume
// project; generator commands refuse to run without it.
const FileName = "plume.yml"

// projectFile is the on-disk shape of plume.yml.
type projectFile struct {
	Application applicationBlock  `yaml:"application"`
	Options     map[string]string `yaml:"options"`
}

type applicationBlock struct {
	Name  string `yaml:"name"`
	Scope string `yaml:"scope,omitempty"`
}

// Save persists the context as plume.yml inside dir. The write is
// atomic; a crash cannot leave a half-written config behind.
func Save(ctx *Context, dir string) error {
	file := projectFile{
		Application: applicationBlock{
			Name:  ctx.Value("appName"),
			Scope: ctx.Value("packageScope"),
		},
		Options: make(map[string]string),
	}

	for _, name := range ctx.Names() {
		if name == "appName" || name == "packageScope" {
			continue
		}
		file.Options[name] = ctx.Value(name)
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", FileName, err)
	}

	return fsutil.WriteAtomic(filepath.Join(dir, FileName), data, 0644)
}

// Load reads plume.yml from dir and revalidates it through the option
// table, returning the same immutable Context 'plume new' resolved.
// A missing or unreadable file yields *MissingConfigError; values that
// no longer pass validation (a hand-edited file) yield
// *ValidationError.
func Load(dir string) (*Context, error) {
	path := filepath.Join(dir, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingConfigError{Path: path}
		}
		return nil, &MissingConfigError{Path: path, Err: err}
	}

	var file projectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &MissingConfigError{Path: path, Err: err}
	}

	r := newFileResolver()
	if file.Application.Name != "" {
		r.SetAnswer("appName", file.Application.Name)
	}
	if file.Application.Scope != "" {
		r.SetAnswer("packageScope", file.Application.Scope)
	}
	for name, value := range file.Options {
		r.SetAnswer(name, value)
	}

	return r.Resolve()
}

// newFileResolver builds a resolver without environment overrides.
// Reloading a persisted config must reproduce it exactly; the
// environment already had its chance at scaffold time.
func newFileResolver() *Resolver {
	return &Resolver{
		v:       discardViper(),
		flags:   make(map[string]string),
		answers: make(map[string]string),
	}
}
