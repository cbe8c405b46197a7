// Package mods loads and creates plang project files.  A project is a directory
// containing a `plang-mod.toml` file which names the entry source file along
// with the default build settings for it.
package mods

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"golang.org/x/mod/semver"

	"plang/common"
	"plang/report"
)

// Project is a loaded and validated plang project.
type Project struct {
	// Name is the name of the project.  It is a valid identifier.
	Name string

	// Root is the directory containing the project file.
	Root string

	// EntryPath is the absolute path to the entry source file.
	EntryPath string

	// OutputPath is the path the compiled module is written to.  It is empty
	// if no output path was specified.
	OutputPath string

	// Format is the output format: one of the enumerated common formats.
	Format string

	// LogLevel is the log level the project should be built with.
	LogLevel int

	// Version is the compiler version the project was written for.
	Version string
}

// tomlProjectFile represents the project file as it is encoded in TOML.
type tomlProjectFile struct {
	Project *tomlProject `toml:"project"`
}

// tomlProject represents a project as it is encoded in TOML.
type tomlProject struct {
	Name     string `toml:"name"`
	Version  string `toml:"plangc-version"`
	Entry    string `toml:"entry"`
	Output   string `toml:"output,omitempty"`
	Format   string `toml:"format,omitempty"`
	LogLevel string `toml:"loglevel,omitempty"`
}

// LoadProject loads and validates the project whose file is in dir.
func LoadProject(dir string) (*Project, error) {
	f, err := os.Open(filepath.Join(dir, common.ProjectFileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buff, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tpf := &tomlProjectFile{}
	if err := toml.Unmarshal(buff, tpf); err != nil {
		return nil, fmt.Errorf("invalid project file: %s", err)
	}

	if tpf.Project == nil {
		return nil, fmt.Errorf("project file in %s is missing a [project] table", dir)
	}

	absRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	return validateProject(absRoot, tpf.Project)
}

// validateProject checks the contents of a project file and converts it into a
// project rooted at root.
func validateProject(root string, tp *tomlProject) (*Project, error) {
	if tp.Name == "" {
		return nil, fmt.Errorf("missing project name for project at %s", root)
	}

	if !common.IsValidIdentifier(tp.Name) {
		return nil, errors.New("project name must be a valid identifier")
	}

	if tp.Entry == "" {
		return nil, fmt.Errorf("project `%s` must specify an entry file", tp.Name)
	}

	proj := &Project{
		Name:      tp.Name,
		Root:      root,
		EntryPath: tp.Entry,
		Format:    common.FormatWAT,
		Version:   tp.Version,
	}

	if !filepath.IsAbs(proj.EntryPath) {
		proj.EntryPath = filepath.Join(root, proj.EntryPath)
	}

	if tp.Output != "" {
		proj.OutputPath = tp.Output
		if !filepath.IsAbs(proj.OutputPath) {
			proj.OutputPath = filepath.Join(root, proj.OutputPath)
		}
	}

	switch tp.Format {
	case "":
	case common.FormatWAT, common.FormatLLVM:
		proj.Format = tp.Format
	default:
		return nil, fmt.Errorf("unknown output format `%s` in project `%s`", tp.Format, tp.Name)
	}

	logLevel, ok := report.LogLevelFromName(tp.LogLevel)
	if !ok {
		return nil, fmt.Errorf("unknown log level `%s` in project `%s`", tp.LogLevel, tp.Name)
	}
	proj.LogLevel = logLevel

	if err := checkVersion(tp.Name, tp.Version); err != nil {
		return nil, err
	}

	return proj, nil
}

// checkVersion validates the compiler version a project was written for.
func checkVersion(name, version string) error {
	if version == "" {
		return fmt.Errorf("project `%s` must specify a plangc version", name)
	}

	if !semver.IsValid("v" + version) {
		return fmt.Errorf("invalid plangc version `%s` in project `%s`", version, name)
	}

	return nil
}

// SameReleaseLine returns whether the project was written for the same major
// and minor version as the running compiler.
func (p *Project) SameReleaseLine() bool {
	return semver.MajorMinor("v"+p.Version) == semver.MajorMinor("v"+common.PlangVersion)
}

// WarnVersionMismatch reports a warning if the project was written for a
// different release line than the running compiler.  It should be called once
// the reporter is using the log level of the project.
func (p *Project) WarnVersionMismatch() {
	if !p.SameReleaseLine() {
		report.ReportWarning(
			"project",
			fmt.Sprintf("version of project `%s` (v%s) does not match current plangc version (v%s)", p.Name, p.Version, common.PlangVersion),
		)
	}
}

// -----------------------------------------------------------------------------

// InitProject creates a new project with the given name in dir.  The project
// file refers to an entry file named after the project.
func InitProject(name, dir string) error {
	projFilePath := filepath.Join(dir, common.ProjectFileName)

	_, err := os.Stat(projFilePath)
	if err == nil {
		return errors.New("project file already exists")
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("project file error: %s", err)
	}

	if !common.IsValidIdentifier(name) {
		return errors.New("project name must be a valid identifier")
	}

	proj := &tomlProject{
		Name:     name,
		Version:  common.PlangVersion,
		Entry:    name + common.SrcFileExtension,
		Output:   filepath.Join("out", name+".wat"),
		Format:   common.FormatWAT,
		LogLevel: "verbose",
	}

	f, err := os.Create(projFilePath)
	if err != nil {
		return fmt.Errorf("error creating project file: %s", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(&tomlProjectFile{Project: proj}); err != nil {
		return fmt.Errorf("error encoding TOML: %s", err)
	}

	return nil
}
