package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"
	"github.com/kr/pretty"

	"plang/build"
	"plang/common"
	"plang/mods"
	"plang/report"
)

// Execute runs the main `plangc` application and returns its exit code.
func Execute() (exitCode int) {
	var iceErr error
	defer func() {
		if iceErr != nil {
			exitCode = 1
		}
	}()
	defer report.CatchICE(&iceErr)

	// set up the argument parser and all its commands and arguments
	cli := olive.NewCLI("plangc", "plangc is the compiler for plang source files and projects", true)

	buildCmd := cli.AddSubcommand("build", "compile a source file or project", true)
	buildCmd.AddPrimaryArg("path", "the path to the source file or project directory to build", true)
	buildCmd.AddStringArg("output", "o", "the path to write the compiled module to", false)
	buildCmd.AddSelectorArg("format", "f", "the output format", false, []string{common.FormatWAT, common.FormatLLVM})
	buildCmd.AddSelectorArg("loglevel", "ll", "the compiler log level", false, logLevelNames)
	buildCmd.AddFlag("dump-ast", "da", "print the syntax tree of the source before generating it")

	checkCmd := cli.AddSubcommand("check", "check a source file or project for errors without compiling it", true)
	checkCmd.AddPrimaryArg("path", "the path to the source file or project directory to check", true)
	checkCmd.AddSelectorArg("loglevel", "ll", "the compiler log level", false, logLevelNames)

	modCmd := cli.AddSubcommand("mod", "manage projects", true)
	modInitCmd := modCmd.AddSubcommand("init", "initialize a project in the working directory", true)
	modInitCmd.AddPrimaryArg("project-name", "the name of the project", true)

	cli.AddSubcommand("version", "print the plangc version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		return 1
	}

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		return execBuildCommand(subResult)
	case "check":
		return execCheckCommand(subResult)
	case "mod":
		return execModCommand(subResult)
	case "version":
		report.PrintInfoMessage("plangc Version", common.PlangVersion)
	}

	return 0
}

// logLevelNames is the list of log levels that can be selected.
var logLevelNames = []string{"silent", "error", "warn", "verbose"}

// -----------------------------------------------------------------------------

// execBuildCommand executes the build subcommand and handles all errors.
func execBuildCommand(result *olive.ArgParseResult) int {
	target, ok := loadTarget(result)
	if !ok {
		return 1
	}

	if format, ok := result.Arguments["format"]; ok {
		target.format = format.(string)
	}

	if outputPath, ok := result.Arguments["output"]; ok {
		if len(target.sources) > 1 {
			report.ReportStdError("Config Error", errors.New("an output path cannot be given when building several files"))
			return 1
		}

		target.outputPath = outputPath.(string)
	}

	c, err := build.NewCompiler(target.format, nil)
	if err != nil {
		report.ReportStdError("Config Error", err)
		return 1
	}

	report.ReportCompileHeader(target.format)

	dumpAST := result.HasFlag("dump-ast")
	if len(target.sources) == 1 {
		return buildFile(c, target, dumpAST)
	}

	return buildFiles(c, target, dumpAST)
}

// buildFile compiles the single source of a target.
func buildFile(c *build.Compiler, target *buildTarget, dumpAST bool) int {
	src := target.sources[0]

	outputPath := target.outputPath
	if outputPath == "" {
		outputPath = build.DefaultOutputPath(src.path, target.format)
	}

	out, err := c.CompileFile(src.path)
	if err != nil {
		report.ReportCompileError(src.path, src.reprPath, err)
		report.ReportCompilationFinished("")
		return 1
	}

	if dumpAST {
		fmt.Printf("%# v\n", pretty.Formatter(out.Tree))
	}

	if err := build.WriteOutput(outputPath, out.Text); err != nil {
		report.ReportStdError("Output Error", err)
		report.ReportCompilationFinished("")
		return 1
	}

	report.ReportCompilationFinished(outputPath)
	return 0
}

// buildFiles compiles all the sources of a target concurrently.  Each module is
// written next to its source.  The modules of the sources which compile are
// written even if other sources fail to compile.
func buildFiles(c *build.Compiler, target *buildTarget, dumpAST bool) int {
	paths := make([]string, len(target.sources))
	for i, src := range target.sources {
		paths[i] = src.path
	}

	outputs, errs := c.CompileFiles(paths)

	for i, src := range target.sources {
		if errs[i] != nil {
			report.ReportCompileError(src.path, src.reprPath, errs[i])
			continue
		}

		if dumpAST {
			fmt.Printf("%s:\n%# v\n", src.reprPath, pretty.Formatter(outputs[i].Tree))
		}

		if err := build.WriteOutput(build.DefaultOutputPath(src.path, target.format), outputs[i].Text); err != nil {
			report.ReportStdError("Output Error", err)
		}
	}

	report.ReportCompilationFinished(target.dir)
	if report.AnyErrors() {
		return 1
	}

	return 0
}

// execCheckCommand executes the check subcommand and handles all errors.
func execCheckCommand(result *olive.ArgParseResult) int {
	target, ok := loadTarget(result)
	if !ok {
		return 1
	}

	c, err := build.NewCompiler(target.format, nil)
	if err != nil {
		report.ReportStdError("Config Error", err)
		return 1
	}

	for _, src := range target.sources {
		if _, err := c.CheckFile(src.path); err != nil {
			report.ReportCompileError(src.path, src.reprPath, err)
		}
	}

	report.ReportCompilationFinished("")
	if report.AnyErrors() {
		return 1
	}

	return 0
}

// execModCommand executes the `mod` subcommand and its subcommands.  It handles
// all errors related to this command.
func execModCommand(result *olive.ArgParseResult) int {
	subcmdName, subResult, _ := result.Subcommand()

	workDir, err := os.Getwd()
	if err != nil {
		report.PrintErrorMessage("Path Error", err)
		return 1
	}

	switch subcmdName {
	case "init":
		name, _ := subResult.PrimaryArg()
		if err := mods.InitProject(name, workDir); err != nil {
			report.PrintErrorMessage("Project Init Error", err)
			return 1
		}

		if err := writeEntryFile(filepath.Join(workDir, name+common.SrcFileExtension)); err != nil {
			report.PrintErrorMessage("Project Init Error", err)
			return 1
		}

		report.PrintInfoMessage("Project Created", name)
	}

	return 0
}

// entryFileText is the text of the entry file of a new project.
const entryFileText = "fn main() {\n}\n"

// writeEntryFile writes a starter entry file if none exists.
func writeEntryFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return os.WriteFile(path, []byte(entryFileText), 0o644)
}

// -----------------------------------------------------------------------------

// buildTarget is the set of source files to compile along with the settings to
// compile them with.
type buildTarget struct {
	// sources are the source files to compile.  There is always at least one.
	sources []source

	// dir is the directory containing the sources.
	dir string

	// outputPath is the path to write the compiled module to.  It is empty if
	// the default output path should be used.  It is only used if there is a
	// single source.
	outputPath string

	// format is the output format.
	format string
}

// source is a single source file of a build target.
type source struct {
	// path is the absolute path to the source file.
	path string

	// reprPath is the path the source file is displayed under.
	reprPath string
}

// loadTarget determines the build target named by the primary argument of a
// command and initializes the reporter.  The argument is either a source file,
// a project directory or a directory of source files.
func loadTarget(result *olive.ArgParseResult) (*buildTarget, bool) {
	// the log level given on the command line takes precedence over the level
	// set by a project
	logLevel, hasLogLevel := report.LogLevelVerbose, false
	if name, ok := result.Arguments["loglevel"]; ok {
		logLevel, hasLogLevel = report.LogLevelFromName(name.(string))
	}
	report.InitReporter(logLevel)

	path, _ := result.PrimaryArg()
	absPath, err := filepath.Abs(path)
	if err != nil {
		report.ReportStdError("Path Error", err)
		return nil, false
	}

	finfo, err := os.Stat(absPath)
	if err != nil {
		report.ReportStdError("Path Error", err)
		return nil, false
	}

	if !finfo.IsDir() {
		return &buildTarget{
			sources: []source{{path: absPath, reprPath: path}},
			dir:     filepath.Dir(absPath),
			format:  common.FormatWAT,
		}, true
	}

	proj, err := mods.LoadProject(absPath)
	if os.IsNotExist(err) {
		return loadSourceDir(absPath)
	} else if err != nil {
		report.ReportStdError("Project Load Error", err)
		return nil, false
	}

	if !hasLogLevel {
		report.SetLogLevel(proj.LogLevel)
	}

	proj.WarnVersionMismatch()

	reprPath, err := filepath.Rel(proj.Root, proj.EntryPath)
	if err != nil {
		reprPath = proj.EntryPath
	}

	return &buildTarget{
		sources:    []source{{path: proj.EntryPath, reprPath: reprPath}},
		dir:        proj.Root,
		outputPath: proj.OutputPath,
		format:     proj.Format,
	}, true
}

// loadSourceDir creates a target from all the source files in a directory
// which does not contain a project.
func loadSourceDir(dir string) (*buildTarget, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		report.ReportStdError("Path Error", err)
		return nil, false
	}

	target := &buildTarget{dir: dir, format: common.FormatWAT}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == common.SrcFileExtension {
			target.sources = append(target.sources, source{
				path:     filepath.Join(dir, entry.Name()),
				reprPath: entry.Name(),
			})
		}
	}

	if len(target.sources) == 0 {
		report.ReportStdError("Path Error", fmt.Errorf("%s contains no project and no source files", dir))
		return nil, false
	}

	return target, true
}
