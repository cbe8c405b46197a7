package report

import (
	"errors"
)

// NOTE: All report functions will only display if the appropriate log level is
// set.  Most report functions will simply fail silently if below their
// appropriate log level.

// ReportCompileError reports an error produced by compiling a source file. The
// absPath is the path used to display the erroneous source text (it may be
// empty if the source did not come from a file).  The reprPath is the name the
// file is displayed under.
func ReportCompileError(absPath, reprPath string, err error) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	if rep.logLevel == LogLevelSilent {
		return
	}

	displayEndPhase(false)

	var pe *ParseError
	var ge *GenError
	switch {
	case errors.As(err, &pe):
		displayCompileMessage("Syntax", absPath, reprPath, pe.Line, pe.Message)
	case errors.As(err, &ge):
		displayCompileMessage("Codegen", absPath, reprPath, 0, ge.Message)
	default:
		PrintErrorMessage(reprPath, err)
	}
}

// ReportWarning reports a non-fatal problem: eg. a project file written for a
// different compiler version.
func ReportWarning(tag, msg string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.warningCount++

	if rep.logLevel >= LogLevelWarn {
		PrintWarningMessage(tag, msg)
	}
}

// ReportStdError reports a standard Go error such as a failure to read a file
// or a bad command line argument.
func ReportStdError(tag string, err error) {
	rep.m.Lock()
	defer rep.m.Unlock()

	rep.errorCount++

	if rep.logLevel > LogLevelSilent {
		displayEndPhase(false)
		PrintErrorMessage(tag, err)
	}
}

// -----------------------------------------------------------------------------
// Below are all the "aesthetic" reporting functions that will only run if the
// log level is to verbose.

// ReportCompileHeader reports the pre-compilation header: the compiler version
// and the selected output format.
func ReportCompileHeader(format string) {
	if rep.logLevel == LogLevelVerbose {
		displayCompileHeader(format)
	}
}

// ReportBeginPhase reports the beginning of a compilation phase.
func ReportBeginPhase(phase string) {
	if rep.logLevel == LogLevelVerbose {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayBeginPhase(phase)
	}
}

// ReportEndPhase reports the end of the current compilation phase.
func ReportEndPhase() {
	if rep.logLevel == LogLevelVerbose {
		rep.m.Lock()
		defer rep.m.Unlock()

		displayEndPhase(rep.errorCount == 0)
	}
}

// ReportCompilationFinished reports the concluding message for compilation.
func ReportCompilationFinished(outputPath string) {
	rep.m.Lock()
	defer rep.m.Unlock()

	if rep.logLevel == LogLevelVerbose {
		displayCompilationFinished(rep.errorCount == 0, rep.errorCount, rep.warningCount, outputPath)
	}
}
