// Package doctor provides environment preflight checks for pipertts.
package doctor

import (
	"fmt"
	"io"
	"os"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// ProbeFunc runs one probe and returns a short human-readable detail string.
type ProbeFunc func() (string, error)

// Check is a named loader probe, e.g. parsing the pronunciation dictionary.
type Check struct {
	Name  string
	Probe ProbeFunc
}

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// ORTLibrary locates the ONNX Runtime shared library and reports its
	// path and version.
	ORTLibrary ProbeFunc
	// ModelFiles is the list of model and lookup-table paths to verify on
	// disk.
	ModelFiles []string
	// Checks are loader probes run after the file checks. Each one parses
	// a resource end to end.
	Checks []Check
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	// ---- ONNX Runtime library ---------------------------------------------
	if cfg.ORTLibrary != nil {
		detail, err := cfg.ORTLibrary()
		if err != nil {
			res.fail(fmt.Sprintf("onnxruntime library: %v", err))
			fmt.Fprintf(w, "%s onnxruntime library: not found (%v)\n", FailMark, err)
		} else {
			fmt.Fprintf(w, "%s onnxruntime library: %s\n", PassMark, detail)
		}
	}

	// ---- model and table files --------------------------------------------
	for _, path := range cfg.ModelFiles {
		if _, err := os.Stat(path); err != nil {
			res.fail(fmt.Sprintf("model file %q: %v", path, err))
			fmt.Fprintf(w, "%s model file %s: not found\n", FailMark, path)
		} else {
			fmt.Fprintf(w, "%s model file: %s\n", PassMark, path)
		}
	}

	// ---- loader probes ----------------------------------------------------
	for _, c := range cfg.Checks {
		detail, err := c.Probe()
		if err != nil {
			res.fail(fmt.Sprintf("%s: %v", c.Name, err))
			fmt.Fprintf(w, "%s %s: %v\n", FailMark, c.Name, err)
		} else {
			fmt.Fprintf(w, "%s %s: %s\n", PassMark, c.Name, detail)
		}
	}

	return res
}
