// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emit selects and writes the output destination for a rendered
// document: stdout, a separate file, the input file in place, or an append
// to an existing file.
package emit

import (
	"fmt"
	"io"
	"os"
)

// Options captures the destination flags of a run. The combinations are
// mutually exclusive and validated before any input is read.
type Options struct {
	// InputPath is the source transcript; it becomes the destination when
	// InPlace is set.
	InputPath string

	// OutputPath is the destination file. Empty means stdout unless
	// InPlace is set.
	OutputPath string

	// InPlace overwrites the input file with the rendered output.
	InPlace bool

	// Append appends to OutputPath instead of truncating it.
	Append bool
}

// Validate rejects conflicting destination selections.
func (o Options) Validate() error {
	if o.InPlace && o.OutputPath != "" {
		return fmt.Errorf("--in-place cannot be combined with --output")
	}
	if o.InPlace && o.Append {
		return fmt.Errorf("--in-place cannot be combined with --append")
	}
	if o.Append && o.OutputPath == "" {
		return fmt.Errorf("--append requires --output to be specified")
	}
	return nil
}

// Resolve returns the destination path, or an empty string when the output
// goes to stdout.
func (o Options) Resolve() string {
	if o.InPlace {
		return o.InputPath
	}
	return o.OutputPath
}

// Emit writes text to the destination selected by the options. stdout is
// the writer used when no file destination is configured.
func Emit(o Options, text string, stdout io.Writer) error {
	path := o.Resolve()
	if path == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}
	return writeFile(path, text, o.Append)
}

// EmitExact writes text to the selected destination byte for byte, without
// appending a final newline, so the caller's trailing-newline choice survives.
// Append mode is not supported; appenders need the separator handling of Emit.
func EmitExact(o Options, text string, stdout io.Writer) error {
	if o.Append {
		return fmt.Errorf("append is not supported for exact output")
	}
	path := o.Resolve()
	if path == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeFile writes text plus a final newline. In append mode a blank-line
// separator is inserted first when the file already has content; a missing
// file is created without one.
func writeFile(path, text string, appendMode bool) error {
	if !appendMode {
		if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		return nil
	}

	var separator string
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		separator = "\n\n"
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(separator + text + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return f.Close()
}
