package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// ProbeResult is the outcome of one preflight check.
type ProbeResult struct {
	Name  string
	OK    bool
	Error string
}

// Doctor runs the preflight probes concurrently: every binary the toolchain
// requires resolves on PATH, the project directory exists, and the manifest
// and entry point are present. Diagnostic only — nothing is created or
// modified, and a failed probe does not cancel the others.
func (b *Bootstrapper) Doctor(ctx context.Context) []ProbeResult {
	type probe struct {
		name string
		fn   func() error
	}

	probes := []probe{
		{name: "project-dir", fn: func() error { return statDir(b.projectDir) }},
		{name: "manifest", fn: func() error { return statFile(filepath.Join(b.projectDir, b.opts.Manifest)) }},
		{name: "entry", fn: func() error { return statFile(filepath.Join(b.projectDir, b.opts.Entry)) }},
	}
	for _, bin := range b.toolchain.Requires() {
		probes = append(probes, probe{name: "binary:" + bin, fn: func() error {
			_, err := b.run.LookPath(bin)
			return err
		}})
	}

	results := make([]ProbeResult, len(probes))

	var g errgroup.Group
	for i, p := range probes {
		g.Go(func() error {
			res := ProbeResult{Name: p.name, OK: true}
			err := ctx.Err()
			if err == nil {
				err = p.fn()
			}
			if err != nil {
				res.OK = false
				res.Error = err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait() // probe funcs never return errors

	return results
}

// Healthy reports whether every probe passed.
func Healthy(results []ProbeResult) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

func statDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func statFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
