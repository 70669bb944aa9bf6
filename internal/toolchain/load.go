// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file decodes toolchain HCL files and merges them over the built-in
// default.
//
// Why merge block by block?
//
// Most users only want to swap one collaborator (say, `bun` instead of
// `node`). Replacing whole blocks keeps the rule simple: a `compiler` block in
// a user file replaces the default compiler entirely, anything the file does
// not mention keeps its previous value. Later files win over earlier ones.
package toolchain

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/tsrun/internal/ctxlog"
	"github.com/vk/tsrun/internal/fsutil"
)

// Default failure messages, printed on standard output when a stage fails.
const (
	DefaultCompileFailure = "Error: TypeScript compilation failed."
	DefaultRunFailure     = "Error: JavaScript execution failed."
)

const (
	defaultNotifyNamespace = "/"
	defaultNotifyEvent     = "pipeline-stage"
	defaultNotifyTimeout   = 5 * time.Second
)

const defaultHCL = `
target_extension = ".js"

compiler "tsc" {
  command         = "npx"
  args            = ["tsc", source, "--out", output]
  failure_message = "Error: TypeScript compilation failed."
}

runtime "node" {
  command         = "node"
  args            = [output]
  failure_message = "Error: JavaScript execution failed."
}
`

// hclFile represents the top-level structure of a toolchain file for decoding.
type hclFile struct {
	TargetExtension *string    `hcl:"target_extension,optional"`
	Compiler        *hclTool   `hcl:"compiler,block"`
	Runtime         *hclTool   `hcl:"runtime,block"`
	Notify          *hclNotify `hcl:"notify,block"`
}

type hclTool struct {
	Name           string         `hcl:"name,label"`
	Command        string         `hcl:"command"`
	Args           hcl.Expression `hcl:"args,optional"`
	FailureMessage *string        `hcl:"failure_message,optional"`
}

type hclNotify struct {
	URL                string  `hcl:"url"`
	Namespace          *string `hcl:"namespace,optional"`
	Event              *string `hcl:"event,optional"`
	Timeout            *string `hcl:"timeout,optional"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify,optional"`
}

// Default returns the built-in toolchain: `npx tsc <source> --out <output>`
// followed by `node <output>`.
func Default() *Toolchain {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL([]byte(defaultHCL), "default.hcl")
	if diags.HasErrors() {
		panic(fmt.Errorf("built-in toolchain does not parse: %w", diags))
	}
	tc := &Toolchain{}
	if err := tc.merge(f.Body, "default.hcl"); err != nil {
		panic(err)
	}
	return tc
}

// Load starts from Default and merges every .hcl file found under paths. Each
// path may be a single file or a directory searched recursively.
func Load(ctx context.Context, paths ...string) (*Toolchain, error) {
	logger := ctxlog.FromContext(ctx)
	tc := Default()
	if len(paths) == 0 {
		logger.Debug("No toolchain files given, using built-in toolchain.")
		return tc, nil
	}

	parser := hclparse.NewParser()
	for _, path := range paths {
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find toolchain files in %s: %w", path, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no .hcl toolchain files found in %s", path)
		}

		for _, file := range files {
			f, diags := parser.ParseHCLFile(file)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to parse toolchain file %s: %w", file, diags)
			}
			if err := tc.merge(f.Body, file); err != nil {
				return nil, err
			}
			logger.Debug("Toolchain file merged.", "file", file)
		}
	}

	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid toolchain: %w", err)
	}

	logger.Debug("Toolchain loaded.",
		"compiler", tc.Compiler.Program,
		"runtime", tc.Runtime.Program,
		"target_extension", tc.TargetExtension,
		"notify", tc.Notify != nil,
	)
	return tc, nil
}

// merge decodes body and overlays every block it declares onto tc.
func (tc *Toolchain) merge(body hcl.Body, filename string) error {
	var f hclFile
	if diags := gohcl.DecodeBody(body, nil, &f); diags.HasErrors() {
		return fmt.Errorf("failed to decode toolchain file %s: %w", filename, diags)
	}

	if f.TargetExtension != nil {
		tc.TargetExtension = *f.TargetExtension
	}
	if f.Compiler != nil {
		tc.Compiler = f.Compiler.toTool("compiler", tc.Compiler, DefaultCompileFailure)
	}
	if f.Runtime != nil {
		tc.Runtime = f.Runtime.toTool("runtime", tc.Runtime, DefaultRunFailure)
	}
	if f.Notify != nil {
		n, err := f.Notify.toNotify()
		if err != nil {
			return fmt.Errorf("toolchain file %s: %w", filename, err)
		}
		tc.Notify = n
	}
	return nil
}

// toTool converts a decoded block, inheriting the failure message of the tool
// it replaces when none is given.
func (h *hclTool) toTool(block string, previous *Tool, fallback string) *Tool {
	msg := fallback
	if previous != nil && previous.FailureMessage != "" {
		msg = previous.FailureMessage
	}
	if h.FailureMessage != nil {
		msg = *h.FailureMessage
	}
	return &Tool{
		Block:          block,
		Name:           h.Name,
		Program:        h.Command,
		Args:           h.Args,
		FailureMessage: msg,
	}
}

func (h *hclNotify) toNotify() (*Notify, error) {
	n := &Notify{
		URL:       h.URL,
		Namespace: defaultNotifyNamespace,
		Event:     defaultNotifyEvent,
		Timeout:   defaultNotifyTimeout,
	}
	if h.Namespace != nil {
		n.Namespace = *h.Namespace
	}
	if h.Event != nil {
		n.Event = *h.Event
	}
	if h.Timeout != nil {
		d, err := time.ParseDuration(*h.Timeout)
		if err != nil {
			return nil, fmt.Errorf("notify: invalid timeout %q: %w", *h.Timeout, err)
		}
		n.Timeout = d
	}
	if h.InsecureSkipVerify != nil {
		n.InsecureSkipVerify = *h.InsecureSkipVerify
	}
	return n, nil
}
