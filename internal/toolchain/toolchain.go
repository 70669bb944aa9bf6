// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Toolchain and Tool structures and the evaluation of a
// tool's argument expression into a concrete command.
//
// Why keep Args as an hcl.Expression?
//
// The paths are only known once the CLI has parsed its argument, long after
// the toolchain file was decoded. Holding the expression lets the loader
// validate syntax up front while deferring evaluation until the runner knows
// `source` and `output`. Each evaluated list element becomes exactly one argv
// entry, so nothing is ever re-split or interpreted by a shell.
package toolchain

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/tsrun/internal/executor"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Variable names available inside `args` expressions.
const (
	VarSource = "source"
	VarOutput = "output"
)

// Toolchain is the resolved description of a compile-and-run pipeline.
type Toolchain struct {
	// TargetExtension replaces the source extension to form the output path.
	TargetExtension string
	Compiler        *Tool
	Runtime         *Tool
	// Notify is nil unless a `notify` block was configured.
	Notify *Notify
}

// Tool is one external program invocation.
type Tool struct {
	// Block is the HCL block type that declared the tool ("compiler" or "runtime").
	Block string
	// Name is the block label, used in logs.
	Name           string
	Program        string
	Args           hcl.Expression
	FailureMessage string
}

// Notify configures the Socket.IO stage event publisher.
type Notify struct {
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Command evaluates the tool's argument expression with the given paths and
// returns the command to execute.
func (t *Tool) Command(source, output string) (executor.Command, error) {
	cmd := executor.Command{Name: t.Program}
	if t.Args == nil {
		return cmd, nil
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			VarSource: cty.StringVal(source),
			VarOutput: cty.StringVal(output),
		},
	}
	val, diags := t.Args.Value(evalCtx)
	if diags.HasErrors() {
		return cmd, fmt.Errorf("failed to evaluate %s %q args: %w", t.Block, t.Name, diags)
	}
	if val.IsNull() {
		return cmd, nil
	}

	listVal, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return cmd, fmt.Errorf("%s %q args must be a list of strings: %w", t.Block, t.Name, err)
	}
	if !listVal.IsWhollyKnown() {
		return cmd, fmt.Errorf("%s %q args contain unknown values", t.Block, t.Name)
	}

	var args []string
	if err := gocty.FromCtyValue(listVal, &args); err != nil {
		return cmd, fmt.Errorf("%s %q args: %w", t.Block, t.Name, err)
	}
	cmd.Args = args
	return cmd, nil
}

// Validate checks the invariants the runner relies on.
func (tc *Toolchain) Validate() error {
	ext := tc.TargetExtension
	if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("target_extension %q must start with '.' and name an extension", ext)
	}
	if strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("target_extension %q must not contain a path separator", ext)
	}
	for _, tool := range []*Tool{tc.Compiler, tc.Runtime} {
		if tool == nil {
			return fmt.Errorf("toolchain is missing a tool definition")
		}
		if strings.TrimSpace(tool.Program) == "" {
			return fmt.Errorf("%s %q: command must not be empty", tool.Block, tool.Name)
		}
	}
	if tc.Notify != nil {
		if err := tc.Notify.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notify) validate() error {
	if strings.TrimSpace(n.URL) == "" {
		return fmt.Errorf("notify: url must not be empty")
	}
	if n.Timeout <= 0 {
		return fmt.Errorf("notify: timeout must be positive, got %s", n.Timeout)
	}
	return nil
}
