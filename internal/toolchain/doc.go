// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package toolchain describes the two external collaborators of a run: the
// compiler that turns the source file into JavaScript and the runtime that
// executes the result.
//
// The description is written in HCL. A built-in default reproduces the classic
// `npx tsc <source> --out <output>` followed by `node <output>`; user files
// passed with -toolchain override it block by block. Arguments are kept as
// raw HCL expressions and evaluated per run with the `source` and `output`
// variables in scope, which is what lets a single file express both argument
// order and flag spelling without any string templating.
package toolchain
