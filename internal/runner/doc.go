// Package runner implements the compile-then-run pipeline.
//
// A run moves through AwaitingArgs, Compiling, Running and Done. Any stage may
// end in Failed instead, and no stage is ever retried or revisited. The run
// command is only built after the compiler has exited with status 0.
package runner
