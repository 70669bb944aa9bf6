// Package executor defines the process-execution interface the runner uses to
// launch the compiler and the runtime.
//
// Commands are always an explicit argument vector. Nothing in this package or
// its implementations goes through a shell, so paths containing spaces or
// shell metacharacters reach the child process verbatim.
package executor
