// Package logging wraps github.com/luxfi/log with a small Fields helper
// that pet/phase uses to tag its round-scoped structured logs with the
// same round_id/phase keys (pet/rpc and pet/httpapi log plain key-value
// pairs without it), the way the teacher's validator and
// acceptor packages thread a single log.Logger field through and call
// Info/Warn/Error with inline key-value pairs.
package logging

import (
	"github.com/luxfi/log"
)

// Logger is the interface every component in this module takes, never
// constructs, github.com/luxfi/log's own Logger.
type Logger = log.Logger

// NewNoOpLogger returns a Logger that discards everything, the default
// used in tests and anywhere a caller hasn't wired a real logger.
func NewNoOpLogger() Logger {
	return log.NewNoOpLogger()
}

// New returns a named Logger for component name, the constructor
// cmd/coordinator uses to build its real (non-test) logger.
func New(name string) Logger {
	return log.NewLogger(name)
}

// Fields builds the key-value pairs this module's components pass to
// Logger.Info/Warn/Error, keeping the round_id/phase tagging convention
// uniform across packages.
func Fields(roundID, phase string, extra ...interface{}) []interface{} {
	fields := make([]interface{}, 0, 4+len(extra))
	fields = append(fields, "round_id", roundID, "phase", phase)
	fields = append(fields, extra...)
	return fields
}
