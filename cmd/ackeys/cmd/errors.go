package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corey/ackeys/internal/config"
	"github.com/corey/ackeys/internal/ports"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ports.ErrUnavailable) && strings.Contains(err.Error(), "timeout")
}

// diagnoseStore returns actionable guidance when the store cannot be
// opened, or "" when err is not an availability problem.
func diagnoseStore(err error, cfg *config.Config, root string) string {
	if !errors.Is(err, ports.ErrUnavailable) {
		return ""
	}
	switch cfg.Store.Backend {
	case config.BackendBbolt:
		if !isDBLockError(err) {
			return fmt.Sprintf("database is not available: %v", err)
		}
		return "database is locked by another process\n" +
			"  → a running 'ackeys watch' holds it; stop that first\n" +
			"  → find the process:  ps aux | grep 'ackeys'\n" +
			"  → kill it:           kill <PID>\n" +
			"  → then retry your command"
	case config.BackendRedis:
		return fmt.Sprintf("redis at %s is not reachable\n"+
			"  → start it:         redis-server\n"+
			"  → or point at one:  ACKEYS_REDIS_ADDR=host:port\n"+
			"  → or go local:      --backend bbolt", cfg.Redis.Addr)
	}
	return err.Error()
}

// hintError shows guidance in place of a store error while keeping the store
// error in the chain, so errors.Is(err, ports.ErrUnavailable) still holds.
type hintError struct {
	op   string
	hint string
	err  error
}

func (e *hintError) Error() string { return fmt.Sprintf("cannot %s: %s", e.op, e.hint) }
func (e *hintError) Unwrap() error { return e.err }
