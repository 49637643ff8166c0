//go:build windows

package sandbox

import "os/exec"

// configureProcessGroup is a no-op on Windows; the default context
// cancellation kills the direct child and WaitDelay unblocks Run if a
// subprocess still holds the output pipes.
func configureProcessGroup(cmd *exec.Cmd) {}
