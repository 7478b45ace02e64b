//go:build !unix

package process

import "os"

// Processes on these platforms do not report termination signals; a killed
// child shows up as exit code -1.
func signalName(state *os.ProcessState) (string, bool) {
	if state == nil || state.ExitCode() != -1 {
		return "", false
	}
	return "killed", true
}
