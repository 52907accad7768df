//go:build !unix

package proc

import (
	"os"
	"os/exec"
)

func startInOwnGroup(cmd *exec.Cmd) {}

// killTree only reaches the direct child on platforms without process groups.
func killTree(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

func exitSignal(state *os.ProcessState) *int { return nil }
