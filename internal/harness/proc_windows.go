//go:build windows

package harness

import (
	"errors"
	"os/exec"
	"strconv"
	"syscall"
)

// setProcessGroup starts the editor in its own process group, away from the
// harness console's Ctrl-C handling.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// signalGroup ends the editor and every process it spawned with taskkill /T.
// Without kill the editor is asked to close; with kill the tree is forced down.
func signalGroup(cmd *exec.Cmd, kill bool) error {
	if cmd.Process == nil {
		return nil
	}
	err := exec.Command("taskkill", taskkillArgs(cmd.Process.Pid, kill)...).Run()
	if err != nil && kill {
		// taskkill missing or refused: at least take the editor down.
		return errors.Join(err, cmd.Process.Kill())
	}
	return err
}

func taskkillArgs(pid int, kill bool) []string {
	args := []string{"/T", "/PID", strconv.Itoa(pid)}
	if kill {
		args = append([]string{"/F"}, args...)
	}
	return args
}
