// Package sysinfo probes the local host the same way the ops tooling does:
// by shelling out. The only failure semantics are "command failed".
package sysinfo

import (
	"fmt"
	"os/exec"
	"strings"
)

// IP returns the local address the default route would use.
func IP() (string, error) {
	return run(`ip route get 8.8.8.8 | awk '{printf "%s", $NF; exit}'`)
}

// Hostname returns the short hostname.
func Hostname() (string, error) {
	return run(`hostname | awk '{printf "%s", $NF; exit}'`)
}

func run(script string) (string, error) {
	out, err := exec.Command("sh", "-c", script).Output()
	if err != nil {
		return "", fmt.Errorf("sysinfo command failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
