package server

import (
	"path/filepath"
	"strconv"
)

// LaunchSpec describes how to start one server implementation: the
// command, its startup arguments, the working directory, and the port
// the server will listen on.
type LaunchSpec struct {
	Label   string
	Command string
	Args    []string
	Dir     string
	Port    int
}

// CandidateSpec returns the launch configuration for the native
// candidate binary: in-memory persistence and silenced logging so the
// benchmark measures request handling, not disk or log I/O.
func CandidateSpec(binPath string, port int) LaunchSpec {
	return LaunchSpec{
		Label:   "azurite-rs",
		Command: binPath,
		Args: []string{
			"--blob-port", strconv.Itoa(port),
			"--in-memory",
			"--silent",
		},
		Port: port,
	}
}

// BaselineSpec returns the launch configuration for the Azurite
// (Node.js) baseline from a checkout directory. The API version check
// is skipped so newer SDK clients are accepted.
func BaselineSpec(azuriteDir string, port int) LaunchSpec {
	return LaunchSpec{
		Label:   "azurite",
		Command: "node",
		Args: []string{
			filepath.Join(azuriteDir, "dist", "src", "blob", "main.js"),
			"--blobPort", strconv.Itoa(port),
			"--inMemoryPersistence",
			"--silent",
			"--skipApiVersionCheck",
		},
		Dir:  azuriteDir,
		Port: port,
	}
}
