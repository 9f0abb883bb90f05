package version

import (
	"fmt"
	"runtime"
)

var CommitHash = "unknown"
var BuildTime = "1970-01-01T00:00:00Z"
var Version = "0.0.0"
var BinaryName = "rhoai-mcp-server"

// UserAgent is sent with every request to the Kubernetes API server.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s/%s) %s", BinaryName, Version, runtime.GOOS, runtime.GOARCH, CommitHash)
}
