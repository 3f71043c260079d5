package wgpudrv

import (
	"os"
	"runtime"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

func init() {
	// surfaces and glfw need to stay on the main thread
	runtime.LockOSThread()

	SetLogLevel(os.Getenv("WGPU_LOG_LEVEL"))
}

// SetLogLevel sets the log level of the native driver. Unknown levels are ignored.
func SetLogLevel(level string) {
	switch strings.ToUpper(level) {
	case "OFF":
		wgpu.SetLogLevel(wgpu.LogLevelOff)
	case "ERROR":
		wgpu.SetLogLevel(wgpu.LogLevelError)
	case "WARN":
		wgpu.SetLogLevel(wgpu.LogLevelWarn)
	case "INFO":
		wgpu.SetLogLevel(wgpu.LogLevelInfo)
	case "DEBUG":
		wgpu.SetLogLevel(wgpu.LogLevelDebug)
	case "TRACE":
		wgpu.SetLogLevel(wgpu.LogLevelTrace)
	}
}
