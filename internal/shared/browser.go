package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// getRuntime is swapped in tests to exercise each platform branch.
var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser hands url to the system browser. Used for web app pages and
// for the payment provider's hosted checkout URL.
//
// The launcher binary differs per platform; an unrecognized platform is an
// error rather than a guess.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	rt := getRuntime()
	switch rt {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
