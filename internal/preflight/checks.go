package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"deepart/internal/deepart"
)

const serviceCheckTimeout = 15 * time.Second

// CheckService verifies the effect service answers and offers at least one
// effect for mediaType. A single attempt is made.
func CheckService(ctx context.Context, service deepart.Service, mediaType string) Result {
	const name = "Effect service"

	checkCtx, cancel := context.WithTimeout(ctx, serviceCheckTimeout)
	defer cancel()

	effects, err := service.ListEffects(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeServiceError(err)}
	}
	usable := deepart.FilterByMediaType(effects, mediaType)
	if len(usable) == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("no %s effects available", mediaType)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d %s effect(s) available", len(usable), mediaType)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWritableDirectory is CheckDirectoryAccess for directories the run may
// create. A missing path passes when its nearest existing ancestor is
// writable.
func CheckWritableDirectory(name, path string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}

	parent := filepath.Dir(filepath.Clean(path))
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	result := CheckDirectoryAccess(name, parent)
	if !result.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s cannot be created: %s", path, result.Detail)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

func summarizeServiceError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out (service unreachable)"
	}
	var statusErr *deepart.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("service answered %d", statusErr.StatusCode)
	}
	return err.Error()
}
