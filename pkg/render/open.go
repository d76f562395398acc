package render

import (
	"os/exec"
	"runtime"

	"github.com/matzehuels/cddiagram/pkg/errors"
)

// openerCommand returns the command that opens path with the desktop's
// default application on goos.
func openerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// startDetached launches a command without waiting for it.
var startDetached = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// Open shows path in the default viewer. It returns as soon as the viewer
// has been launched.
func Open(path string) error {
	name, args := openerCommand(runtime.GOOS, path)
	if _, err := exec.LookPath(name); err != nil {
		return errors.Wrap(errors.ErrCodeUnsupported, err, "no viewer available (%s not found)", name)
	}
	if err := startDetached(name, args...); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	return nil
}
