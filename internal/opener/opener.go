// file: internal/opener/opener.go
// version: 1.0.0
// guid: 2c6f9e13-7a48-4d05-b9c1-e4a8d3f07b56

// Package opener hands URLs and files to the platform's default handler.
package opener

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"runtime"

	"github.com/jdfalk/art-roulette/internal/models"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
	OSAndroid = "android"
	OSFreeBSD = "freebsd"
)

// ErrInvalidURL is returned for anything but an absolute http(s) URL.
var ErrInvalidURL = errors.New("not an absolute http(s) URL")

// Runner starts a command and returns once it has been launched.
type Runner func(name string, args ...string) error

// Opener opens deep links. The zero value is not usable; use New.
type Opener struct {
	GOOS string
	Run  Runner
}

// New returns an opener for the running platform.
func New() *Opener {
	return &Opener{GOOS: runtime.GOOS, Run: runCommand}
}

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Command returns the argv that opens target on goos.
func Command(goos, target string) (string, []string, error) {
	switch goos {
	case OSDarwin:
		return "open", []string{target}, nil
	case OSWindows:
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	case OSLinux, OSFreeBSD:
		return "xdg-open", []string{target}, nil
	case OSAndroid:
		return "am", []string{"start", "-a", "android.intent.action.VIEW", "-d", target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// Open opens an artwork's public page in the default browser.
func (o *Opener) Open(url string) error {
	if !models.IsAbsoluteURL(url) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	name, args, err := Command(o.GOOS, url)
	if err != nil {
		return err
	}
	log.Printf("[DEBUG] Opening %s with %s", url, name)
	if err := o.Run(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

// NotifyMediaScanner makes a saved image show up in the Android gallery.
// Other platforms need nothing.
func (o *Opener) NotifyMediaScanner(path string) error {
	if o.GOOS != OSAndroid {
		return nil
	}
	return o.Run("am", "broadcast", "-a", "android.intent.action.MEDIA_SCANNER_SCAN_FILE", "-d", "file://"+path)
}
