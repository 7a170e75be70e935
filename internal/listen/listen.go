package listen

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// DefaultPort is used when a listen value names no port.
const DefaultPort = "8080"

// Config is a normalized listen target. A disabled Config serves nothing.
type Config struct {
	Host    string
	Port    string
	Disable bool
}

// Default listens on all interfaces at DefaultPort.
func Default() Config {
	return Config{Port: DefaultPort}
}

// Parse normalizes a --listen value. Blank disables serving; "8081", ":8081",
// "host", "host:8081", "[::1]" and "[::1]:8081" are accepted.
func Parse(raw string) (Config, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Config{Disable: true}, nil
	}

	host, port := value, ""
	switch {
	case isDigits(value):
		host, port = "", value
	case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"):
		host = value[1 : len(value)-1]
	case strings.Count(value, ":") == 1 || strings.HasPrefix(value, "["):
		h, p, err := net.SplitHostPort(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid listen address %q: %w", value, err)
		}
		host, port = h, p
	}

	if port == "" {
		port = DefaultPort
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return Config{}, fmt.Errorf("invalid listen port %q", port)
	}
	return Config{Host: strings.TrimSpace(host), Port: port}, nil
}

// Address returns the bind string for net/http.
func (c Config) Address() string {
	if c.Disable {
		return ""
	}
	if c.Host == "" {
		return ":" + c.Port
	}
	return net.JoinHostPort(c.Host, c.Port)
}

// DisplayURL renders the URL a browser should open.
func (c Config) DisplayURL() string {
	if c.Disable {
		return ""
	}
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, c.Port) + "/"
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// OpenURL launches the platform browser on url.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("open browser: unsupported platform %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open browser on %s: %w", runtime.GOOS, err)
	}
	return nil
}
