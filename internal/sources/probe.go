package sources

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// probeTCP connects to a host:port address.
func probeTCP(ctx context.Context, addr string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return "connected", nil
}

// probeHTTP issues a GET and treats any status below 500 as running.
func probeHTTP(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "sysmon")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.Status, fmt.Errorf("HTTP %s", resp.Status)
	}
	return resp.Status, nil
}

// probeProcess looks for a process whose comm or argv[0] basename equals name.
func probeProcess(ctx context.Context, proc ProcFS, name string) (string, error) {
	entries, err := os.ReadDir(proc.Path(""))
	if err != nil {
		return "", err
	}

	matches := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(e.Name()); err != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if processMatches(proc, e.Name(), name) {
			matches++
		}
	}

	if matches == 0 {
		return "", fmt.Errorf("no running process named %q", name)
	}
	if matches == 1 {
		return "1 process", nil
	}
	return fmt.Sprintf("%d processes", matches), nil
}

func processMatches(proc ProcFS, pid, name string) bool {
	// Processes exit mid-scan; unreadable entries simply don't match.
	if comm, err := os.ReadFile(proc.Path(filepath.Join(pid, "comm"))); err == nil {
		if strings.TrimSpace(string(comm)) == name {
			return true
		}
	}
	cmdline, err := os.ReadFile(proc.Path(filepath.Join(pid, "cmdline")))
	if err != nil || len(cmdline) == 0 {
		return false
	}
	argv0, _, _ := strings.Cut(string(cmdline), "\x00")
	return filepath.Base(argv0) == name
}

// probeSystemd asks systemctl whether a unit is active.
func probeSystemd(ctx context.Context, runner Runner, unit string) (string, error) {
	out, err := runner.Run(ctx, "systemctl", "is-active", unit)

	// is-active prints the state and exits non-zero for anything but
	// "active", so the printed state wins over the exit status.
	state, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	switch {
	case state == "active":
		return state, nil
	case state != "":
		return state, fmt.Errorf("unit is %s", state)
	case err != nil:
		return "", err
	default:
		return "", errors.New("systemctl returned no state")
	}
}
