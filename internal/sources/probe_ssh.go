package sources

import (
	"context"
	"net"
	"strings"

	"github.com/kevinburke/ssh_config"
	"golang.org/x/crypto/ssh"
)

// ResolveSSHTarget turns an ssh check target into a host:port address.
// Targets may be "host", "user@host", "host:port", or an alias from
// ~/.ssh/config, whose HostName and Port are honored.
func ResolveSSHTarget(target string) string {
	if _, host, ok := strings.Cut(target, "@"); ok {
		target = host
	}
	if _, _, err := net.SplitHostPort(target); err == nil {
		return target
	}

	host := target
	if h := strings.TrimSpace(ssh_config.Get(target, "HostName")); h != "" {
		host = h
	}
	port := strings.TrimSpace(ssh_config.Get(target, "Port"))
	if port == "" {
		port = "22"
	}
	return net.JoinHostPort(host, port)
}

// probeSSH completes an SSH key exchange with the server at addr. A server
// that finishes key exchange and then rejects authentication is running; no
// credentials are ever offered.
func probeSSH(ctx context.Context, addr string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var hostKeyType string
	cfg := &ssh.ClientConfig{
		User: "sysmon",
		HostKeyCallback: func(_ string, _ net.Addr, key ssh.PublicKey) error {
			hostKeyType = key.Type()
			return nil
		},
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		if hostKeyType != "" && ctx.Err() == nil {
			return hostKeyType, nil
		}
		return "", err
	}
	_ = ssh.NewClient(c, chans, reqs).Close()
	return hostKeyType, nil
}
