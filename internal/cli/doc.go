// Package cli implements the sysmon command-line interface.
//
// The root command runs the dashboard; subcommands cover setup and
// diagnostics:
//
//	sysmon               - Live dashboard (alternate screen)
//	sysmon --once        - Print a single frame and exit
//	sysmon init          - Create sysmon.yaml
//	sysmon check         - Validate config and sample each source once
//	sysmon version       - Print version information
//
// Config is loaded once before anything is sampled; an invalid config is
// reported as a CONFIG error and the process exits 1. The dashboard exits 0
// when the user quits or on SIGINT/SIGTERM.
package cli
