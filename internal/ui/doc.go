// Package ui holds the terminal output helpers shared by the CLI commands:
// the color palette and symbols, the sparkline used by the dashboard, and
// the tables and progress spinner of `sysmon check`.
//
// Colors are ANSI codes for broad terminal compatibility. DisableColors
// switches lipgloss to the Ascii profile for --no-color and for tests.
package ui
