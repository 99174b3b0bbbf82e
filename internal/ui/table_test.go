package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestRenderSimpleTable(t *testing.T) {
	out := RenderSimpleTable(
		[]TableColumn{{Title: "Name", Width: 12}, {Title: "Status", Width: 8}},
		[][]string{{"database", "up"}, {"cache", "down"}},
	)

	plain := ansi.Strip(out)
	assert.Contains(t, plain, "Name")
	assert.Contains(t, plain, "Status")
	assert.Contains(t, plain, "database")
	assert.Contains(t, plain, "down")
}

func TestRenderSimpleTable_NoRows(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "Name", Width: 4}}, nil))
}

func TestRenderCheckTable(t *testing.T) {
	rows := []CheckRow{
		{Status: StatusPass, Category: "Config", Message: "loaded ./sysmon.yaml"},
		{Status: StatusPass, Category: "Sources", Message: "cpu: 12.0%"},
		{Status: StatusFail, Category: "Sources", Message: "logs: not supported", Suggestion: "install journalctl"},
		{Status: StatusSkip, Category: "Sources", Message: "mounts: disabled", Suggestion: "set sources.mounts: true"},
		{Status: StatusPass, Category: "Config", Message: "thresholds valid", Suggestion: "never shown"},
	}

	out := ansi.Strip(RenderCheckTable(rows))

	assert.Less(t, strings.Index(out, "Config"), strings.Index(out, "Sources"), "categories keep first-seen order")
	assert.Less(t, strings.Index(out, "thresholds valid"), strings.Index(out, "Sources"), "rows are grouped by category")
	assert.Contains(t, out, SymbolFail+" logs: not supported")
	assert.Contains(t, out, "install journalctl")
	assert.NotContains(t, out, "never shown", "passing rows have no suggestion")
}

func TestRenderCheckTable_Empty(t *testing.T) {
	assert.Equal(t, "No checks to display", RenderCheckTable(nil))
}

func TestFailed(t *testing.T) {
	assert.False(t, Failed([]CheckRow{{Status: StatusPass}, {Status: StatusWarn}}))
	assert.True(t, Failed([]CheckRow{{Status: StatusPass}, {Status: StatusFail}}))
}
