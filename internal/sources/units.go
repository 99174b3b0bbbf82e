package sources

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/rileyhilliard/sysmon/internal/metrics"
)

// FailedUnit is one row of `systemctl list-units --failed`.
type FailedUnit struct {
	Name   string
	Load   string
	Active string
	Sub    string
}

// ParseFailedUnits parses plain, legend-less list-units output.
func ParseFailedUnits(out string) []FailedUnit {
	var units []FailedUnit

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		// Older systemd prints a status bullet even with --plain.
		if len(fields) > 0 && (fields[0] == "●" || fields[0] == "*") {
			fields = fields[1:]
		}
		if len(fields) < 4 {
			continue
		}
		units = append(units, FailedUnit{
			Name:   fields[0],
			Load:   fields[1],
			Active: fields[2],
			Sub:    fields[3],
		})
	}
	return units
}

// failedUnits lists units systemd reports as failed, each as a not-running
// service. A host without systemctl contributes nothing; any other listing
// error becomes a single failed "systemd" row.
func (s *ServiceSource) failedUnits(ctx context.Context) []metrics.ServiceStatus {
	out, err := s.runner.Run(ctx, "systemctl", "list-units", "--failed", "--no-legend", "--no-pager", "--plain")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || ctx.Err() != nil {
			s.log.Debug("failed units unavailable: %v", err)
			return nil
		}
		return []metrics.ServiceStatus{{
			Name:      "systemd",
			Kind:      metrics.ServiceSystemd,
			Target:    "list-units --failed",
			LastError: "failed to list units: " + err.Error(),
		}}
	}

	units := ParseFailedUnits(string(out))
	statuses := make([]metrics.ServiceStatus, 0, len(units))
	for _, u := range units {
		statuses = append(statuses, metrics.ServiceStatus{
			Name:      u.Name,
			Kind:      metrics.ServiceSystemd,
			Target:    u.Name,
			LastError: "unit " + u.Active,
			Detail:    u.Load + "/" + u.Active + "/" + u.Sub,
		})
	}
	return statuses
}
