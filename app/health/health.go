// Package health reports host resources of the workstation PC running the terminal.
// The report is informational, terminal operations never depend on it.
package health

import (
	"context"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Status of the report
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Thresholds define when the host is considered degraded. Zero value disables a check.
type Thresholds struct {
	MemoryBelow   int     // used memory percent must stay below
	LoadAvgBelow  float64 // 1 minute load average must stay below
	DiskFreeAbove int     // free disk percent on DiskPath must stay above
	CPUBelow      int     // cpu usage percent must stay below
	DiskPath      string  // path to check free space for, "/" if empty
}

// Report is a snapshot of host resources
type Report struct {
	Status      string    `json:"status"`
	MemoryUsed  int       `json:"memory_used_percent"`
	LoadAvg1    float64   `json:"load_avg_1"`
	DiskFree    int       `json:"disk_free_percent"`
	DiskPath    string    `json:"disk_path"`
	CPUUsed     int       `json:"cpu_used_percent"`
	Problems    []string  `json:"problems,omitempty"`
	CollectedAt time.Time `json:"collected_at"`
}

// Healthy returns true if no threshold was crossed
func (r Report) Healthy() bool {
	return r.Status == StatusOK
}

// Checker collects host metrics with gopsutil and compares them with thresholds
type Checker struct {
	thresholds Thresholds

	memUsed  func(ctx context.Context) (float64, error)
	loadAvg  func(ctx context.Context) (float64, error)
	diskUsed func(ctx context.Context, path string) (float64, error)
	cpuUsed  func(ctx context.Context) (float64, error)
	now      func() time.Time
}

// NewChecker makes a checker reading real host metrics
func NewChecker(th Thresholds) *Checker {
	if th.DiskPath == "" {
		th.DiskPath = "/"
	}
	return &Checker{
		thresholds: th,
		memUsed: func(ctx context.Context) (float64, error) {
			v, err := mem.VirtualMemoryWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return v.UsedPercent, nil
		},
		loadAvg: func(ctx context.Context) (float64, error) {
			l, err := load.AvgWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return l.Load1, nil
		},
		diskUsed: func(ctx context.Context, path string) (float64, error) {
			u, err := disk.UsageWithContext(ctx, path)
			if err != nil {
				return 0, err
			}
			return u.UsedPercent, nil
		},
		cpuUsed: func(ctx context.Context) (float64, error) {
			// zero interval compares with the previous call, no blocking in request path
			pct, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil {
				return 0, err
			}
			if len(pct) == 0 {
				return 0, fmt.Errorf("no cpu data available")
			}
			return pct[0], nil
		},
		now: time.Now,
	}
}

// Check collects the report. Failure to read a metric is a problem but not an error,
// the report is always returned.
func (c *Checker) Check(ctx context.Context) Report {
	th := c.thresholds
	res := Report{Status: StatusOK, DiskPath: th.DiskPath, CollectedAt: c.now()}
	problem := func(format string, args ...any) {
		res.Problems = append(res.Problems, fmt.Sprintf(format, args...))
	}

	if v, err := c.memUsed(ctx); err != nil {
		problem("failed to get memory: %v", err)
	} else {
		res.MemoryUsed = int(v)
		if th.MemoryBelow > 0 && res.MemoryUsed >= th.MemoryBelow {
			problem("memory at %d%%, threshold %d%%", res.MemoryUsed, th.MemoryBelow)
		}
	}

	if v, err := c.loadAvg(ctx); err != nil {
		problem("failed to get load average: %v", err)
	} else {
		res.LoadAvg1 = v
		if th.LoadAvgBelow > 0 && v >= th.LoadAvgBelow {
			problem("load at %.2f, threshold %.2f", v, th.LoadAvgBelow)
		}
	}

	if v, err := c.diskUsed(ctx, th.DiskPath); err != nil {
		problem("failed to get disk usage for %s: %v", th.DiskPath, err)
	} else {
		res.DiskFree = 100 - int(v)
		if th.DiskFreeAbove > 0 && res.DiskFree < th.DiskFreeAbove {
			problem("disk free at %d%%, need %d%% on %s", res.DiskFree, th.DiskFreeAbove, th.DiskPath)
		}
	}

	if v, err := c.cpuUsed(ctx); err != nil {
		problem("failed to get cpu: %v", err)
	} else {
		res.CPUUsed = int(v)
		if th.CPUBelow > 0 && res.CPUUsed >= th.CPUBelow {
			problem("cpu at %d%%, threshold %d%%", res.CPUUsed, th.CPUBelow)
		}
	}

	if len(res.Problems) > 0 {
		res.Status = StatusDegraded
		log.Printf("[DEBUG] host degraded: %v", res.Problems)
	}
	return res
}
