package system

import (
	"fmt"
	"os"
	"time"

	wifiscand "github.com/dogeorg/wifiscand/pkg"
	"github.com/shirou/gopsutil/v4/process"
)

var _ wifiscand.ProcessMonitor = &ProcessMonitor{}

// ProcessMonitor reports on our own process via gopsutil.
type ProcessMonitor struct {
	pid     int32
	started time.Time
}

func NewProcessMonitor() *ProcessMonitor {
	return &ProcessMonitor{
		pid:     int32(os.Getpid()),
		started: time.Now(),
	}
}

func (t *ProcessMonitor) GetProcessStats() (wifiscand.ProcessStats, error) {
	stats := wifiscand.ProcessStats{
		PID:    t.pid,
		Uptime: time.Since(t.started).Round(time.Second).String(),
	}

	proc, err := process.NewProcess(t.pid)
	if err != nil {
		return stats, fmt.Errorf("cannot inspect process %d: %w", t.pid, err)
	}

	if c, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = c
	}

	if m, err := proc.MemoryPercent(); err == nil {
		stats.MEMPercent = float64(m)
	}

	if memInfo, err := proc.MemoryInfo(); err == nil {
		stats.MEMMb = float64(memInfo.RSS) / float64(1048576)
	}

	return stats, nil
}
