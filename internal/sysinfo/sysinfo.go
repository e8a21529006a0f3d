// Package sysinfo reports host CPU and memory capacity, used by the
// orchestrator to size its worker pool before fanning out.
package sysinfo

import (
	proc "github.com/c9s/goprocinfo/linux"
)

// Snapshot is a point-in-time read of host capacity.
type Snapshot struct {
	CPUCount    int
	MemTotalKB  uint64
	MemFreeKB   uint64
}

// Read gathers a Snapshot from /proc. Errors reading /proc/meminfo are
// non-fatal: the orchestrator only needs CPUCount to size its pool, so a
// failed memory read yields a zeroed memory field rather than an error.
func Read() (Snapshot, error) {
	cpuinfo, err := proc.ReadCPUInfo("/proc/cpuinfo")
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{CPUCount: len(cpuinfo.Processors)}

	if meminfo, err := proc.ReadMemInfo("/proc/meminfo"); err == nil {
		snap.MemTotalKB = meminfo.MemTotal
		snap.MemFreeKB = meminfo.MemFree
	}

	return snap, nil
}

// WorkerCount applies the orchestrator's parallelism policy: one less
// than the detected CPU count, floored at 1.
func (s Snapshot) WorkerCount() int {
	if s.CPUCount <= 1 {
		return 1
	}
	return s.CPUCount - 1
}
