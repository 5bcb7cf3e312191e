// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package detect finds the accelerator ollama will run the model on and
// estimates whether a model fits in its memory.
//
// Supported hardware:
//   - NVIDIA (via nvidia-smi)
//   - Apple Silicon (via system_profiler and sysctl on macOS)
//   - CPU fallback (system RAM from /proc/meminfo or sysctl)
package detect

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// detectTimeout bounds the whole detection when ctx has no deadline.
const detectTimeout = 10 * time.Second

// =============================================================================
// GPU TYPE DEFINITIONS
// =============================================================================

// GpuType is the kind of device found.
type GpuType int

const (
	// GpuTypeCPU means no usable GPU was found.
	GpuTypeCPU GpuType = iota
	// GpuTypeNvidia is a CUDA-capable NVIDIA card.
	GpuTypeNvidia
	// GpuTypeAppleSilicon is an Apple M-series chip with unified memory.
	GpuTypeAppleSilicon
)

// String returns the string representation of the GPU type.
func (t GpuType) String() string {
	switch t {
	case GpuTypeNvidia:
		return "NVIDIA"
	case GpuTypeAppleSilicon:
		return "Apple Silicon"
	case GpuTypeCPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// =============================================================================
// GPU INFO
// =============================================================================

// GpuInfo describes the detected device.
type GpuInfo struct {
	Name string
	// Memory is VRAM in bytes, unified memory on Apple Silicon and total
	// RAM in CPU mode. Zero means unknown.
	Memory uint64
	Driver string
	Type   GpuType
}

// String returns e.g. "NVIDIA RTX 4090 (24 GiB) [driver 535.154.05]".
func (g *GpuInfo) String() string {
	s := g.Name
	if g.Memory > 0 {
		s += fmt.Sprintf(" (%s)", humanize.IBytes(g.Memory))
	}
	if g.Driver != "" {
		s += fmt.Sprintf(" [driver %s]", g.Driver)
	}
	return s
}

// =============================================================================
// DETECTION
// =============================================================================

// Swapped in tests.
var (
	commandOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).Output()
	}
	readFile = os.ReadFile
	goos     = runtime.GOOS
)

// DetectGPU probes NVIDIA first, then Apple Silicon, and falls back to a
// CPU description. It never returns nil.
func DetectGPU(ctx context.Context) *GpuInfo {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, detectTimeout)
		defer cancel()
	}

	if info := detectNvidia(ctx); info != nil {
		return info
	}
	if info := detectAppleSilicon(ctx); info != nil {
		return info
	}
	return cpuInfo(ctx)
}

func detectNvidia(ctx context.Context) *GpuInfo {
	out, err := commandOutput(ctx, "nvidia-smi",
		"--query-gpu=name,memory.total,driver_version",
		"--format=csv,noheader,nounits")
	if err != nil {
		return nil
	}
	return parseNvidiaSMI(string(out))
}

// parseNvidiaSMI reads the first CSV row: name, memory in MiB, driver.
func parseNvidiaSMI(out string) *GpuInfo {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return nil
	}

	mib, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil
	}

	return &GpuInfo{
		Name:   "NVIDIA " + strings.TrimSpace(parts[0]),
		Memory: uint64(mib) * humanize.MiByte,
		Driver: strings.TrimSpace(parts[2]),
		Type:   GpuTypeNvidia,
	}
}

var appleChips = []string{
	"M4 Ultra", "M4 Max", "M4 Pro", "M4",
	"M3 Ultra", "M3 Max", "M3 Pro", "M3",
	"M2 Ultra", "M2 Max", "M2 Pro", "M2",
	"M1 Ultra", "M1 Max", "M1 Pro", "M1",
}

func detectAppleSilicon(ctx context.Context) *GpuInfo {
	if goos != "darwin" {
		return nil
	}

	out, err := commandOutput(ctx, "system_profiler", "SPDisplaysDataType")
	if err != nil || !strings.Contains(string(out), "Apple") {
		return nil
	}

	info := &GpuInfo{Name: "Apple Silicon", Type: GpuTypeAppleSilicon}
	for _, chip := range appleChips {
		if strings.Contains(string(out), chip) {
			info.Name = "Apple " + chip
			break
		}
	}
	info.Memory = sysctlMemSize(ctx)
	if v, err := commandOutput(ctx, "sw_vers", "-productVersion"); err == nil {
		info.Driver = "macOS " + strings.TrimSpace(string(v))
	}
	return info
}

func cpuInfo(ctx context.Context) *GpuInfo {
	info := &GpuInfo{Name: "CPU", Type: GpuTypeCPU}
	switch goos {
	case "darwin":
		info.Memory = sysctlMemSize(ctx)
	case "linux":
		if data, err := readFile("/proc/meminfo"); err == nil {
			info.Memory = parseMemTotal(string(data))
		}
	}
	return info
}

func sysctlMemSize(ctx context.Context) uint64 {
	out, err := commandOutput(ctx, "sysctl", "-n", "hw.memsize")
	if err != nil {
		return 0
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseMemTotal returns the MemTotal line of /proc/meminfo in bytes.
func parseMemTotal(meminfo string) uint64 {
	for _, line := range strings.Split(meminfo, "\n") {
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb * humanize.KiByte
	}
	return 0
}
