// Package env describes the machine a benchmark run executes on.
package env

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	syscpu "golang.org/x/sys/cpu"
)

const unknown = "unknown"

// Info is a snapshot of the host. Fields that cannot be detected are left
// as "unknown" or zero.
type Info struct {
	OS            string   `json:"os"`
	Platform      string   `json:"platform"`
	Kernel        string   `json:"kernel"`
	Arch          string   `json:"arch"`
	Hostname      string   `json:"hostname"`
	GoVersion     string   `json:"go_version"`
	CPUModel      string   `json:"cpu_model"`
	PhysicalCores int      `json:"physical_cores"`
	LogicalCores  int      `json:"logical_cores"`
	GOMAXPROCS    int      `json:"gomaxprocs"`
	TotalMemory   uint64   `json:"total_memory_bytes"`
	Features      []string `json:"cpu_features"`
}

// Detect gathers host information. It never fails; probes that error are
// reported as unknown.
func Detect(ctx context.Context) Info {
	info := Info{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		GoVersion:  runtime.Version(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		Hostname:   unknown,
		Platform:   unknown,
		Kernel:     unknown,
		CPUModel:   unknown,
		Features:   Features(),
	}

	if h, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = h.Hostname
		if h.Platform != "" {
			info.Platform = strings.TrimSpace(h.Platform + " " + h.PlatformVersion)
		}
		if h.KernelVersion != "" {
			info.Kernel = h.KernelVersion
		}
	} else if name, err := os.Hostname(); err == nil {
		info.Hostname = name
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 && cpus[0].ModelName != "" {
		info.CPUModel = strings.TrimSpace(cpus[0].ModelName)
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.PhysicalCores = n
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.LogicalCores = n
	} else {
		info.LogicalCores = runtime.NumCPU()
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

// Features lists the SIMD and crypto extensions of this CPU that matter
// for micro-benchmarks.
func Features() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		add(syscpu.X86.HasSSE2, "sse2")
		add(syscpu.X86.HasSSE3, "sse3")
		add(syscpu.X86.HasSSSE3, "ssse3")
		add(syscpu.X86.HasSSE41, "sse4.1")
		add(syscpu.X86.HasSSE42, "sse4.2")
		add(syscpu.X86.HasPOPCNT, "popcnt")
		add(syscpu.X86.HasAES, "aes")
		add(syscpu.X86.HasAVX, "avx")
		add(syscpu.X86.HasAVX2, "avx2")
		add(syscpu.X86.HasFMA, "fma")
		add(syscpu.X86.HasBMI2, "bmi2")
		add(syscpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(syscpu.ARM64.HasASIMD, "neon")
		add(syscpu.ARM64.HasAES, "aes")
		add(syscpu.ARM64.HasSHA2, "sha2")
		add(syscpu.ARM64.HasCRC32, "crc32")
		add(syscpu.ARM64.HasATOMICS, "lse")
		add(syscpu.ARM64.HasSVE, "sve")
	}
	return out
}

// FormatBytes renders n with binary prefixes.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// WriteText prints info as an aligned block.
func WriteText(w io.Writer, info Info) error {
	features := "none"
	if len(info.Features) > 0 {
		features = strings.Join(info.Features, " ")
	}
	cores := fmt.Sprintf("%d logical", info.LogicalCores)
	if info.PhysicalCores > 0 {
		cores = fmt.Sprintf("%d physical, %d logical", info.PhysicalCores, info.LogicalCores)
	}
	memory := unknown
	if info.TotalMemory > 0 {
		memory = FormatBytes(info.TotalMemory)
	}

	_, err := fmt.Fprintf(w, `Environment:
  OS:        %s/%s (%s)
  Kernel:    %s
  Host:      %s
  Go:        %s (GOMAXPROCS=%d)
  CPU:       %s
  Cores:     %s
  Memory:    %s
  Features:  %s

`, info.OS, info.Arch, info.Platform, info.Kernel, info.Hostname, info.GoVersion, info.GOMAXPROCS,
		info.CPUModel, cores, memory, features)
	return err
}
