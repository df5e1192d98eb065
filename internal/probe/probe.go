// Package probe classifies the host's accelerator and compute resources by
// invoking external system utilities.
//
// DESIGN: Every probe is best-effort. A missing binary, non-zero exit,
// timeout, or unparseable output degrades to a sentinel/default report with
// Success=false; callers never see an error. The command runner is
// injectable so tests can fake hardware.
package probe

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/modalwatch/credits-monitor/internal/rates"
)

// UnknownGPUName is reported when detection fails.
const UnknownGPUName = "Unknown"

// Fallback resource values used when the resource probes are unavailable.
const (
	DefaultCPUCores = 12
	DefaultMemoryGB = 32.0
)

// Report is the result of a GPU probe.
type Report struct {
	Name    string     `json:"gpu_name"`
	Tier    rates.Tier `json:"-"`
	Success bool       `json:"success"`
}

// Resources is the result of a CPU/memory probe.
type Resources struct {
	CPUCores int     `json:"cpu_cores"`
	MemoryGB float64 `json:"memory_gb"`
	Success  bool    `json:"success"`
}

// Prober detects the host's hardware.
type Prober interface {
	GPU(ctx context.Context) Report
	Resources(ctx context.Context) Resources
}

// RunCmdFunc executes a command and returns its stdout.
type RunCmdFunc func(ctx context.Context, name string, args ...string) (string, error)

// SMIProber probes via nvidia-smi, nproc, and free.
type SMIProber struct {
	runCmd  RunCmdFunc
	timeout time.Duration
}

// NewSMIProber creates a prober with the given per-command timeout.
// A nil runner uses the real exec-based runner.
func NewSMIProber(timeout time.Duration, runCmd RunCmdFunc) *SMIProber {
	if runCmd == nil {
		runCmd = execRunner
	}
	return &SMIProber{runCmd: runCmd, timeout: timeout}
}

func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

// GPU queries nvidia-smi for the device name and maps it to a rate tier.
func (p *SMIProber) GPU(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.runCmd(ctx, "nvidia-smi", "--query-gpu=name", "--format=csv,noheader")
	if err != nil {
		log.Warn().Err(err).Msg("probe: GPU detection failed")
		return Report{Name: UnknownGPUName, Tier: rates.TierUnknown}
	}

	name := strings.TrimSpace(out)
	if name == "" {
		log.Warn().Msg("probe: nvidia-smi returned no device name")
		return Report{Name: UnknownGPUName, Tier: rates.TierUnknown}
	}
	// Multi-GPU hosts bill per node here; the first device sets the tier.
	if i := strings.IndexByte(name, '\n'); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	return Report{Name: name, Tier: rates.Normalize(name), Success: true}
}

// Resources queries logical core count and total memory. The two probes fail
// independently; either failure drops the whole report to static defaults.
func (p *SMIProber) Resources(ctx context.Context) Resources {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res := Resources{CPUCores: DefaultCPUCores, MemoryGB: DefaultMemoryGB}

	cores, coresErr := p.cpuCores(ctx)
	if coresErr != nil {
		log.Warn().Err(coresErr).Msg("probe: CPU core detection failed")
	} else {
		res.CPUCores = cores
	}

	memGB, memErr := p.memoryGB(ctx)
	if memErr != nil {
		log.Warn().Err(memErr).Msg("probe: memory detection failed")
	} else {
		res.MemoryGB = memGB
	}

	res.Success = coresErr == nil && memErr == nil
	return res
}

func (p *SMIProber) cpuCores(ctx context.Context) (int, error) {
	out, err := p.runCmd(ctx, "nproc")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(out))
}

func (p *SMIProber) memoryGB(ctx context.Context) (float64, error) {
	out, err := p.runCmd(ctx, "free", "-b")
	if err != nil {
		return 0, err
	}
	totalBytes, err := parseFreeTotal(out)
	if err != nil {
		return 0, err
	}
	return float64(totalBytes) / (1 << 30), nil
}

// parseFreeTotal extracts the total-memory column from `free -b` output.
func parseFreeTotal(out string) (int64, error) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Mem:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		return strconv.ParseInt(fields[1], 10, 64)
	}
	return 0, errUnparseable
}

var errUnparseable = errors.New("probe: unparseable free output")

// Static is a Prober returning fixed reports, for tests and probe-disabled
// deployments.
type Static struct {
	GPUReport      Report
	ResourceReport Resources
}

func (s Static) GPU(context.Context) Report          { return s.GPUReport }
func (s Static) Resources(context.Context) Resources { return s.ResourceReport }
