package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/modalwatch/credits-monitor/internal/rates"
)

// fakeRunner returns canned output per command name.
func fakeRunner(outputs map[string]string, errs map[string]error) RunCmdFunc {
	return func(_ context.Context, name string, _ ...string) (string, error) {
		if err, ok := errs[name]; ok {
			return "", err
		}
		return outputs[name], nil
	}
}

func TestGPU_Success(t *testing.T) {
	p := NewSMIProber(time.Second, fakeRunner(map[string]string{
		"nvidia-smi": "NVIDIA H100 80GB HBM3\n",
	}, nil))

	rep := p.GPU(context.Background())
	assert.True(t, rep.Success)
	assert.Equal(t, "NVIDIA H100 80GB HBM3", rep.Name)
	assert.Equal(t, rates.TierH100, rep.Tier)
}

func TestGPU_MultiDeviceUsesFirst(t *testing.T) {
	p := NewSMIProber(time.Second, fakeRunner(map[string]string{
		"nvidia-smi": "NVIDIA A100-SXM4-80GB\nNVIDIA A100-SXM4-80GB\n",
	}, nil))

	rep := p.GPU(context.Background())
	assert.True(t, rep.Success)
	assert.Equal(t, rates.TierA100_80G, rep.Tier)
}

func TestGPU_CommandFailure(t *testing.T) {
	p := NewSMIProber(time.Second, fakeRunner(nil, map[string]error{
		"nvidia-smi": errors.New("exec: not found"),
	}))

	rep := p.GPU(context.Background())
	assert.False(t, rep.Success)
	assert.Equal(t, UnknownGPUName, rep.Name)
	assert.Equal(t, rates.TierUnknown, rep.Tier)
}

func TestGPU_EmptyOutput(t *testing.T) {
	p := NewSMIProber(time.Second, fakeRunner(map[string]string{"nvidia-smi": "  \n"}, nil))

	rep := p.GPU(context.Background())
	assert.False(t, rep.Success)
	assert.Equal(t, UnknownGPUName, rep.Name)
}

func TestResources_Success(t *testing.T) {
	freeOut := "              total        used        free\n" +
		"Mem:    34359738368  1000000000  2000000000\n" +
		"Swap:             0           0           0\n"
	p := NewSMIProber(time.Second, fakeRunner(map[string]string{
		"nproc": "16\n",
		"free":  freeOut,
	}, nil))

	res := p.Resources(context.Background())
	assert.True(t, res.Success)
	assert.Equal(t, 16, res.CPUCores)
	assert.InDelta(t, 32.0, res.MemoryGB, 0.001)
}

func TestResources_FallbackDefaults(t *testing.T) {
	p := NewSMIProber(time.Second, fakeRunner(nil, map[string]error{
		"nproc": errors.New("not found"),
		"free":  errors.New("not found"),
	}))

	res := p.Resources(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, DefaultCPUCores, res.CPUCores)
	assert.Equal(t, DefaultMemoryGB, res.MemoryGB)
}

func TestResources_PartialFailureStillDefaultsTheFailedProbe(t *testing.T) {
	p := NewSMIProber(time.Second, fakeRunner(
		map[string]string{"nproc": "8"},
		map[string]error{"free": errors.New("not found")},
	))

	res := p.Resources(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, 8, res.CPUCores)
	assert.Equal(t, DefaultMemoryGB, res.MemoryGB)
}

func TestParseFreeTotal_Malformed(t *testing.T) {
	_, err := parseFreeTotal("garbage output")
	assert.Error(t, err)
}

func TestStaticProber(t *testing.T) {
	s := Static{
		GPUReport:      Report{Name: "NVIDIA L4", Tier: rates.TierL4, Success: true},
		ResourceReport: Resources{CPUCores: 4, MemoryGB: 16, Success: true},
	}
	assert.Equal(t, rates.TierL4, s.GPU(context.Background()).Tier)
	assert.Equal(t, 4, s.Resources(context.Background()).CPUCores)
}
