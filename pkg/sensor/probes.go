package sensor

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// GPUProbe is one strategy for obtaining graphics utilization. A probe
// returns (value, false) when its mechanism is absent or failed; the
// caller then moves on to the next probe.
type GPUProbe interface {
	Name() string
	Utilization() (float64, bool)
}

// probeTimeout bounds a single probe invocation so a hung utility cannot
// stall the sampling cadence.
const probeTimeout = 2 * time.Second

func defaultGPUProbes() []GPUProbe {
	return []GPUProbe{
		&nvidiaSMIProbe{},
		&tegrastatsProbe{},
		&sysfsGPULoadProbe{paths: defaultSysfsGPULoadPaths},
		&jtopProbe{},
	}
}

type nvidiaSMIProbe struct{}

func (p *nvidiaSMIProbe) Name() string { return "nvidia-smi" }

func (p *nvidiaSMIProbe) Utilization() (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=utilization.gpu",
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		logrus.Debugf("nvidia-smi probe failed: %v", err)
		return 0, false
	}

	return parsePercentField(string(out))
}

// parsePercentField parses a bare numeric utilization value, as printed by
// nvidia-smi with noheader,nounits.
func parsePercentField(out string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type tegrastatsProbe struct{}

func (p *tegrastatsProbe) Name() string { return "tegrastats" }

var tegraGR3DPattern = regexp.MustCompile(`GR3D_FREQ\s+(\d+)%`)

// Utilization samples one line of tegrastats output. tegrastats streams
// forever, so the process is killed as soon as a usable line arrives.
func (p *tegrastatsProbe) Utilization() (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "tegrastats", "--interval", "100")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, false
	}
	if err := cmd.Start(); err != nil {
		logrus.Debugf("tegrastats probe failed: %v", err)
		return 0, false
	}
	defer func() {
		cancel()
		_ = cmd.Wait()
	}()

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if v, ok := parseTegrastatsLine(scanner.Text()); ok {
			return v, true
		}
	}

	return 0, false
}

// parseTegrastatsLine extracts the GR3D_FREQ percentage from one
// tegrastats output line.
func parseTegrastatsLine(line string) (float64, bool) {
	m := tegraGR3DPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var defaultSysfsGPULoadPaths = []string{
	"/sys/devices/gpu.0/load",
	"/sys/devices/platform/gpu.0/load",
	"/sys/class/devfreq/17000000.gv11b/load",
}

type sysfsGPULoadProbe struct {
	paths []string
}

func (p *sysfsGPULoadProbe) Name() string { return "sysfs" }

func (p *sysfsGPULoadProbe) Utilization() (float64, bool) {
	for _, path := range p.paths {
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if v, ok := parseSysfsGPULoad(string(b)); ok {
			return v, true
		}
	}
	return 0, false
}

var leadingDigitsPattern = regexp.MustCompile(`(\d+)`)

// parseSysfsGPULoad parses a sysfs gpu load file. The value may carry a
// trailing "%" or other noise; only the leading number counts, capped to
// 100.
func parseSysfsGPULoad(s string) (float64, bool) {
	m := leadingDigitsPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if v > 100 {
		v = 100
	}
	return v, true
}

type jtopProbe struct{}

func (p *jtopProbe) Name() string { return "jtop" }

type jtopReport struct {
	GPU struct {
		Val *float64 `json:"val"`
	} `json:"gpu"`
}

func (p *jtopProbe) Utilization() (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "jtop", "--json").Output()
	if err != nil {
		logrus.Debugf("jtop probe failed: %v", err)
		return 0, false
	}

	return parseJtopReport(out)
}

func parseJtopReport(out []byte) (float64, bool) {
	var report jtopReport
	if err := json.Unmarshal(out, &report); err != nil {
		return 0, false
	}
	if report.GPU.Val == nil {
		return 0, false
	}
	return *report.GPU.Val, true
}
