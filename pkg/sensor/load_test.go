package sensor

import (
	"errors"
	"testing"
)

type fakeProbe struct {
	name  string
	value float64
	ok    bool
	calls int
}

func (p *fakeProbe) Name() string { return p.name }

func (p *fakeProbe) Utilization() (float64, bool) {
	p.calls++
	return p.value, p.ok
}

func newLoadSourceForTest(cpu []float64, cpuErr error, probes ...GPUProbe) *SystemLoadSource {
	s := NewSystemLoadSourceWithProbes(probes)
	s.cpuPercent = func() ([]float64, error) {
		return cpu, cpuErr
	}
	return s
}

func TestSystemLoadSourceProbeOrder(t *testing.T) {
	first := &fakeProbe{name: "first", value: 30, ok: true}
	second := &fakeProbe{name: "second", value: 60, ok: true}

	s := newLoadSourceForTest([]float64{10}, nil, first, second)
	_, gpu := s.ReadLoads()

	if gpu != 30 {
		t.Errorf("gpu = %v, want 30 (first probe wins)", gpu)
	}
	if second.calls != 0 {
		t.Errorf("second probe called %d times, want 0", second.calls)
	}
	if s.LastGPUProbe() != "first" {
		t.Errorf("LastGPUProbe() = %q, want %q", s.LastGPUProbe(), "first")
	}
}

func TestSystemLoadSourceProbeFallback(t *testing.T) {
	broken := &fakeProbe{name: "broken", ok: false}
	working := &fakeProbe{name: "working", value: 45, ok: true}

	s := newLoadSourceForTest([]float64{10}, nil, broken, working)
	_, gpu := s.ReadLoads()

	if gpu != 45 {
		t.Errorf("gpu = %v, want 45", gpu)
	}
	if s.LastGPUProbe() != "working" {
		t.Errorf("LastGPUProbe() = %q, want %q", s.LastGPUProbe(), "working")
	}
}

func TestSystemLoadSourceGPUAbsent(t *testing.T) {
	// No probe mechanism present: gpu degrades to 0, cpu stays valid.
	broken := &fakeProbe{name: "broken", ok: false}

	s := newLoadSourceForTest([]float64{42.5}, nil, broken)
	cpu, gpu := s.ReadLoads()

	if gpu != 0 {
		t.Errorf("gpu = %v, want 0", gpu)
	}
	if cpu != 42.5 {
		t.Errorf("cpu = %v, want 42.5", cpu)
	}
	if s.LastGPUProbe() != "" {
		t.Errorf("LastGPUProbe() = %q, want empty", s.LastGPUProbe())
	}
}

func TestSystemLoadSourceCPUAbsent(t *testing.T) {
	probe := &fakeProbe{name: "probe", value: 12, ok: true}

	s := newLoadSourceForTest(nil, errors.New("no /proc"), probe)
	cpu, gpu := s.ReadLoads()

	if cpu != 0 {
		t.Errorf("cpu = %v, want 0", cpu)
	}
	if gpu != 12 {
		t.Errorf("gpu = %v, want 12", gpu)
	}
}

func TestSystemLoadSourceClampsPercentages(t *testing.T) {
	tests := []struct {
		name string
		cpu  float64
		gpu  float64
		want [2]float64
	}{
		{name: "over 100", cpu: 120, gpu: 250, want: [2]float64{100, 100}},
		{name: "negative", cpu: -3, gpu: -1, want: [2]float64{0, 0}},
		{name: "in range", cpu: 55.5, gpu: 99, want: [2]float64{55.5, 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLoadSourceForTest([]float64{tt.cpu}, nil, &fakeProbe{name: "p", value: tt.gpu, ok: true})
			cpu, gpu := s.ReadLoads()
			if cpu != tt.want[0] || gpu != tt.want[1] {
				t.Errorf("ReadLoads() = (%v, %v), want (%v, %v)", cpu, gpu, tt.want[0], tt.want[1])
			}
		})
	}
}

func TestParseTegrastatsLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   float64
		wantOK bool
	}{
		{
			name:   "typical line",
			line:   "RAM 3622/7772MB SWAP 0/3886MB CPU [12%@1420] GR3D_FREQ 45%@624",
			want:   45,
			wantOK: true,
		},
		{
			name:   "zero load",
			line:   "RAM 1000/7772MB GR3D_FREQ 0%@114",
			want:   0,
			wantOK: true,
		},
		{
			name:   "no gpu field",
			line:   "RAM 1000/7772MB CPU [12%@1420]",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTegrastatsLine(tt.line)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseTegrastatsLine() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParsePercentField(t *testing.T) {
	tests := []struct {
		name   string
		out    string
		want   float64
		wantOK bool
	}{
		{name: "plain integer", out: "37\n", want: 37, wantOK: true},
		{name: "padded", out: " 0 ", want: 0, wantOK: true},
		{name: "garbage", out: "N/A", wantOK: false},
		{name: "empty", out: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePercentField(tt.out)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parsePercentField() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseSysfsGPULoad(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   float64
		wantOK bool
	}{
		{name: "bare value", in: "45\n", want: 45, wantOK: true},
		{name: "with percent sign", in: "45%", want: 45, wantOK: true},
		{name: "capped at 100", in: "450", want: 100, wantOK: true},
		{name: "empty", in: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseSysfsGPULoad(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseSysfsGPULoad() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseJtopReport(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   float64
		wantOK bool
	}{
		{name: "gpu present", in: `{"gpu":{"val":33.5}}`, want: 33.5, wantOK: true},
		{name: "gpu missing", in: `{"cpu":{"val":10}}`, wantOK: false},
		{name: "not json", in: "boom", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseJtopReport([]byte(tt.in))
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseJtopReport() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
