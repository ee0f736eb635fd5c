package monitor

// Empirical load-correction coefficients, fitted against measurements of
// the supply rail under controlled CPU/GPU load. Compiled-in on purpose:
// they describe the board, not the deployment.
const (
	cpuLoadCoefficient = 0.00395
	gpuLoadCoefficient = 0.01478
	correctionOffset   = 0.560
)

// Correct estimates the unloaded supply voltage from a raw rail reading
// and the current CPU/GPU utilization percentages. Pure; the result is
// not rounded (display rounding is the reporter's business).
func Correct(rawVoltage, cpuPercent, gpuPercent float64) float64 {
	return rawVoltage + cpuLoadCoefficient*cpuPercent + gpuLoadCoefficient*gpuPercent + correctionOffset
}
