// Package diagnostics provides audio buffer sanity checks and block-processing
// profiling, adapted from a VST3 plugin framework's debug tooling for use
// against this runtime's own []float64 block buffers.
package diagnostics

import (
	"fmt"
	"math"
	"strings"
)

// Analyzer inspects rendered or captured audio buffers for the usual signs
// of a broken script: clipping, DC offset, silence, and NaN/Inf poisoning.
type Analyzer struct {
	ClippingThreshold float64
	DCThreshold       float64
	SilenceThreshold  float64
}

// NewAnalyzer returns an Analyzer with thresholds suited to full-scale audio.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		ClippingThreshold: 0.99,
		DCThreshold:       0.01,
		SilenceThreshold:  0.0001,
	}
}

// AnalysisResult summarizes one buffer's statistics.
type AnalysisResult struct {
	Peak           float64
	RMS            float64
	DC             float64
	Clipping       bool
	ClippedSamples int
	Silent         bool
	HasNaN         bool
	NaNCount       int
	ZeroCrossings  int
}

// Analyze computes AnalysisResult over buffer.
func (a *Analyzer) Analyze(buffer []float64) AnalysisResult {
	var result AnalysisResult
	if len(buffer) == 0 {
		return result
	}

	var sum, sumSquares, dcSum float64
	var last float64

	for i, sample := range buffer {
		if math.IsNaN(sample) || math.IsInf(sample, 0) {
			result.HasNaN = true
			result.NaNCount++
			continue
		}

		abs := math.Abs(sample)
		if abs > result.Peak {
			result.Peak = abs
		}
		if abs >= a.ClippingThreshold {
			result.Clipping = true
			result.ClippedSamples++
		}

		sum += sample
		sumSquares += sample * sample
		dcSum += abs

		if i > 0 && ((last < 0 && sample >= 0) || (last >= 0 && sample < 0)) {
			result.ZeroCrossings++
		}
		last = sample
	}

	n := float64(len(buffer))
	result.RMS = math.Sqrt(sumSquares / n)
	result.DC = sum / n
	if result.RMS < a.SilenceThreshold {
		result.Silent = true
	}
	return result
}

// CheckBuffer runs Analyze with default thresholds and returns one message
// per issue found, prefixed with name.
func CheckBuffer(buffer []float64, name string) []string {
	a := NewAnalyzer()
	result := a.Analyze(buffer)

	var issues []string
	if result.HasNaN {
		issues = append(issues, fmt.Sprintf("%s: contains %d NaN/Inf samples", name, result.NaNCount))
	}
	if result.Clipping {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples over %.2f)", name, result.ClippedSamples, a.ClippingThreshold))
	}
	if math.Abs(result.DC) > a.DCThreshold {
		issues = append(issues, fmt.Sprintf("%s: DC offset %.4f exceeds %.4f", name, result.DC, a.DCThreshold))
	}
	if result.Peak > 1.0 {
		issues = append(issues, fmt.Sprintf("%s: peak %.4f exceeds full scale", name, result.Peak))
	}
	return issues
}

// DumpBuffer renders the first maxSamples of buffer as an index/value table,
// for pasting into a bug report.
func DumpBuffer(buffer []float64, maxSamples int) string {
	if len(buffer) == 0 {
		return "empty buffer"
	}
	if maxSamples <= 0 || maxSamples > len(buffer) {
		maxSamples = len(buffer)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "buffer dump (%d samples, showing %d):\n", len(buffer), maxSamples)
	for i := 0; i < maxSamples; i++ {
		fmt.Fprintf(&sb, "%6d | %+.6f\n", i, buffer[i])
	}
	if maxSamples < len(buffer) {
		fmt.Fprintf(&sb, "... %d more samples\n", len(buffer)-maxSamples)
	}
	return sb.String()
}
