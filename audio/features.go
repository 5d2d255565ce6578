package audio

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Waveform is a decoded mono signal. Samples are normalized to
// roughly [-1, 1] and Rate always equals the loader's target rate.
type Waveform struct {
	Samples []float64
	Rate    int
}

func (w *Waveform) Duration() float64 {
	if w.Rate == 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.Rate)
}

// Interval is a voice-active region in sample indices, half-open
// [Start, End).
type Interval struct {
	Start int
	End   int
}

// FeatureSet holds the scalar acoustic statistics derived from one
// waveform. Immutable once computed.
type FeatureSet struct {
	SNRDB            float64
	SpectralCentroid float64
	SpectralRolloff  float64
	ZeroCrossingRate float64
	MFCCStd          float64
	SpectralFlatness float64

	VoiceActivityPct float64
	PauseCount       int
	AvgPauseDuration float64
	EnergyVariation  float64
	Duration         float64
}

const (
	// snrDefault is returned when the energy percentile split cannot
	// separate noise from signal (empty or uniform audio).
	snrDefault = 30.0
	// snrClean is returned when the noise partition carries zero power.
	snrClean = 40.0

	noisePercentile = 0.20
	rolloffPercent  = 0.85
	numMels         = 40
	numMFCC         = 13
	powerFloor      = 1e-10
)

// Extractor computes frame-level statistics over fixed frame/hop
// sizes. The zero value is not usable; construct with NewExtractor.
type Extractor struct {
	FrameLength  int
	HopLength    int
	SilenceTopDB float64
	MinPauseSec  float64

	fft    *fourier.FFT
	window []float64
}

func NewExtractor(frameLength, hopLength int, silenceTopDB, minPauseSec float64) *Extractor {
	if frameLength <= 0 {
		frameLength = 2048
	}
	if hopLength <= 0 {
		hopLength = 512
	}
	if silenceTopDB <= 0 {
		silenceTopDB = 30.0
	}
	if minPauseSec <= 0 {
		minPauseSec = 0.1
	}
	e := &Extractor{
		FrameLength:  frameLength,
		HopLength:    hopLength,
		SilenceTopDB: silenceTopDB,
		MinPauseSec:  minPauseSec,
	}
	e.fft = fourier.NewFFT(frameLength)
	e.window = hannWindow(frameLength)
	return e
}

// Extract computes the full feature set. Empty waveforms yield the
// SNR sentinel and zeros everywhere else; no output is ever NaN.
func (e *Extractor) Extract(w *Waveform) FeatureSet {
	fs := FeatureSet{
		SNRDB:    e.SNR(w),
		Duration: w.Duration(),
	}
	if len(w.Samples) == 0 {
		return fs
	}

	e.spectralSummary(w, &fs)

	rms := frameRMS(w.Samples, e.FrameLength, e.HopLength)
	fs.EnergyVariation = popStdDev(rms)

	intervals := e.SegmentSpeech(w, e.SilenceTopDB)
	var active int
	for _, iv := range intervals {
		active += iv.End - iv.Start
	}
	fs.VoiceActivityPct = float64(active) / float64(len(w.Samples)) * 100.0

	fs.PauseCount, fs.AvgPauseDuration = e.pauseStats(intervals, w.Rate)
	return fs
}

// SNR estimates signal-to-noise ratio in dB by partitioning frame RMS
// energy at the 20th percentile: frames below are treated as noise,
// the rest as signal. This percentile split is an approximation, not
// a voice-activity model.
func (e *Extractor) SNR(w *Waveform) float64 {
	rms := frameRMS(w.Samples, e.FrameLength, e.HopLength)
	if len(rms) == 0 {
		return snrDefault
	}

	sorted := append([]float64(nil), rms...)
	sort.Float64s(sorted)
	threshold := percentile(sorted, noisePercentile)

	var noisePower, signalPower float64
	var noiseN, signalN int
	for _, v := range rms {
		if v < threshold {
			noisePower += v * v
			noiseN++
		} else {
			signalPower += v * v
			signalN++
		}
	}
	if noiseN == 0 || signalN == 0 {
		return snrDefault
	}
	noisePower /= float64(noiseN)
	signalPower /= float64(signalN)
	if noisePower == 0 {
		return snrClean
	}
	return 10.0 * math.Log10(signalPower/noisePower)
}

// SegmentSpeech returns ordered, non-overlapping voice-active
// intervals: frames whose RMS is within topDB of the loudest frame.
func (e *Extractor) SegmentSpeech(w *Waveform, topDB float64) []Interval {
	rms := frameRMS(w.Samples, e.FrameLength, e.HopLength)
	if len(rms) == 0 {
		return nil
	}
	ref := 0.0
	for _, v := range rms {
		if v > ref {
			ref = v
		}
	}
	if ref == 0 {
		return nil
	}
	threshold := ref * math.Pow(10.0, -topDB/20.0)

	var intervals []Interval
	run := -1
	for i := 0; i <= len(rms); i++ {
		active := i < len(rms) && rms[i] >= threshold
		switch {
		case active && run < 0:
			run = i
		case !active && run >= 0:
			start := run * e.HopLength
			end := (i-1)*e.HopLength + e.FrameLength
			if end > len(w.Samples) {
				end = len(w.Samples)
			}
			intervals = append(intervals, Interval{Start: start, End: end})
			run = -1
		}
	}
	return mergeIntervals(intervals)
}

// pauseStats counts inter-interval gaps longer than MinPauseSec and
// averages their durations in seconds.
func (e *Extractor) pauseStats(intervals []Interval, rate int) (int, float64) {
	if len(intervals) < 2 || rate == 0 {
		return 0, 0
	}
	var pauses []float64
	for i := 0; i < len(intervals)-1; i++ {
		gap := float64(intervals[i+1].Start-intervals[i].End) / float64(rate)
		if gap > e.MinPauseSec {
			pauses = append(pauses, gap)
		}
	}
	if len(pauses) == 0 {
		return 0, 0
	}
	return len(pauses), stat.Mean(pauses, nil)
}

// spectralSummary fills the clarity features: mean spectral centroid,
// rolloff, flatness, zero-crossing rate and MFCC variability, each
// averaged over full analysis frames. Waveforms shorter than one
// frame are zero-padded to a single frame.
func (e *Extractor) spectralSummary(w *Waveform, fs *FeatureSet) {
	n := e.FrameLength
	frame := make([]float64, n)
	windowed := make([]float64, n)
	power := make([]float64, n/2+1)

	var centroidSum, rolloffSum, flatnessSum, zcrSum float64
	mfccFrames := make([][]float64, 0, 64)
	mel := newMelBank(numMels, n, w.Rate)

	frames := 0
	for start := 0; start == 0 || start+n <= len(w.Samples); start += e.HopLength {
		for i := range frame {
			if start+i < len(w.Samples) {
				frame[i] = w.Samples[start+i]
			} else {
				frame[i] = 0
			}
		}

		zcrSum += zeroCrossingRate(frame)

		for i := range frame {
			windowed[i] = frame[i] * e.window[i]
		}
		coeffs := e.fft.Coefficients(nil, windowed)
		var magSum, weighted float64
		for k, c := range coeffs {
			mag := cmplxAbs(c)
			power[k] = mag * mag
			magSum += mag
			weighted += mag * e.binFreq(k, w.Rate)
		}

		if magSum > 0 {
			centroidSum += weighted / magSum
			rolloffSum += e.rolloff(coeffs, magSum, w.Rate)
		}
		flatnessSum += flatness(power)
		mfccFrames = append(mfccFrames, mfcc(power, mel))
		frames++
	}
	if frames == 0 {
		return
	}

	fs.SpectralCentroid = centroidSum / float64(frames)
	fs.SpectralRolloff = rolloffSum / float64(frames)
	fs.SpectralFlatness = flatnessSum / float64(frames)
	fs.ZeroCrossingRate = zcrSum / float64(frames)
	fs.MFCCStd = mfccVariability(mfccFrames)
}

func (e *Extractor) binFreq(k int, rate int) float64 {
	return float64(k) * float64(rate) / float64(e.FrameLength)
}

// rolloff finds the frequency below which rolloffPercent of the
// spectral magnitude is concentrated.
func (e *Extractor) rolloff(coeffs []complex128, magSum float64, rate int) float64 {
	target := rolloffPercent * magSum
	var cum float64
	for k, c := range coeffs {
		cum += cmplxAbs(c)
		if cum >= target {
			return e.binFreq(k, rate)
		}
	}
	return e.binFreq(len(coeffs)-1, rate)
}

// flatness is the Wiener entropy of a power spectrum: geometric over
// arithmetic mean, 1.0 for white noise, near 0 for tonal content.
func flatness(power []float64) float64 {
	var logSum, sum float64
	for _, p := range power {
		if p < powerFloor {
			p = powerFloor
		}
		logSum += math.Log(p)
		sum += p
	}
	n := float64(len(power))
	return math.Exp(logSum/n) / (sum / n)
}

func zeroCrossingRate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame))
}

// melBank is a triangular mel filterbank over FFT bins.
type melBank struct {
	filters [][]float64
}

func hzToMel(f float64) float64 { return 2595.0 * math.Log10(1.0+f/700.0) }
func melToHz(m float64) float64 { return 700.0 * (math.Pow(10.0, m/2595.0) - 1.0) }

func newMelBank(nMels, fftSize, rate int) *melBank {
	nBins := fftSize/2 + 1
	maxMel := hzToMel(float64(rate) / 2.0)

	// nMels+2 edge points, evenly spaced on the mel scale.
	edges := make([]float64, nMels+2)
	for i := range edges {
		hz := melToHz(maxMel * float64(i) / float64(nMels+1))
		edges[i] = hz * float64(fftSize) / float64(rate)
	}

	filters := make([][]float64, nMels)
	for m := 0; m < nMels; m++ {
		f := make([]float64, nBins)
		lo, mid, hi := edges[m], edges[m+1], edges[m+2]
		for k := 0; k < nBins; k++ {
			bin := float64(k)
			switch {
			case bin > lo && bin <= mid && mid > lo:
				f[k] = (bin - lo) / (mid - lo)
			case bin > mid && bin < hi && hi > mid:
				f[k] = (hi - bin) / (hi - mid)
			}
		}
		filters[m] = f
	}
	return &melBank{filters: filters}
}

// mfcc computes numMFCC cepstral coefficients from one power
// spectrum: mel filterbank energies in dB followed by an orthonormal
// DCT-II.
func mfcc(power []float64, mel *melBank) []float64 {
	nMels := len(mel.filters)
	logE := make([]float64, nMels)
	for m, f := range mel.filters {
		var sum float64
		for k, w := range f {
			if w != 0 {
				sum += w * power[k]
			}
		}
		if sum < powerFloor {
			sum = powerFloor
		}
		logE[m] = 10.0 * math.Log10(sum)
	}

	out := make([]float64, numMFCC)
	scale0 := math.Sqrt(1.0 / float64(nMels))
	scale := math.Sqrt(2.0 / float64(nMels))
	for k := 0; k < numMFCC; k++ {
		var sum float64
		for n := 0; n < nMels; n++ {
			sum += logE[n] * math.Cos(math.Pi*float64(k)*(2.0*float64(n)+1.0)/(2.0*float64(nMels)))
		}
		if k == 0 {
			out[k] = sum * scale0
		} else {
			out[k] = sum * scale
		}
	}
	return out
}

// mfccVariability is the mean over coefficients of the per-coefficient
// standard deviation across frames.
func mfccVariability(frames [][]float64) float64 {
	if len(frames) == 0 {
		return 0
	}
	nCoeff := len(frames[0])
	col := make([]float64, len(frames))
	var total float64
	for k := 0; k < nCoeff; k++ {
		for i, f := range frames {
			col[i] = f[k]
		}
		total += popStdDev(col)
	}
	return total / float64(nCoeff)
}

// frameRMS computes short-time RMS energy at hop intervals; the final
// frame is truncated at the end of the signal.
func frameRMS(x []float64, frameLength, hopLength int) []float64 {
	if len(x) == 0 {
		return nil
	}
	var out []float64
	for start := 0; start < len(x); start += hopLength {
		end := start + frameLength
		if end > len(x) {
			end = len(x)
		}
		var sum float64
		for _, v := range x[start:end] {
			sum += v * v
		}
		out = append(out, math.Sqrt(sum/float64(end-start)))
	}
	return out
}

func mergeIntervals(in []Interval) []Interval {
	if len(in) < 2 {
		return in
	}
	out := in[:1]
	for _, iv := range in[1:] {
		last := &out[len(out)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// percentile computes the p-quantile of ascending values by linear
// interpolation between closest ranks (index p*(n-1)). On a bimodal
// energy distribution this lands between the modes, so the noise
// partition below it stays populated.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if frac == 0 || lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func popStdDev(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mean := stat.Mean(x, nil)
	var sum float64
	for _, v := range x {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(x)))
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
