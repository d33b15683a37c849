package tones

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/tazhate/noxd/internal/domain"
)

// Each theme maps to a short looping waveform built by additive sine
// synthesis. Generation is fully deterministic: the same theme always yields
// byte-identical audio.
const (
	SampleRate  = 22050
	durationSec = 2
	numSamples  = SampleRate * durationSec
)

type waveformFunc func(t float64) float64

var waveforms = map[domain.Theme]waveformFunc{
	// Pulsar: sharp rhythmic beeps (gated sine with amplitude modulation).
	domain.ThemePulsar: func(t float64) float64 {
		const beepRate = 4
		phase := math.Mod(t*beepRate, 1)
		envelope := 0.0
		if math.Sin(math.Pi*phase) > 0.3 {
			envelope = 1
		}
		return envelope * math.Sin(2*math.Pi*880*t) * 0.7
	},
	// Nebula: warm soft pad (layered detuned sines with a slow fade).
	domain.ThemeNebula: func(t float64) float64 {
		a := math.Sin(2 * math.Pi * 330 * t)
		b := math.Sin(2 * math.Pi * 333 * t)
		c := math.Sin(2*math.Pi*440*t) * 0.5
		fade := math.Sin(math.Pi * (t / durationSec))
		return (a + b + c) / 3 * fade * 0.6
	},
	// Quasar: rising frequency sweep.
	domain.ThemeQuasar: func(t float64) float64 {
		freq := 220 + 660*(t/durationSec)
		mod := math.Sin(2*math.Pi*6*t)*0.3 + 0.7
		return math.Sin(2*math.Pi*freq*t) * mod * 0.65
	},
	// Saturn: deep low hum with overtone rings and a slow throb.
	domain.ThemeSaturn: func(t float64) float64 {
		fundamental := math.Sin(2 * math.Pi * 110 * t)
		ring1 := math.Sin(2*math.Pi*220*t) * 0.4
		ring2 := math.Sin(2*math.Pi*330*t) * 0.2
		throb := math.Sin(2*math.Pi*1.5*t)*0.3 + 0.7
		return (fundamental + ring1 + ring2) / 1.6 * throb * 0.6
	},
}

// Generate synthesizes the looping tone for a theme as a complete mono
// 16-bit PCM WAV file. Unknown themes fall back to nebula.
func Generate(theme domain.Theme) []byte {
	fn, ok := waveforms[theme]
	if !ok {
		fn = waveforms[domain.ThemeNebula]
	}

	samples := make([]int16, numSamples)
	for i := range samples {
		t := float64(i) / SampleRate
		// Clip before quantization so overdriven sums can't wrap around.
		v := math.Max(-1, math.Min(1, fn(t)))
		samples[i] = int16(math.Round(v * 32767))
	}

	return buildWAV(samples)
}

func buildWAV(samples []int16) []byte {
	const (
		numChannels   = 1
		bitsPerSample = 16
	)
	byteRate := SampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := len(samples) * bitsPerSample / 8

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}
