package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/hajimehoshi/go-mp3"

	"github.com/tazhate/noxd/internal/tones"
)

// PlayMP3 decodes and plays an MP3 payload (cloud TTS output), blocking
// until playback finishes or stop is closed. The decoded audio is downmixed
// and resampled to the shared context format.
func PlayMP3(data []byte, stop <-chan struct{}) error {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode mp3: %w", err)
	}

	var pcmBuf bytes.Buffer
	if _, err := pcmBuf.ReadFrom(dec); err != nil {
		return fmt.Errorf("read mp3 samples: %w", err)
	}

	// go-mp3 always yields 16-bit stereo at the stream's sample rate.
	mono := downmixStereo(pcmBuf.Bytes())
	pcm := resampleMono(mono, dec.SampleRate(), tones.SampleRate)

	initContext(tones.SampleRate, 1)
	if !ctxReady || globalCtx == nil {
		return fmt.Errorf("audio context not ready")
	}

	player := globalCtx.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	defer player.Close()

	for player.IsPlaying() {
		select {
		case <-stop:
			player.Pause()
			return nil
		case <-time.After(playbackPollGap):
		}
	}
	return nil
}

// downmixStereo averages interleaved 16-bit stereo frames into mono.
func downmixStereo(stereo []byte) []int16 {
	frames := len(stereo) / 4
	mono := make([]int16, frames)
	for i := 0; i < frames; i++ {
		l := int16(binary.LittleEndian.Uint16(stereo[i*4:]))
		r := int16(binary.LittleEndian.Uint16(stereo[i*4+2:]))
		mono[i] = int16((int32(l) + int32(r)) / 2)
	}
	return mono
}

// resampleMono converts mono samples between rates by linear interpolation
// and returns little-endian bytes ready for the player.
func resampleMono(src []int16, srcRate, dstRate int) []byte {
	if srcRate == dstRate {
		out := make([]byte, len(src)*2)
		for i, s := range src {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
		}
		return out
	}

	n := int(int64(len(src)) * int64(dstRate) / int64(srcRate))
	out := make([]byte, n*2)
	ratio := float64(srcRate) / float64(dstRate)
	for i := 0; i < n; i++ {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(src)-1 {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(src[len(src)-1]))
			continue
		}
		frac := pos - float64(j)
		v := float64(src[j])*(1-frac) + float64(src[j+1])*frac
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}
