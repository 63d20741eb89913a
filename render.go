package ambient

import (
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// renderBlock is the frame count pulled per step when rendering offline.
const renderBlock = 512

// Render fills dst with interleaved stereo frames, advancing the engine
// clock. With the offline backend nothing else pulls, so rendering is
// deterministic for a fixed seed.
func (e *Engine) Render(dst []float32) {
	e.Process(dst)
}

// RenderSamples renders seconds of audio and returns interleaved stereo frames.
func (e *Engine) RenderSamples(seconds float64) []float32 {
	frames := int(float64(e.sampleRate) * seconds)
	out := make([]float32, frames*2)
	for i := 0; i < len(out); i += 2 * renderBlock {
		e.Process(out[i:min(i+2*renderBlock, len(out))])
	}
	return out
}

// RenderWAV renders seconds of audio to w as a 16-bit stereo WAV file.
func (e *Engine) RenderWAV(w io.WriteSeeker, seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: render length must be positive", ErrInvalidParameter)
	}
	remaining := int(float64(e.sampleRate) * seconds)
	buf := make([]float32, 2*renderBlock)
	streamer := beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if remaining <= 0 {
			return 0, false
		}
		n = min(len(samples), remaining, renderBlock)
		e.Process(buf[:2*n])
		for i := 0; i < n; i++ {
			samples[i][0] = float64(buf[2*i])
			samples[i][1] = float64(buf[2*i+1])
		}
		remaining -= n
		return n, true
	})
	format := beep.Format{
		SampleRate:  beep.SampleRate(e.sampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(w, streamer, format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}
