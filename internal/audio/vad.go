package audio

import (
	"encoding/binary"
	"math"
)

// nominalSpeechRMS is the full-scale RMS of speech at roughly -20 dBFS.
// Region energy is scored relative to this level, so a region at nominal
// speech loudness scores 1.0 and silence scores near 0.
const nominalSpeechRMS = 0.1

// SpeechScore estimates how much speech energy a PCM window carries on a
// 0..1 scale. The window is split into one-second regions; the score is
// the loudest region's RMS relative to nominal speech level, so a window
// with even a single second of speech is kept.
func SpeechScore(pcm []byte, sampleRate int) float64 {
	if len(pcm) < bytesPerSample || sampleRate <= 0 {
		return 0
	}
	regionBytes := sampleRate * bytesPerSample
	var best float64
	for offset := 0; offset < len(pcm); offset += regionBytes {
		end := offset + regionBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		if score := regionScore(pcm[offset:end]); score > best {
			best = score
		}
	}
	return best
}

func regionScore(region []byte) float64 {
	samples := len(region) / bytesPerSample
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < samples*bytesPerSample; i += bytesPerSample {
		sample := int16(binary.LittleEndian.Uint16(region[i:]))
		normalized := float64(sample) / 32768
		sum += normalized * normalized
	}
	rms := math.Sqrt(sum / float64(samples))
	score := rms / nominalSpeechRMS
	if score > 1 {
		return 1
	}
	return score
}

// HasSpeech reports whether the window's speech score meets the threshold.
func HasSpeech(pcm []byte, sampleRate int, threshold float64) bool {
	return SpeechScore(pcm, sampleRate) >= threshold
}

// Span marks a stretch of a window that carries speech, in seconds
// relative to the window start.
type Span struct {
	Start float64
	End   float64
}

// SpeechSpans returns the one-second regions whose energy score meets the
// threshold, with adjacent kept regions merged. An empty result means the
// whole window can be skipped.
func SpeechSpans(pcm []byte, sampleRate int, threshold float64) []Span {
	if len(pcm) < bytesPerSample || sampleRate <= 0 {
		return nil
	}
	regionBytes := sampleRate * bytesPerSample
	var spans []Span
	for offset := 0; offset < len(pcm); offset += regionBytes {
		end := offset + regionBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		if regionScore(pcm[offset:end]) < threshold {
			continue
		}
		start := float64(offset) / float64(regionBytes)
		stop := float64(end) / float64(regionBytes)
		if n := len(spans); n > 0 && spans[n-1].End == start {
			spans[n-1].End = stop
			continue
		}
		spans = append(spans, Span{Start: start, End: stop})
	}
	return spans
}
