package audio_test

import (
	"encoding/binary"
	"math"
	"testing"

	"subgen/internal/audio"
)

// sinePCM renders a mono s16le sine wave at the given amplitude (0..32767).
func sinePCM(seconds float64, sampleRate int, amplitude float64) []byte {
	samples := int(seconds * float64(sampleRate))
	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := amplitude * math.Sin(2*math.Pi*220*float64(i)/float64(sampleRate))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

func TestSpeechScoreSilence(t *testing.T) {
	silence := make([]byte, 10*testRate*2)
	if score := audio.SpeechScore(silence, testRate); score != 0 {
		t.Fatalf("silence scored %f", score)
	}
}

func TestSpeechScoreLoudTone(t *testing.T) {
	loud := sinePCM(5, testRate, 8000)
	score := audio.SpeechScore(loud, testRate)
	if score < 0.9 {
		t.Fatalf("loud tone scored only %f", score)
	}
	if !audio.HasSpeech(loud, testRate, 0.30) {
		t.Fatal("loud tone should pass the default threshold")
	}
}

func TestSpeechScoreQuietHum(t *testing.T) {
	quiet := sinePCM(5, testRate, 400)
	score := audio.SpeechScore(quiet, testRate)
	if score >= 0.30 {
		t.Fatalf("quiet hum scored %f, expected below threshold", score)
	}
	if audio.HasSpeech(quiet, testRate, 0.30) {
		t.Fatal("quiet hum should be gated out")
	}
}

func TestSpeechScoreBriefSpeechKeepsWindow(t *testing.T) {
	// 9 seconds of silence with a single loud second in the middle.
	window := make([]byte, 0, 10*testRate*2)
	window = append(window, make([]byte, 4*testRate*2)...)
	window = append(window, sinePCM(1, testRate, 8000)...)
	window = append(window, make([]byte, 5*testRate*2)...)

	if !audio.HasSpeech(window, testRate, 0.30) {
		t.Fatal("a single second of speech should keep the window")
	}
}

func TestSpeechSpansLocateSpeech(t *testing.T) {
	// Silence, one loud second, silence: a single span over second 4..5.
	window := make([]byte, 0, 10*testRate*2)
	window = append(window, make([]byte, 4*testRate*2)...)
	window = append(window, sinePCM(1, testRate, 8000)...)
	window = append(window, make([]byte, 5*testRate*2)...)

	spans := audio.SpeechSpans(window, testRate, 0.30)
	if len(spans) != 1 {
		t.Fatalf("spans = %+v, want exactly one", spans)
	}
	if spans[0].Start != 4 || spans[0].End != 5 {
		t.Fatalf("span = %+v, want 4..5", spans[0])
	}
}

func TestSpeechSpansMergeAdjacentRegions(t *testing.T) {
	window := append(sinePCM(2, testRate, 8000), make([]byte, 3*testRate*2)...)
	spans := audio.SpeechSpans(window, testRate, 0.30)
	if len(spans) != 1 || spans[0].Start != 0 || spans[0].End != 2 {
		t.Fatalf("spans = %+v, want single 0..2", spans)
	}
}

func TestSpeechSpansSilence(t *testing.T) {
	if spans := audio.SpeechSpans(make([]byte, 5*testRate*2), testRate, 0.30); len(spans) != 0 {
		t.Fatalf("silence produced spans %+v", spans)
	}
}

func TestSpeechScoreEmptyInput(t *testing.T) {
	if score := audio.SpeechScore(nil, testRate); score != 0 {
		t.Fatalf("empty input scored %f", score)
	}
	if score := audio.SpeechScore([]byte{0x01}, testRate); score != 0 {
		t.Fatalf("sub-sample input scored %f", score)
	}
}
