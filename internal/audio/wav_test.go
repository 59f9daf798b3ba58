package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-audio/wav"
)

func TestEncodeWAV(t *testing.T) {
	// Generate test audio samples (440Hz sine wave for 0.1 seconds at 16kHz)
	sampleRate := 16000
	duration := 0.1
	frequency := 440.0

	numSamples := int(float64(sampleRate) * duration)
	samples := make([]float32, numSamples)

	for i := 0; i < numSamples; i++ {
		t := float64(i) / float64(sampleRate)
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*frequency*t))
	}

	wavData := EncodeWAV(samples, sampleRate)

	// WAV header should be 44 bytes
	expectedSize := 44 + len(samples)*2
	if len(wavData) != expectedSize {
		t.Errorf("Expected WAV size %d, got %d", expectedSize, len(wavData))
	}

	if err := ValidateWAV(wavData); err != nil {
		t.Errorf("Generated WAV is invalid: %v", err)
	}

	info, err := GetWAVInfo(wavData)
	if err != nil {
		t.Fatalf("Failed to get WAV info: %v", err)
	}

	if info.SampleRate != uint32(sampleRate) {
		t.Errorf("Expected sample rate %d, got %d", sampleRate, info.SampleRate)
	}

	if info.Channels != 1 {
		t.Errorf("Expected 1 channel, got %d", info.Channels)
	}

	if info.BitsPerSample != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", info.BitsPerSample)
	}

	if info.NumSamples != uint32(numSamples) {
		t.Errorf("Expected %d samples, got %d", numSamples, info.NumSamples)
	}

	expectedDuration := float64(numSamples) / float64(sampleRate)
	if math.Abs(info.Duration-expectedDuration) > 0.001 {
		t.Errorf("Expected duration %.3f, got %.3f", expectedDuration, info.Duration)
	}
}

func TestEncodeWAVHeaderFields(t *testing.T) {
	tests := []struct {
		name       string
		numSamples int
		sampleRate int
	}{
		{"empty", 0, 16000},
		{"one sample", 1, 16000},
		{"device native rate", 4096, 48000},
		{"odd length", 12345, 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := EncodeWAV(make([]float32, tt.numSamples), tt.sampleRate)

			if len(data) != 44+tt.numSamples*2 {
				t.Fatalf("Expected %d bytes, got %d", 44+tt.numSamples*2, len(data))
			}

			le := binary.LittleEndian
			dataSize := uint32(tt.numSamples * 2)

			checks := []struct {
				field string
				got   uint32
				want  uint32
			}{
				{"chunk size", le.Uint32(data[4:8]), 36 + dataSize},
				{"fmt size", le.Uint32(data[16:20]), 16},
				{"audio format", uint32(le.Uint16(data[20:22])), 1},
				{"channels", uint32(le.Uint16(data[22:24])), 1},
				{"sample rate", le.Uint32(data[24:28]), uint32(tt.sampleRate)},
				{"byte rate", le.Uint32(data[28:32]), uint32(tt.sampleRate * 2)},
				{"block align", uint32(le.Uint16(data[32:34])), 2},
				{"bits per sample", uint32(le.Uint16(data[34:36])), 16},
				{"data size", le.Uint32(data[40:44]), dataSize},
			}
			for _, c := range checks {
				if c.got != c.want {
					t.Errorf("%s: expected %d, got %d", c.field, c.want, c.got)
				}
			}

			for _, tag := range []struct {
				offset int
				want   string
			}{{0, "RIFF"}, {8, "WAVE"}, {12, "fmt "}, {36, "data"}} {
				if got := string(data[tag.offset : tag.offset+4]); got != tag.want {
					t.Errorf("Expected %q at offset %d, got %q", tag.want, tag.offset, got)
				}
			}
		})
	}
}

func TestEncodeWAVEmpty(t *testing.T) {
	data := EncodeWAV(nil, 16000)
	if len(data) != 44 {
		t.Fatalf("Expected 44-byte header, got %d bytes", len(data))
	}
	if size := binary.LittleEndian.Uint32(data[40:44]); size != 0 {
		t.Errorf("Expected data size 0, got %d", size)
	}
	if err := ValidateWAV(data); err != nil {
		t.Errorf("Empty WAV should be valid: %v", err)
	}
}

func TestFloatToPCM16(t *testing.T) {
	tests := []struct {
		in   float32
		want int16
	}{
		{1.0, 32767},
		{1.5, 32767},
		{float32(math.Inf(1)), 32767},
		{-1.0, -32768},
		{-2.0, -32768},
		{float32(math.Inf(-1)), -32768},
		{0, 0},
		{0.5, 16383},
		{-0.5, -16384},
		{float32(math.NaN()), 0},
	}

	for _, tt := range tests {
		if got := FloatToPCM16(tt.in); got != tt.want {
			t.Errorf("FloatToPCM16(%v): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestFloatToPCM16Monotonic(t *testing.T) {
	prev := FloatToPCM16(-1)
	for i := -1000; i <= 1000; i++ {
		cur := FloatToPCM16(float32(i) / 1000)
		if cur < prev {
			t.Fatalf("Conversion not monotonic at %d/1000: %d < %d", i, cur, prev)
		}
		prev = cur
	}
}

func TestEncodeWAVSampleBytes(t *testing.T) {
	samples := []float32{0, 1, -1, 0.25, -0.25}
	data := EncodeWAV(samples, 8000)

	for i, s := range samples {
		got := int16(binary.LittleEndian.Uint16(data[44+i*2:]))
		if want := FloatToPCM16(s); got != want {
			t.Errorf("Sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestEncodeWAVDecodesWithGoAudio(t *testing.T) {
	samples := []float32{0.1, -0.1, 0.9, -0.9, 0}
	data := EncodeWAV(samples, 22050)

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		t.Fatal("go-audio rejected encoded WAV")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("Failed to decode PCM: %v", err)
	}

	if dec.SampleRate != 22050 {
		t.Errorf("Expected sample rate 22050, got %d", dec.SampleRate)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), len(buf.Data))
	}
	for i, s := range samples {
		if buf.Data[i] != int(FloatToPCM16(s)) {
			t.Errorf("Sample %d: expected %d, got %d", i, FloatToPCM16(s), buf.Data[i])
		}
	}
}

func TestValidateWAV(t *testing.T) {
	valid := EncodeWAV([]float32{0.1, 0.2}, 16000)

	truncated := valid[:len(valid)-1]

	badRIFF := append([]byte(nil), valid...)
	copy(badRIFF[0:4], "RIFX")

	badData := append([]byte(nil), valid...)
	copy(badData[36:40], "junk")

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid", valid, false},
		{"too short", valid[:20], true},
		{"truncated payload", truncated, true},
		{"bad riff", badRIFF, true},
		{"bad data tag", badData, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWAV(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWAV() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetWAVInfoRejectsBadFormat(t *testing.T) {
	valid := EncodeWAV(make([]float32, 4), 16000)

	withField := func(offset int, value uint16) []byte {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint16(data[offset:offset+2], value)
		return data
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid", valid, false},
		{"zero bits", withField(34, 0), true},
		{"four bits", withField(34, 4), true},
		{"twelve bits", withField(34, 12), true},
		{"zero channels", withField(22, 0), true},
		{"24 bits", withField(34, 24), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := GetWAVInfo(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetWAVInfo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && info.NumSamples == 0 {
				t.Errorf("Expected samples to be counted, got %+v", info)
			}
		})
	}
}
