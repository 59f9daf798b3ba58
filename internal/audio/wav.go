package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// WAVHeaderSize is the size of the canonical RIFF/WAVE header
	WAVHeaderSize = 44

	// BytesPerSample for 16-bit PCM
	BytesPerSample = 2
)

// WAVHeader represents the header structure of a WAV file
type WAVHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16  // Number of channels
	SampleRate    uint32  // Sample rate
	ByteRate      uint32  // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16  // NumChannels * BitsPerSample / 8
	BitsPerSample uint16  // Bits per sample
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

// newMonoHeader builds the header for single-channel 16-bit PCM
func newMonoHeader(numSamples int, sampleRate int) WAVHeader {
	numChannels := uint16(1)
	bitsPerSample := uint16(16)
	dataSize := uint32(numSamples * BytesPerSample)

	return WAVHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   numChannels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8,
		BlockAlign:    numChannels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
}

// FloatToPCM16 converts a float sample to a signed 16-bit PCM value.
// Input is clamped to [-1, 1]; negative values scale by 32768 and
// non-negative values by 32767, truncating toward zero.
func FloatToPCM16(f float32) int16 {
	s := float64(f)
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	} else if s != s {
		// NaN
		s = 0
	}

	if s < 0 {
		return int16(s * 0x8000)
	}
	return int16(s * 0x7FFF)
}

// EncodeWAV encodes float samples as a mono 16-bit PCM WAV byte stream.
// An empty sample slice still yields a well-formed 44-byte header.
func EncodeWAV(samples []float32, sampleRate int) []byte {
	header := newMonoHeader(len(samples), sampleRate)

	out := make([]byte, WAVHeaderSize+len(samples)*BytesPerSample)

	// Header fields are fixed-size so binary.Write into a buffer cannot fail
	buf := bytes.NewBuffer(out[:0])
	_ = binary.Write(buf, binary.LittleEndian, header)

	offset := WAVHeaderSize
	for _, s := range samples {
		binary.LittleEndian.PutUint16(out[offset:], uint16(FloatToPCM16(s)))
		offset += BytesPerSample
	}

	return out
}

// ValidateWAV validates a WAV file format without decoding the entire audio data
func ValidateWAV(data []byte) error {
	if len(data) < WAVHeaderSize {
		return fmt.Errorf("WAV data too short: need at least %d bytes, got %d", WAVHeaderSize, len(data))
	}

	if string(data[0:4]) != "RIFF" {
		return fmt.Errorf("invalid WAV file: missing RIFF header")
	}

	if string(data[8:12]) != "WAVE" {
		return fmt.Errorf("invalid WAV file: missing WAVE format")
	}

	if string(data[12:16]) != "fmt " {
		return fmt.Errorf("invalid WAV file: missing fmt chunk")
	}

	if string(data[36:40]) != "data" {
		return fmt.Errorf("invalid WAV file: missing data chunk")
	}

	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if int(dataSize) != len(data)-WAVHeaderSize {
		return fmt.Errorf("invalid WAV file: data chunk declares %d bytes, found %d", dataSize, len(data)-WAVHeaderSize)
	}

	return nil
}

// WAVInfo contains basic information about a WAV file
type WAVInfo struct {
	SampleRate    uint32  `json:"sample_rate"`
	Channels      uint16  `json:"channels"`
	BitsPerSample uint16  `json:"bits_per_sample"`
	Duration      float64 `json:"duration_seconds"`
	DataSize      uint32  `json:"data_size_bytes"`
	NumSamples    uint32  `json:"num_samples"`
}

// GetWAVInfo extracts metadata from a WAV file
func GetWAVInfo(data []byte) (*WAVInfo, error) {
	if err := ValidateWAV(data); err != nil {
		return nil, err
	}

	var header WAVHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	if header.BitsPerSample < 8 || header.BitsPerSample%8 != 0 || header.NumChannels == 0 {
		return nil, fmt.Errorf("invalid WAV header: %d channels, %d bits per sample", header.NumChannels, header.BitsPerSample)
	}

	numSamples := header.Subchunk2Size / (uint32(header.BitsPerSample) / 8) / uint32(header.NumChannels)

	duration := float64(0)
	if header.SampleRate > 0 {
		duration = float64(numSamples) / float64(header.SampleRate)
	}

	return &WAVInfo{
		SampleRate:    header.SampleRate,
		Channels:      header.NumChannels,
		BitsPerSample: header.BitsPerSample,
		Duration:      duration,
		DataSize:      header.Subchunk2Size,
		NumSamples:    numSamples,
	}, nil
}
