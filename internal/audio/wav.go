// Package audio serializes float waveforms to 16-bit mono PCM WAV.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// WAVHeaderSize is the byte length of the RIFF/WAVE/fmt/data preamble.
const WAVHeaderSize = 44

// EncodeWAVPCM16 encodes float32 samples as an uncompressed 16-bit
// little-endian mono WAV container.
//
// By default each sample is scaled by 32767 and truncated to int16 without
// clamping; out-of-range floats wrap on conversion. With clamp set,
// samples are limited to [-1, 1] first.
func EncodeWAVPCM16(samples []float32, sampleRate int, clamp bool) ([]byte, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = pcm16(s, clamp)
	}

	const channels = 1
	const bitsPerSample = 16
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(pcm) * 2
	riffSize := 4 + (8 + 16) + (8 + dataSize)

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(riffSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")

	_ = binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range pcm {
		_ = binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes(), nil
}

// WriteWAVFile encodes samples and writes the container to path.
func WriteWAVFile(path string, samples []float32, sampleRate int, clamp bool) error {
	data, err := EncodeWAVPCM16(samples, sampleRate, clamp)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write WAV file: %w", err)
	}

	return nil
}

// pcm16 converts one float sample to int16. The unclamped path truncates
// toward zero and wraps modulo 2^16. The vocoder was calibrated against
// exactly this conversion, so the wrap is part of the contract.
func pcm16(s float32, clamp bool) int16 {
	if clamp {
		clamped := math.Max(-1.0, math.Min(1.0, float64(s)))

		return int16(clamped * 32767)
	}

	return int16(int32(float64(s) * 32767))
}
