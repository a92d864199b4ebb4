package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-kws/algorithms/common"
)

func writeWAV(t *testing.T, path string, sampleRate, bitDepth, channels int, data []int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	require.NoError(t, encoder.Write(&audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, encoder.Close())
}

func openWAV(t *testing.T, path string) *AudioData {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	data, err := DecodeWAV(f)
	require.NoError(t, err)
	return data
}

func TestDecodeWAV_Mono16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	writeWAV(t, path, 16000, 16, 1, []int{0, 16384, -32768, 32767})

	data := openWAV(t, path)
	assert.Equal(t, 16000, data.SampleRate)
	assert.Equal(t, 1, data.Channels)
	assert.Equal(t, 16, data.BitDepth)
	assert.InDeltaSlice(t, []float64{0, 0.5, -1, 32767.0 / 32768.0}, data.PCM, 1e-9)
	assert.Equal(t, 250*time.Microsecond, data.Duration)
}

func TestDecodeWAV_StereoDownmix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeWAV(t, path, 8000, 16, 2, []int{16384, 0, 8192, 8192, -16384, 16384})

	data := openWAV(t, path)
	assert.Equal(t, 8000, data.SampleRate)
	assert.Equal(t, 1, data.Channels)
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0}, data.PCM, 1e-9)
}

func TestDecodeWAV_EightBitIsUnsigned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "u8.wav")
	writeWAV(t, path, 16000, 8, 1, []int{128, 192, 0})

	data := openWAV(t, path)
	assert.InDeltaSlice(t, []float64{0, 0.5, -1}, data.PCM, 1e-9)
}

func TestDecodeWAV_Invalid(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("definitely not RIFF data")))
	assert.ErrorIs(t, err, common.ErrDecoding)
}

func TestResample(t *testing.T) {
	in := []float64{0.1, -0.2, 0.3}
	out, err := Resample(in, 16000, 16000)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	out[0] = 9
	assert.Equal(t, 0.1, in[0])

	_, err = Resample(in, 0, 16000)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	tone := make([]float64, 48000)
	for i := range tone {
		tone[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/48000)
	}
	out, err = Resample(tone, 48000, 16000)
	require.NoError(t, err)
	assert.Len(t, out, 16000)
}

func TestResample_KeepsFilterTail(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		n        int
		want     int
	}{
		{"48k to 16k", 48000, 16000, 48000, 16000},
		{"8k to 16k", 8000, 16000, 8000, 16000},
		{"44.1k to 16k", 44100, 16000, 44100, 16000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tone := make([]float64, tt.n)
			for i := range tone {
				tone[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(tt.from))
			}

			out, err := Resample(tone, tt.from, tt.to)
			require.NoError(t, err)
			require.Len(t, out, tt.want)

			// the tone reaches the final milliseconds
			peak := 0.0
			for _, v := range out[len(out)-tt.to/50 : len(out)-tt.to/500] {
				peak = math.Max(peak, math.Abs(v))
			}
			assert.Greater(t, peak, 0.25)
		})
	}
}

func TestBytesToFloat64(t *testing.T) {
	raw := make([]byte, 0, 14)
	for _, v := range []float32{0.5, -1, 0.25} {
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(v))
	}
	raw = append(raw, 0x01, 0x02) // partial trailing sample

	assert.Equal(t, []float64{0.5, -1, 0.25}, bytesToFloat64(raw))
	assert.Nil(t, bytesToFloat64([]byte{0x01}))
}

func TestDecoder_BuildFFmpegArgs(t *testing.T) {
	d := NewDecoder(nil)
	assert.Equal(t, []string{"-f", "f32le", "-ac", "1", "-ar", "16000", "-v", "error"}, d.buildFFmpegArgs())

	d = NewDecoder(&DecoderConfig{TargetSampleRate: 8000, MaxDuration: 1500 * time.Millisecond})
	assert.Equal(t, []string{"-f", "f32le", "-ac", "1", "-ar", "8000", "-t", "1.50", "-v", "error"}, d.buildFFmpegArgs())
}

func TestDecoder_MissingBinary(t *testing.T) {
	cfg := DefaultDecoderConfig()
	cfg.FFmpegPath = filepath.Join(t.TempDir(), "no-ffmpeg-here")

	_, err := NewDecoder(cfg).DecodeFile(context.Background(), "clip.mp3")
	assert.ErrorIs(t, err, common.ErrDecoding)
}

func TestLoadClip_WAV(t *testing.T) {
	dir := t.TempDir()

	native := filepath.Join(dir, "native.WAV")
	writeWAV(t, native, 16000, 16, 1, []int{0, 16384, -16384})
	pcm, err := LoadClip(context.Background(), native, nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0, 0.5, -0.5}, pcm, 1e-6)

	data := make([]int, 8000)
	for i := range data {
		data[i] = int(8000 * math.Sin(2*math.Pi*300*float64(i)/8000))
	}
	narrow := filepath.Join(dir, "narrow.wav")
	writeWAV(t, narrow, 8000, 16, 1, data)
	pcm, err = LoadClip(context.Background(), narrow, nil)
	require.NoError(t, err)
	assert.Len(t, pcm, 16000)

	cfg := DefaultDecoderConfig()
	cfg.MaxDuration = 100 * time.Millisecond
	pcm, err = LoadClip(context.Background(), narrow, cfg)
	require.NoError(t, err)
	assert.Len(t, pcm, 1600)
}

func TestLoadClip_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadClip(context.Background(), filepath.Join(dir, "missing.wav"), nil)
	assert.ErrorIs(t, err, common.ErrDecoding)

	cfg := DefaultDecoderConfig()
	cfg.FFmpegPath = filepath.Join(dir, "no-ffmpeg-here")
	_, err = LoadClip(context.Background(), filepath.Join(dir, "clip.ogg"), cfg)
	assert.ErrorIs(t, err, common.ErrDecoding)
}

func TestDecoder_DecodeFileWithFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	data := make([]int, 44100)
	for i := range data {
		data[i] = int(16000 * math.Sin(2*math.Pi*440*float64(i)/44100))
	}
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, 44100, 16, 1, data)

	decoded, err := NewDecoder(nil).DecodeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 16000, decoded.SampleRate)
	assert.InDelta(t, 16000, len(decoded.PCM), 100)
	assert.Equal(t, path, decoded.Source)
}

func TestDecodePCM16(t *testing.T) {
	raw := make([]byte, 0, 7)
	for _, s := range []int16{0, 16384, -32768} {
		raw = binary.LittleEndian.AppendUint16(raw, uint16(s))
	}
	raw = append(raw, 0x7f) // odd trailing byte

	data, err := DecodePCM16(bytes.NewReader(raw), 16000)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, -1}, data.PCM)
	assert.Equal(t, 16, data.BitDepth)

	_, err = DecodePCM16(bytes.NewReader(raw), 0)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestLoadClip_RawPCM(t *testing.T) {
	raw := make([]byte, 0, 8)
	for _, s := range []int16{8192, -8192, 0, 32767} {
		raw = binary.LittleEndian.AppendUint16(raw, uint16(s))
	}
	path := filepath.Join(t.TempDir(), "capture.pcm")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	pcm, err := LoadClip(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.25, 0, 32767.0 / 32768.0}, pcm)
}
