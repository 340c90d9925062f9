package sample

import "encoding/binary"

// BytesToInt16 converts little-endian byte pairs to int16 samples,
// trimming a trailing odd byte. Grounded on bytesToInt16 in session.go.
func BytesToInt16(pcm []byte) []int16 {
	if len(pcm)%2 == 1 {
		pcm = pcm[:len(pcm)-1]
	}
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

// Int16ToBytes converts int16 samples to little-endian bytes. Grounded
// on int16ToBytes in session.go.
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// BytesToFloat64 deinterleaves little-endian PCM16 bytes into per-channel
// float64 buffers in [-1, 1], one slice per channel.
func BytesToFloat64(pcm []byte, channels int) [][]float64 {
	samples := BytesToInt16(pcm)
	frames := len(samples) / channels
	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			out[c][i] = PCM16(samples[i*channels+c]).ToFloat()
		}
	}
	return out
}

// Float32InterleavedToBytes quantizes interleaved float32 samples in
// [-1, 1] (the decode domain jfreymuth/oggvorbis produces) into
// little-endian PCM16 bytes.
func Float32InterleavedToBytes(buf []float32) []byte {
	out := make([]byte, len(buf)*2)
	for i, s := range buf {
		f := float64(s)
		if f > 1.0 {
			f = 1.0
		} else if f < -1.0 {
			f = -1.0
		}
		v, _ := PCM16FromFloat(f)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// Float64ToBytes re-interleaves per-channel float64 buffers (clamped to
// [-1, 1]) into little-endian PCM16 bytes.
func Float64ToBytes(channelsBuf [][]float64) []byte {
	if len(channelsBuf) == 0 {
		return nil
	}
	channels := len(channelsBuf)
	frames := len(channelsBuf[0])
	samples := make([]int16, frames*channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			f := channelsBuf[c][i]
			if f > 1.0 {
				f = 1.0
			} else if f < -1.0 {
				f = -1.0
			}
			v, _ := PCM16FromFloat(f)
			samples[i*channels+c] = int16(v)
		}
	}
	return Int16ToBytes(samples)
}
