package speech

import (
	"encoding/binary"
	"strings"
)

// TTS output format: 24kHz 16-bit mono PCM.
const (
	ttsSampleRate    = 24000
	ttsBitsPerSample = 16
	ttsChannels      = 1
)

// pcmToWAV wraps raw PCM audio with a 44-byte WAV header so browsers can play
// it without knowing the raw sample layout.
func pcmToWAV(pcm []byte, sampleRate, bitsPerSample, channels int) []byte {
	dataLen := len(pcm)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	header := make([]byte, 44)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLen))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLen))

	return append(header, pcm...)
}

// isRawPCM reports whether the MIME type describes headerless linear PCM.
func isRawPCM(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "audio/l16")
}
