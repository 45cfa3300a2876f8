package gateway

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWavFromPCM(t *testing.T) {
	pcm := make([]byte, 4800) // 100ms of 24kHz mono s16le
	wav := wavFromPCM(pcm, geminiTTSSampleRate, 1, 16)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected 44-byte header plus payload, got %d bytes total", len(wav))
	}
	if !bytes.Equal(wav[0:4], []byte("RIFF")) || !bytes.Equal(wav[8:12], []byte("WAVE")) {
		t.Error("missing RIFF/WAVE markers")
	}
	if riffSize := binary.LittleEndian.Uint32(wav[4:8]); riffSize != uint32(36+len(pcm)) {
		t.Errorf("wrong RIFF chunk size: %d", riffSize)
	}
	if channels := binary.LittleEndian.Uint16(wav[22:24]); channels != 1 {
		t.Errorf("expected mono, got %d channels", channels)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != geminiTTSSampleRate {
		t.Errorf("expected sample rate %d, got %d", geminiTTSSampleRate, rate)
	}
	if byteRate := binary.LittleEndian.Uint32(wav[28:32]); byteRate != geminiTTSSampleRate*2 {
		t.Errorf("wrong byte rate: %d", byteRate)
	}
	if dataSize := binary.LittleEndian.Uint32(wav[40:44]); dataSize != uint32(len(pcm)) {
		t.Errorf("wrong data chunk size: %d", dataSize)
	}
}

func TestExtensionForMIME(t *testing.T) {
	tests := []struct {
		mime     string
		expected string
	}{
		{"audio/mpeg", ".mp3"},
		{"audio/mp3", ".mp3"},
		{"audio/ogg", ".ogg"},
		{"audio/wav", ".wav"},
		{"audio/m4a", ".m4a"},
		{"", ".wav"},
		{"application/octet-stream", ".wav"},
	}

	for _, tt := range tests {
		if got := extensionForMIME(tt.mime); got != tt.expected {
			t.Errorf("extensionForMIME(%q) = %q, expected %q", tt.mime, got, tt.expected)
		}
	}
}
