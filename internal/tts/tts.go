package tts

import "context"

// Tts synthesizes spoken audio for assistant replies.
type Tts interface {
	// GenerateAudio returns MP3 audio for the given text, or nil when
	// synthesis is unavailable.
	GenerateAudio(ctx context.Context, text, voice string) ([]byte, error)
	Name() string
}

// New builds the configured TTS client, falling back to the dummy when
// the type is unknown or disabled.
func New(ttsType, credentialsFile string) (Tts, error) {
	if ttsType == "google" {
		return NewGoogleTTSClient(credentialsFile)
	}
	return NewDummyTts(), nil
}
