package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/greenbasket/greenbasket-web/internal/logger"
)

type GoogleTTS struct {
	client *texttospeech.Client
	logger *logger.Log
}

func NewGoogleTTSClient(credentialsFile string) (*GoogleTTS, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google TTS client: %w", err)
	}

	return &GoogleTTS{
		client: client,
		logger: logger.New(),
	}, nil
}

// Extract language code from voice name (e.g., "en-GB-Standard-D" -> "en-GB")
func (g *GoogleTTS) extractLanguageCode(voice string) string {
	parts := strings.Split(voice, "-")
	if len(parts) >= 2 {
		return fmt.Sprintf("%s-%s", parts[0], parts[1])
	}
	// Fallback to en-US if we can't parse
	return "en-US"
}

// GenerateAudio synthesizes MP3 audio for an assistant reply.
func (g *GoogleTTS) GenerateAudio(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	// Markdown markers read badly aloud
	cleanText := strings.NewReplacer("*", "", "#", "", "`", "").Replace(text)

	req := &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{
			InputSource: &ttspb.SynthesisInput_Text{Text: cleanText},
		},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: g.extractLanguageCode(voice),
			Name:         voice,
		},
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding:   ttspb.AudioEncoding_MP3, // Use MP3 for web compatibility
			SpeakingRate:    1.0,
			VolumeGainDb:    0.0,
			SampleRateHertz: 22050, // Good quality for web
		},
	}

	g.logger.Debug(fmt.Sprintf("Generating Google TTS audio with voice: %s", voice))

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if len(resp.AudioContent) == 0 {
		return nil, fmt.Errorf("empty audio content received from Google TTS")
	}

	g.logger.Debug(fmt.Sprintf("Generated %d bytes of MP3 audio", len(resp.AudioContent)))
	return resp.AudioContent, nil
}

func (g *GoogleTTS) Name() string {
	return "Google Cloud Text-to-Speech"
}

func (g *GoogleTTS) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
