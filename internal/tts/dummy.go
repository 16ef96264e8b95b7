package tts

import (
	"context"

	"github.com/greenbasket/greenbasket-web/internal/logger"
)

type DummyTts struct {
}

func NewDummyTts() *DummyTts {
	return &DummyTts{}
}

func (d *DummyTts) GenerateAudio(_ context.Context, text, voice string) ([]byte, error) {
	logger.New().Debug("no tts configured. ignoring TTS request")
	return nil, nil
}

func (d *DummyTts) Name() string {
	return "dummy"
}
