package agent

import "context"

// SpeechToText turns a captured audio file into a transcript. Backed by
// an external service; the runtime only needs the text.
type SpeechToText interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

// TextToSpeech speaks a reply aloud in the given voice.
type TextToSpeech interface {
	Speak(ctx context.Context, text, voice string) error
}
