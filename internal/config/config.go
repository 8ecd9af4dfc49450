// ABOUTME: Environment-driven configuration for all assistant modes
// ABOUTME: Loads .env when present and applies documented defaults
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Defaults for the live voice session.
const (
	DefaultLiveModel         = "models/gemini-2.5-flash-native-audio-preview-09-2025"
	DefaultLiveVoice         = "Zephyr"
	DefaultSystemInstruction = "You are Bittu, a friendly and helpful AI assistant."
)

// Config holds everything read from the environment.
type Config struct {
	APIKey string

	LiveModel         string
	LiveVoice         string
	LiveEndpoint      string // empty means the built-in endpoint
	SystemInstruction string
	SpeechVoice       string // empty means the service default
}

// Load reads configuration from the environment, after loading a .env file
// if one exists in the working directory. A missing API key is not an error
// here; each mode fails explicitly at client construction.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIKey:            os.Getenv("GEMINI_API_KEY"),
		LiveModel:         getenvDefault("BITTU_LIVE_MODEL", DefaultLiveModel),
		LiveVoice:         getenvDefault("BITTU_LIVE_VOICE", DefaultLiveVoice),
		LiveEndpoint:      os.Getenv("BITTU_LIVE_ENDPOINT"),
		SystemInstruction: getenvDefault("BITTU_SYSTEM_PROMPT", DefaultSystemInstruction),
		SpeechVoice:       os.Getenv("BITTU_SPEECH_VOICE"),
	}
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
