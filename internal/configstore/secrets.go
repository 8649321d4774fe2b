package configstore

import (
	"os"

	"DeBrief/internal/domain/models"

	"github.com/joho/godotenv"
)

const (
	envBotToken = "DEBRIEF_TELEGRAM_BOT_TOKEN"
	envChatID   = "DEBRIEF_TELEGRAM_CHAT_ID"
)

// Secrets resolves chat credentials from the process environment and an
// optional dotenv file. Environment variables win over the file.
type Secrets struct {
	file   string
	getenv func(string) string
}

func NewSecrets(file string) *Secrets {
	return &Secrets{file: file, getenv: os.Getenv}
}

// Telegram returns whatever credentials the secret sources hold; fields may be empty.
func (s *Secrets) Telegram() models.TelegramCredentials {
	if s == nil {
		return models.TelegramCredentials{}
	}

	var fromFile map[string]string
	if s.file != "" {
		// a missing dotenv file is the common case
		if m, err := godotenv.Read(s.file); err == nil {
			fromFile = m
		}
	}

	pick := func(key string) string {
		if v := s.getenv(key); v != "" {
			return v
		}
		return fromFile[key]
	}

	return models.TelegramCredentials{
		BotToken: pick(envBotToken),
		ChatID:   pick(envChatID),
	}
}

// Overlay replaces cfg's chat credentials field by field with non-empty secrets.
func (s *Secrets) Overlay(cfg *models.Configuration) {
	creds := s.Telegram()
	if creds.BotToken != "" {
		cfg.Telegram.BotToken = creds.BotToken
	}
	if creds.ChatID != "" {
		cfg.Telegram.ChatID = creds.ChatID
	}
}
