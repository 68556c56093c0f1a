package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyMessage indicates the caller sent no question.
var ErrEmptyMessage = errors.New("message is required")

// TextCompleter is the single-turn chat collaborator.
type TextCompleter interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Service answers food-safety questions for the in-app assistant.
type Service struct {
	Client       TextCompleter
	SystemPrompt string
}

func NewService(client TextCompleter, systemPrompt string) *Service {
	return &Service{Client: client, SystemPrompt: systemPrompt}
}

func (s *Service) Ask(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	reply, err := s.Client.Chat(ctx, s.SystemPrompt, message)
	if err != nil {
		return "", fmt.Errorf("assistant reply: %w", err)
	}
	if reply == "" {
		reply = "I apologize, I could not generate a response."
	}
	return stripMarkdown(reply), nil
}

// The prompt forbids markdown, but models emit it anyway; the mobile client
// renders plain text only.
var (
	boldAsterisks  = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicAsterisk = regexp.MustCompile(`\*([^*]+)\*`)
	boldUnderscore = regexp.MustCompile(`__([^_]+)__`)
	italicUnder    = regexp.MustCompile(`_([^_]+)_`)
)

func stripMarkdown(s string) string {
	s = boldAsterisks.ReplaceAllString(s, "$1")
	s = italicAsterisk.ReplaceAllString(s, "$1")
	s = boldUnderscore.ReplaceAllString(s, "$1")
	s = italicUnder.ReplaceAllString(s, "$1")
	return s
}
