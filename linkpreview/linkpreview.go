//go:generate go run go.uber.org/mock/mockgen -source=linkpreview.go -destination=../mocks/mock_linkpreview.go -package=mocks
// Package linkpreview turns URLs found in message content into preview
// cards pushed on the room's previews topic. The HTML scraping itself
// is an external collaborator behind the Fetcher interface.
package linkpreview

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"roomchat/broadcast"
	"roomchat/contract"
	"roomchat/domain"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// FindFirstURL returns the first http(s) URL in the content, or "".
func FindFirstURL(content string) string {
	return urlPattern.FindString(content)
}

// Preview is the card delivered to clients.
type Preview struct {
	MessageID   domain.MessageID `json:"messageId"`
	URL         string           `json:"url"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ImageURL    string           `json:"imageUrl"`
}

// Fetcher resolves a URL into preview metadata. Implementations live
// outside the core (HTML scraping, oEmbed, caching).
type Fetcher interface {
	Fetch(ctx context.Context, url string) (title, description, imageURL string, err error)
}

// Service generates previews and pushes them to the room's previews
// topic. Failures are logged and dropped; a missing preview never
// degrades the message flow.
type Service struct {
	log     *slog.Logger
	fetcher Fetcher
	gateway contract.Gateway
}

func NewService(log *slog.Logger, fetcher Fetcher, gateway contract.Gateway) *Service {
	return &Service{log: log, fetcher: fetcher, gateway: gateway}
}

// GenerateAndSend fetches metadata for the URL and publishes the card.
// Callers fire it from listener workers, never from request paths.
func (s *Service) GenerateAndSend(ctx context.Context, messageID domain.MessageID, roomID domain.RoomID, url string) {
	if s.fetcher == nil {
		return
	}
	title, description, imageURL, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.log.Debug(fmt.Sprintf("Preview fetch failed for %s: %v", url, err))
		return
	}
	preview := Preview{
		MessageID:   messageID,
		URL:         url,
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
	}
	if err := s.gateway.Publish(ctx, broadcast.RoomPreviewsTopic(roomID), preview); err != nil {
		s.log.Debug(fmt.Sprintf("Preview publish failed for message %d: %v", messageID, err))
	}
}
