package compositions

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNoMediaLink is returned when a composition carries no media link (e.g. still processing).
	ErrNoMediaLink = errors.New("composition has no media link")
	// ErrMediaFetch wraps failures of the authenticated media-link request.
	ErrMediaFetch = errors.New("composition media fetch failed")
)

// ResolveMediaLocation returns the temporary, pre-signed URL of a composition's media.
// The composition's media link is requested with platform credentials and the signed
// URL it points at is returned; the media itself is not downloaded.
func (s *Service) ResolveMediaLocation(ctx context.Context, sid string) (string, error) {
	if strings.TrimSpace(sid) == "" {
		return "", ErrSidRequired
	}
	cp, err := s.api.FetchComposition(ctx, sid)
	if err != nil {
		return "", err
	}
	link := cp.MediaLink()
	if link == "" {
		return "", fmt.Errorf("%w: %s (status %s)", ErrNoMediaLink, sid, cp.Status)
	}

	target, err := s.api.FetchRedirect(ctx, link)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMediaFetch, err)
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return "", fmt.Errorf("%w: invalid redirect target %q", ErrMediaFetch, target)
	}
	s.logger.Debug("composition media resolved", zap.String("composition_sid", sid), zap.String("host", u.Host))
	return target, nil
}
