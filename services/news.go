package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/models"
	"golang.org/x/sync/errgroup"
)

const (
	maxHeadlines       = 30
	maxConcurrentFeeds = 4
	feedTimeout        = 10 * time.Second
)

// NewsService aggregates headlines from RSS/Atom feeds and caches them. Feeds
// that fail are logged and left out; one bad feed never fails the listing.
type NewsService struct {
	feeds  []string
	ttl    time.Duration
	parser *gofeed.Parser
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.Mutex
	cached    []models.NewsItem
	fetchedAt time.Time
}

func NewNewsService(feeds []string, ttl time.Duration) *NewsService {
	return &NewsService{
		feeds:  feeds,
		ttl:    ttl,
		parser: gofeed.NewParser(),
		logger: log.With().Str("service", "news").Logger(),
		now:    time.Now,
	}
}

// Headlines returns the newest items across every feed, newest first.
func (s *NewsService) Headlines(ctx context.Context) []models.NewsItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.cached
	}

	s.cached = s.fetch(ctx)
	s.fetchedAt = s.now()
	return s.cached
}

func (s *NewsService) fetch(ctx context.Context) []models.NewsItem {
	var (
		mu    sync.Mutex
		items []models.NewsItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFeeds)

	for _, feedURL := range s.feeds {
		feedURL := feedURL
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, feedTimeout)
			defer cancel()

			feed, err := s.parser.ParseURLWithContext(feedURL, fctx)
			if err != nil {
				s.logger.Warn().Err(err).Str("feed", feedURL).Msg("Failed to fetch feed")
				return nil
			}

			parsed := feedItems(feed)
			mu.Lock()
			items = append(items, parsed...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	if len(items) > maxHeadlines {
		items = items[:maxHeadlines]
	}
	if items == nil {
		items = []models.NewsItem{}
	}
	return items
}

func feedItems(feed *gofeed.Feed) []models.NewsItem {
	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		items = append(items, models.NewsItem{
			Title:       strings.TrimSpace(item.Title),
			Link:        item.Link,
			Source:      feed.Title,
			Summary:     strings.TrimSpace(item.Description),
			PublishedAt: published,
		})
	}
	return items
}
