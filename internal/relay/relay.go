package relay

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"pimo/internal/config"
	"pimo/internal/feeds"
	"pimo/internal/logging"
	"pimo/internal/store"
)

// Fetcher downloads a feed with conditional-GET validators.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string, cond feeds.Conditional) (feeds.FetchResult, error)
}

// Report summarizes a single relay pass.
type Report struct {
	Feeds     int
	Unchanged int
	Seeded    int
	Posted    int
	Capped    int
	Errors    int
}

// Relay runs polling passes over the configured feeds.
type Relay struct {
	cfg     config.Relay
	store   *store.Store
	fetcher Fetcher
	poster  Poster
	logger  *slog.Logger
	now     func() time.Time
}

// New constructs a relay. The poster may be nil only when the webhook
// URL is unset, in which case Run refuses to post.
func New(cfg config.Relay, st *store.Store, fetcher Fetcher, poster Poster, logger *slog.Logger) *Relay {
	return &Relay{
		cfg:     cfg,
		store:   st,
		fetcher: fetcher,
		poster:  poster,
		logger:  logger.With(logging.String("component", "relay")),
		now:     time.Now,
	}
}

// Run performs one polling pass. Failures on individual feeds are
// logged and counted; the pass continues with the remaining feeds.
func (r *Relay) Run(ctx context.Context) (Report, error) {
	var report Report

	urls, err := feeds.Sources(r.cfg)
	if err != nil {
		return report, err
	}
	report.Feeds = len(urls)
	if len(urls) == 0 {
		r.logger.Info("no feeds configured")
		return report, nil
	}

	budget := r.cfg.MaxPerRun
	for _, feedURL := range urls {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		posted, err := r.pollFeed(ctx, feedURL, &report, &budget)
		if err != nil {
			report.Errors++
			r.logger.Warn("feed poll failed",
				logging.String("feed", feedURL),
				logging.Error(err))
			continue
		}
		report.Posted += posted
	}

	r.logger.Info("relay pass complete",
		logging.Int("feeds", report.Feeds),
		logging.Int("posted", report.Posted),
		logging.Int("seeded", report.Seeded),
		logging.Int("unchanged", report.Unchanged),
		logging.Int("errors", report.Errors))
	return report, nil
}

func (r *Relay) pollFeed(ctx context.Context, feedURL string, report *Report, budget *int) (int, error) {
	meta, err := r.store.GetFeedMeta(ctx, feedURL)
	if err != nil {
		return 0, err
	}

	result, err := r.fetcher.Fetch(ctx, feedURL, feeds.Conditional{
		ETag:         meta.ETag,
		LastModified: meta.LastModified,
	})
	if err != nil {
		return 0, err
	}

	saveMeta := store.FeedMeta{
		FeedURL:      feedURL,
		ETag:         result.ETag,
		LastModified: result.LastModified,
		LastStatus:   result.Status,
		FetchedAt:    r.now(),
	}
	if result.NotModified {
		// keep the validators that earned the 304
		saveMeta.ETag = meta.ETag
		saveMeta.LastModified = meta.LastModified
		if err := r.store.SaveFeedMeta(ctx, saveMeta); err != nil {
			return 0, err
		}
		report.Unchanged++
		return 0, nil
	}

	items, err := feeds.Parse(feedURL, result.Body)
	if err != nil {
		return 0, err
	}
	if err := r.store.SaveFeedMeta(ctx, saveMeta); err != nil {
		return 0, err
	}

	seenCount, err := r.store.SeenCount(ctx, feedURL)
	if err != nil {
		return 0, err
	}
	if seenCount == 0 {
		// first sighting: record everything, post nothing
		keys := make([]string, 0, len(items))
		for _, item := range items {
			keys = append(keys, item.Key())
		}
		if err := r.store.MarkSeen(ctx, feedURL, keys); err != nil {
			return 0, err
		}
		report.Seeded++
		r.logger.Info("seeded feed",
			logging.String("feed", feedURL),
			logging.Int("items", len(items)))
		return 0, nil
	}

	fresh, err := r.unseen(ctx, items)
	if err != nil {
		return 0, err
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Published.Before(fresh[j].Published)
	})

	posted := 0
	for _, item := range fresh {
		if *budget <= 0 {
			report.Capped += len(fresh) - posted
			break
		}
		if r.poster == nil {
			report.Capped += len(fresh) - posted
			break
		}
		if err := r.poster.Post(ctx, item); err != nil {
			return posted, err
		}
		if err := r.store.MarkSeen(ctx, item.FeedURL, []string{item.Key()}); err != nil {
			return posted, err
		}
		posted++
		*budget--
	}
	return posted, nil
}

func (r *Relay) unseen(ctx context.Context, items []feeds.Item) ([]feeds.Item, error) {
	fresh := make([]feeds.Item, 0, len(items))
	for _, item := range items {
		seen, err := r.store.IsSeen(ctx, item.Key())
		if err != nil {
			return nil, err
		}
		if !seen {
			fresh = append(fresh, item)
		}
	}
	return fresh, nil
}
