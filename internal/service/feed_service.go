package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/myanedu/portal-api/internal/models"
	"github.com/myanedu/portal-api/pkg/config"
)

// NotificationFeed is one poll result pushed to a notification watcher.
type NotificationFeed struct {
	Items       []models.Notification `json:"items"`
	UnreadCount int                   `json:"unread_count"`
	PolledAt    time.Time             `json:"polled_at"`
}

// CommentFeed is one poll result pushed to a comment watcher.
type CommentFeed struct {
	Items    []models.Comment `json:"items"`
	PolledAt time.Time        `json:"polled_at"`
}

type notificationSource interface {
	Notifications(ctx context.Context, sessionID string) ([]models.Notification, error)
}

type commentSource interface {
	Comments(ctx context.Context, lessonID string) ([]models.Comment, error)
}

type feedWatcher struct {
	key    string
	cancel context.CancelFunc
	done   chan struct{}
}

// FeedService owns the periodic polling the browser relies on for live
// notification badges and classroom discussion. Each watcher is a
// context-scoped goroutine registered under its subject key, so logout can
// stop every poller belonging to a session and shutdown can stop them all.
// Watchers also stop themselves after the idle timeout; an abandoned tab
// must not poll the backend forever.
type FeedService struct {
	notifications notificationSource
	comments      commentSource
	cfg           config.FeedsConfig
	metrics       *MetricsService
	logger        *zap.Logger

	mu       sync.Mutex
	watchers map[*feedWatcher]struct{}
	root     context.Context
	stop     context.CancelFunc
}

func NewFeedService(notifications notificationSource, comments commentSource, cfg config.FeedsConfig, metrics *MetricsService, logger *zap.Logger) *FeedService {
	if cfg.NotificationInterval <= 0 {
		cfg.NotificationInterval = 5 * time.Second
	}
	if cfg.CommentInterval <= 0 {
		cfg.CommentInterval = 5 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}
	root, stop := context.WithCancel(context.Background())
	return &FeedService{
		notifications: notifications,
		comments:      comments,
		cfg:           cfg,
		metrics:       metrics,
		logger:        logger,
		watchers:      make(map[*feedWatcher]struct{}),
		root:          root,
		stop:          stop,
	}
}

// WatchNotifications starts polling a session's notifications. The first
// result is fetched immediately. The channel closes once the watcher stops,
// and the returned stop function is idempotent.
func (s *FeedService) WatchNotifications(sessionID string) (<-chan NotificationFeed, func()) {
	updates := make(chan NotificationFeed, 1)
	stream := s.launch("session:"+sessionID, s.cfg.NotificationInterval, func(ctx context.Context) bool {
		items, err := s.notifications.Notifications(ctx, sessionID)
		if err != nil {
			s.logger.Debug("notification poll failed", zap.Error(err))
			return true
		}
		push(updates, NotificationFeed{
			Items:       items,
			UnreadCount: models.UnreadCount(items),
			PolledAt:    time.Now().UTC(),
		})
		return true
	}, func() { close(updates) })
	return updates, stream
}

// WatchComments starts polling one lesson's discussion thread. The channel
// closes once the watcher stops.
func (s *FeedService) WatchComments(lessonID string) (<-chan CommentFeed, func()) {
	updates := make(chan CommentFeed, 1)
	stream := s.launch("lesson:"+lessonID, s.cfg.CommentInterval, func(ctx context.Context) bool {
		items, err := s.comments.Comments(ctx, lessonID)
		if err != nil {
			s.logger.Debug("comment poll failed", zap.Error(err))
			return true
		}
		push(updates, CommentFeed{Items: items, PolledAt: time.Now().UTC()})
		return true
	}, func() { close(updates) })
	return updates, stream
}

// StopSession cancels every watcher registered for a session, called on
// logout and session invalidation.
func (s *FeedService) StopSession(sessionID string) {
	s.stopByKey("session:" + sessionID)
}

// StopLesson cancels the watchers of one lesson thread.
func (s *FeedService) StopLesson(lessonID string) {
	s.stopByKey("lesson:" + lessonID)
}

// Shutdown cancels every watcher and waits for them to exit.
func (s *FeedService) Shutdown() {
	s.stop()
	s.mu.Lock()
	remaining := make([]*feedWatcher, 0, len(s.watchers))
	for w := range s.watchers {
		remaining = append(remaining, w)
	}
	s.mu.Unlock()
	for _, w := range remaining {
		<-w.done
	}
}

// ActiveWatchers reports how many pollers are currently live.
func (s *FeedService) ActiveWatchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

// launch registers a watcher and runs its poll loop until stopped, idle
// timed out, or the service shuts down. poll returns false to stop early.
// onExit runs exactly once when the loop ends, whichever way it ends; the
// watch methods use it to close their update channel so a consumer draining
// the channel observes the stop.
func (s *FeedService) launch(key string, interval time.Duration, poll func(ctx context.Context) bool, onExit func()) func() {
	ctx, cancel := context.WithCancel(s.root)
	w := &feedWatcher{key: key, cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.watchers[w] = struct{}{}
	s.mu.Unlock()
	s.metrics.FeedWatcherStarted()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.watchers, w)
			s.mu.Unlock()
			s.metrics.FeedWatcherStopped()
			onExit()
			close(w.done)
		}()

		idle := time.NewTimer(s.cfg.IdleTimeout)
		defer idle.Stop()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		if !poll(ctx) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-idle.C:
				s.logger.Debug("feed watcher idle timeout", zap.String("key", key))
				return
			case <-ticker.C:
				if !poll(ctx) {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(cancel)
	}
}

func (s *FeedService) stopByKey(key string) {
	s.mu.Lock()
	var matched []*feedWatcher
	for w := range s.watchers {
		if w.key == key {
			matched = append(matched, w)
		}
	}
	s.mu.Unlock()
	for _, w := range matched {
		w.cancel()
		<-w.done
	}
}

// push delivers the latest result, replacing a stale one the consumer has
// not read yet.
func push[T any](ch chan T, value T) {
	for {
		select {
		case ch <- value:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
