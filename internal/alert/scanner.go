package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bvrtu/quakeconnect-data/internal/notify"
	"github.com/bvrtu/quakeconnect-data/internal/observability"
	"github.com/bvrtu/quakeconnect-data/internal/quake"
)

// --------------------------------------------------------------------------
// Collaborator interfaces — implemented by internal/quake, internal/store,
// internal/notify; faked in tests.
// --------------------------------------------------------------------------

// FeedSource pulls recent earthquakes.
type FeedSource interface {
	Fetch(ctx context.Context, limit int) ([]quake.Event, error)
}

// UserStore reads subscriber and preference state.
type UserStore interface {
	ListSubscribedUsers(ctx context.Context) ([]Subscriber, error)
	// GetPreferences returns stored settings, or DefaultPreferences when no
	// settings record exists.
	GetPreferences(ctx context.Context, userID string) (UserPreferences, error)
}

// SentStore owns the dedup records.
type SentStore interface {
	AlreadySent(ctx context.Context, userID, earthquakeID string) (bool, error)
	RecordSent(ctx context.Context, rec SentRecord) error
}

// Gateway delivers a titled message with a payload map to a user's device.
type Gateway interface {
	Send(ctx context.Context, userID, title, body string, data map[string]string) error
}

// Auditor receives accepted decisions for downstream analytics. May be nil.
type Auditor interface {
	AlertSent(ctx context.Context, userID string, eq quake.Event)
}

// --------------------------------------------------------------------------
// Scanner
// --------------------------------------------------------------------------

// Scanner polls the earthquake feed and fans out notification decisions.
// Each Scan call is one self-contained invocation; the outer scheduler
// retries on its next tick, so no retry happens inside a run.
type Scanner struct {
	source  FeedSource
	users   UserStore
	sent    SentStore
	gateway Gateway
	audit   Auditor

	feedLimit int
	lookback  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// ScannerOptions configures optional Scanner collaborators.
type ScannerOptions struct {
	FeedLimit int           // defaults to 10
	Lookback  time.Duration // defaults to 5 minutes
	Clock     clockwork.Clock
	Audit     Auditor
	Metrics   *observability.Metrics
}

// NewScanner wires a Scanner from its collaborators.
func NewScanner(source FeedSource, users UserStore, sent SentStore, gateway Gateway, logger *slog.Logger, opts ScannerOptions) *Scanner {
	if opts.FeedLimit <= 0 {
		opts.FeedLimit = 10
	}
	if opts.Lookback <= 0 {
		opts.Lookback = 5 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Scanner{
		source:    source,
		users:     users,
		sent:      sent,
		gateway:   gateway,
		audit:     opts.Audit,
		feedLimit: opts.FeedLimit,
		lookback:  opts.Lookback,
		clock:     opts.Clock,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// Scan runs one poll of the feed against all subscribed users. A feed fetch
// failure ends the run with a neutral summary; a failure in one user's
// pipeline never aborts the others.
func (s *Scanner) Scan(ctx context.Context) Summary {
	start := s.clock.Now()
	var sum Summary
	defer func() { sum.Duration = s.clock.Since(start) }()

	events, err := s.source.Fetch(ctx, s.feedLimit)
	if err != nil {
		s.logger.Error("earthquake feed fetch failed", "error", err)
		if s.metrics != nil {
			s.metrics.FeedErrors.Inc()
		}
		sum.AddErrorf("fetch feed: %v", err)
		return sum
	}
	sum.EventsFetched = len(events)

	// Only events newly visible since the previous poll are considered.
	cutoff := start.Add(-s.lookback)
	fresh := events[:0:0]
	for _, eq := range events {
		if eq.OccurredAt.Before(cutoff) {
			continue
		}
		fresh = append(fresh, eq)
	}
	sum.EventsInWindow = len(fresh)
	if len(fresh) == 0 {
		return sum
	}

	subscribers, err := s.users.ListSubscribedUsers(ctx)
	if err != nil {
		s.logger.Error("list subscribed users failed", "error", err)
		sum.AddErrorf("list users: %v", err)
		return sum
	}

	for _, sub := range subscribers {
		sum.UsersChecked++

		prefs, err := s.users.GetPreferences(ctx, sub.ID)
		if err != nil {
			s.logger.Warn("load preferences failed", "user_id", sub.ID, "error", err)
			sum.AddErrorf("user %s: preferences: %v", sub.ID, err)
			continue
		}
		prefs.HomeLocation = sub.Home

		for _, eq := range fresh {
			notified, err := s.processPair(ctx, sub.ID, prefs, eq)
			if err != nil {
				s.logger.Warn("alert pipeline failed",
					"user_id", sub.ID, "earthquake_id", eq.ID, "error", err)
				sum.AddErrorf("user %s earthquake %s: %v", sub.ID, eq.ID, err)
				continue
			}
			if notified {
				sum.Notified++
			}
		}
	}

	if s.metrics != nil {
		s.metrics.ScanRuns.Inc()
		s.metrics.AlertsSent.Add(float64(sum.Notified))
	}
	s.logger.Info("earthquake scan complete", "summary", sum.String())
	return sum
}

// processPair runs the full decision pipeline for one (user, earthquake)
// pair. Returns true when a notification went out and was recorded.
func (s *Scanner) processPair(ctx context.Context, userID string, prefs UserPreferences, eq quake.Event) (bool, error) {
	decision := Decide(eq, prefs, false)
	if !decision.Notify {
		return false, nil
	}

	sent, err := s.sent.AlreadySent(ctx, userID, eq.ID)
	if err != nil {
		return false, err
	}
	if sent {
		return false, nil
	}

	title, body := BuildMessage(eq, prefs.HomeLocation)
	data := map[string]string{
		"channel":      notify.ChannelEarthquake,
		"channelName":  "Earthquake Alerts",
		"payload":      "eq:" + eq.ID,
		"earthquakeId": eq.ID,
	}

	// Delivery failure leaves no sent record so a later poll inside the
	// lookback window can retry the pair.
	if err := s.gateway.Send(ctx, userID, title, body, data); err != nil {
		if s.metrics != nil {
			s.metrics.AlertSendErrors.Inc()
		}
		return false, err
	}

	rec := SentRecord{
		UserID:       userID,
		EarthquakeID: eq.ID,
		Magnitude:    eq.Magnitude,
		Location:     eq.Location,
		SentAt:       s.clock.Now(),
	}
	if err := s.sent.RecordSent(ctx, rec); err != nil {
		// The notification is already out; surface the write failure but
		// count the pair as notified.
		s.logger.Error("record sent notification failed",
			"user_id", userID, "earthquake_id", eq.ID, "error", err)
	}

	if s.audit != nil {
		s.audit.AlertSent(ctx, userID, eq)
	}
	s.logger.Info("earthquake alert sent",
		"user_id", userID, "earthquake_id", eq.ID,
		"magnitude", eq.Magnitude, "reason", decision.Reason)
	return true, nil
}
