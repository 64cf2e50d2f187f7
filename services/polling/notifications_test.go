package polling

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"thuere/models"
)

// scriptedNotifications feeds a fixed sequence of notification pages,
// holding the last one once exhausted.
type scriptedNotifications struct {
	mu     sync.Mutex
	pages  []*models.NotificationList
	calls  int
	polled chan struct{}
}

func newScriptedNotifications(pages ...*models.NotificationList) *scriptedNotifications {
	return &scriptedNotifications{pages: pages, polled: make(chan struct{}, 64)}
}

func (s *scriptedNotifications) fetch(ctx context.Context) (*models.NotificationList, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.mu.Unlock()

	defer func() {
		select {
		case s.polled <- struct{}{}:
		default:
		}
	}()

	if i >= len(s.pages) {
		i = len(s.pages) - 1
	}
	return s.pages[i], nil
}

type recordingSink struct {
	mu       sync.Mutex
	received []models.Notification
}

func (r *recordingSink) NotifyNew(n models.Notification) error {
	r.mu.Lock()
	r.received = append(r.received, n)
	r.mu.Unlock()
	return nil
}

func (r *recordingSink) snapshot() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.received...)
}

func unread(id int, title string) models.Notification {
	return models.Notification{NotificationID: id, Title: title, Message: title, IsRead: "N"}
}

func TestNotificationPollerAnnouncesNewUnread(t *testing.T) {
	existing := unread(1, "old booking reminder")
	fresh := unread(2, "payment received")

	source := newScriptedNotifications(
		&models.NotificationList{Data: []models.Notification{existing}, UnreadCount: 1},
		&models.NotificationList{Data: []models.Notification{fresh, existing}, UnreadCount: 2},
	)
	sink := &recordingSink{}

	poller := NewNotificationPoller(source.fetch, sink, NotificationPollerConfig{
		Interval: 10 * time.Millisecond,
		Logger:   zap.NewNop(),
	})
	poller.Start(context.Background())
	defer poller.Stop()

	waitFor(t, 2*time.Second, func() bool { return len(sink.snapshot()) >= 1 })

	got := sink.snapshot()
	if len(got) != 1 {
		t.Fatalf("sink received %d notifications, want 1", len(got))
	}
	if got[0].NotificationID != 2 {
		t.Errorf("announced id = %d, want the new notification 2", got[0].NotificationID)
	}
}

func TestNotificationPollerPrimingSuppressesBacklog(t *testing.T) {
	backlog := &models.NotificationList{
		Data:        []models.Notification{unread(1, "a"), unread(2, "b")},
		UnreadCount: 2,
	}
	source := newScriptedNotifications(backlog)
	sink := &recordingSink{}

	poller := NewNotificationPoller(source.fetch, sink, NotificationPollerConfig{
		Interval: 10 * time.Millisecond,
		Logger:   zap.NewNop(),
	})
	poller.Start(context.Background())
	defer poller.Stop()

	// Let several polls pass; the pre-existing backlog must stay silent.
	for i := 0; i < 4; i++ {
		<-source.polled
	}
	if got := sink.snapshot(); len(got) != 0 {
		t.Errorf("backlog was announced: %v", got)
	}
}

func TestNotificationPollerDeduplicatesById(t *testing.T) {
	fresh := unread(5, "court freed up")
	source := newScriptedNotifications(
		&models.NotificationList{UnreadCount: 0},
		// The same new notification keeps appearing with a growing counter.
		&models.NotificationList{Data: []models.Notification{fresh}, UnreadCount: 1},
		&models.NotificationList{Data: []models.Notification{fresh}, UnreadCount: 2},
		&models.NotificationList{Data: []models.Notification{fresh}, UnreadCount: 3},
	)
	sink := &recordingSink{}

	poller := NewNotificationPoller(source.fetch, sink, NotificationPollerConfig{
		Interval: 10 * time.Millisecond,
		Logger:   zap.NewNop(),
	})
	poller.Start(context.Background())
	defer poller.Stop()

	for i := 0; i < 5; i++ {
		<-source.polled
	}
	if got := sink.snapshot(); len(got) != 1 {
		t.Errorf("sink received %d announcements for one notification, want 1", len(got))
	}
}

func TestNotificationPollerIgnoresReadEntries(t *testing.T) {
	read := models.Notification{NotificationID: 7, Title: "seen", IsRead: "Y"}
	source := newScriptedNotifications(
		&models.NotificationList{UnreadCount: 0},
		&models.NotificationList{Data: []models.Notification{read}, UnreadCount: 1},
	)
	sink := &recordingSink{}

	poller := NewNotificationPoller(source.fetch, sink, NotificationPollerConfig{
		Interval: 10 * time.Millisecond,
		Logger:   zap.NewNop(),
	})
	poller.Start(context.Background())
	defer poller.Stop()

	for i := 0; i < 3; i++ {
		<-source.polled
	}
	if got := sink.snapshot(); len(got) != 0 {
		t.Errorf("read entries were announced: %v", got)
	}
}

func TestNotificationPollerUnchangedCountStaysSilent(t *testing.T) {
	page := &models.NotificationList{
		Data:        []models.Notification{unread(9, "steady")},
		UnreadCount: 1,
	}
	source := newScriptedNotifications(page, page, page)
	sink := &recordingSink{}

	poller := NewNotificationPoller(source.fetch, sink, NotificationPollerConfig{
		Interval: 10 * time.Millisecond,
		Logger:   zap.NewNop(),
	})
	poller.Start(context.Background())
	defer poller.Stop()

	for i := 0; i < 4; i++ {
		<-source.polled
	}
	if got := sink.snapshot(); len(got) != 0 {
		t.Errorf("an unchanged unread count was announced: %v", got)
	}
}
