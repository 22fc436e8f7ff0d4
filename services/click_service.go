package services

import (
	"sort"
	"time"

	"linklytics/models"

	"github.com/mileusna/useragent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const trackingQueueSize = 1024

// directReferrer is recorded when the request carried no Referer header.
const directReferrer = "Direct"

// unknownLabel stands in for any client attribute the user agent string did
// not reveal.
const unknownLabel = "Unknown"

// Click carries the raw request attributes captured on the redirect path.
// Parsing and persistence happen later, off the critical path.
type Click struct {
	LinkID    uint
	UserAgent string
	Referrer  string
	IPAddress string
	Timestamp time.Time
}

// ClickService records click events behind a buffered queue and folds them
// into per-link analytics summaries.
//
// The queue decouples tracking from the redirect response: Track never
// blocks, and every failure past that point is logged and swallowed because
// the redirect has already been committed to the client.
type ClickService struct {
	db    *gorm.DB
	log   *zap.Logger
	queue chan Click
	done  chan struct{}
}

func NewClickService(db *gorm.DB, log *zap.Logger) *ClickService {
	s := &ClickService{
		db:    db,
		log:   log,
		queue: make(chan Click, trackingQueueSize),
		done:  make(chan struct{}),
	}
	go s.worker()
	return s
}

// Track enqueues a click for background recording. When the queue is full
// the click is dropped; analytics are best effort and the redirect path must
// never wait.
func (s *ClickService) Track(click Click) {
	if click.Timestamp.IsZero() {
		click.Timestamp = time.Now().UTC()
	}
	select {
	case s.queue <- click:
	default:
		s.log.Error("tracking queue full, dropping click", zap.Uint("link_id", click.LinkID))
	}
}

// Stop closes the queue and waits for the worker to drain it.
func (s *ClickService) Stop() {
	close(s.queue)
	<-s.done
}

func (s *ClickService) worker() {
	defer close(s.done)
	for click := range s.queue {
		s.record(click)
	}
}

// record performs the two best-effort writes: the atomic counter increment
// and the event insert. They are independent; no ordering or atomicity is
// guaranteed between them, and a reader of analytics data must tolerate the
// counter and the event total disagreeing.
func (s *ClickService) record(click Click) {
	err := s.db.Model(&models.Link{}).
		Where("id = ?", click.LinkID).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
	if err != nil {
		s.log.Error("failed to increment click count",
			zap.Uint("link_id", click.LinkID),
			zap.Error(err))
	}

	event := parseClick(click)
	if err := s.db.Create(event).Error; err != nil {
		s.log.Error("failed to record click event",
			zap.Uint("link_id", click.LinkID),
			zap.Error(err))
	}
}

func parseClick(click Click) *models.ClickEvent {
	ua := useragent.Parse(click.UserAgent)

	device := unknownLabel
	switch {
	case ua.Mobile:
		device = "Mobile"
	case ua.Tablet:
		device = "Tablet"
	case ua.Desktop:
		device = "Desktop"
	case ua.Bot:
		device = "Bot"
	}

	browser := ua.Name
	if browser == "" {
		browser = unknownLabel
	}
	os := ua.OS
	if os == "" {
		os = unknownLabel
	}
	referrer := click.Referrer
	if referrer == "" {
		referrer = directReferrer
	}

	return &models.ClickEvent{
		LinkID:    click.LinkID,
		Timestamp: click.Timestamp,
		Device:    device,
		Browser:   browser,
		OS:        os,
		Referrer:  referrer,
		IPAddress: click.IPAddress,
	}
}

type DailyClicks struct {
	Date   string `json:"date"`
	Clicks int    `json:"clicks"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// AnalyticsSummary is the chart-ready aggregation for one link. TotalClicks
// comes from the link's counter, not from counting events, so the two can
// legitimately diverge after a partial tracking failure.
type AnalyticsSummary struct {
	TotalClicks int             `json:"total_clicks"`
	ClicksData  []DailyClicks   `json:"clicks_data"`
	DeviceData  []CategoryCount `json:"device_data"`
	BrowserData []CategoryCount `json:"browser_data"`
}

// Analytics folds the link's click events into a daily series and
// categorical breakdowns. Recomputed in full on every call; days without
// events produce no entry.
func (s *ClickService) Analytics(link *models.Link) (*AnalyticsSummary, error) {
	var events []models.ClickEvent
	if err := s.db.Where("link_id = ?", link.ID).Find(&events).Error; err != nil {
		return nil, err
	}

	clicksByDay := make(map[string]int)
	devices := make(map[string]int)
	browsers := make(map[string]int)

	for _, event := range events {
		day := event.Timestamp.UTC().Format("2006-01-02")
		clicksByDay[day]++
		devices[categoryLabel(event.Device)]++
		browsers[categoryLabel(event.Browser)]++
	}

	summary := &AnalyticsSummary{
		TotalClicks: link.ClickCount,
		ClicksData:  make([]DailyClicks, 0, len(clicksByDay)),
		DeviceData:  make([]CategoryCount, 0, len(devices)),
		BrowserData: make([]CategoryCount, 0, len(browsers)),
	}

	for day, clicks := range clicksByDay {
		summary.ClicksData = append(summary.ClicksData, DailyClicks{Date: day, Clicks: clicks})
	}
	sort.Slice(summary.ClicksData, func(i, j int) bool {
		return summary.ClicksData[i].Date < summary.ClicksData[j].Date
	})

	for name, value := range devices {
		summary.DeviceData = append(summary.DeviceData, CategoryCount{Name: name, Value: value})
	}
	for name, value := range browsers {
		summary.BrowserData = append(summary.BrowserData, CategoryCount{Name: name, Value: value})
	}
	return summary, nil
}

func categoryLabel(label string) string {
	if label == "" {
		return unknownLabel
	}
	return label
}
