package services

import (
	"testing"
	"time"

	"linklytics/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const chromeOnWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestTrackRecordsCounterAndEvent(t *testing.T) {
	db := testDB(t)
	links := NewLinkService(db, zap.NewNop())
	clicks := NewClickService(db, zap.NewNop())

	link, err := links.Create(1, "https://example.com", "", nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		clicks.Track(Click{
			LinkID:    link.ID,
			UserAgent: chromeOnWindows,
			Referrer:  "https://news.ycombinator.com/",
			IPAddress: "203.0.113.7",
		})
	}
	clicks.Stop()

	var updated models.Link
	require.NoError(t, db.First(&updated, link.ID).Error)
	require.Equal(t, 3, updated.ClickCount)

	var events []models.ClickEvent
	require.NoError(t, db.Where("link_id = ?", link.ID).Find(&events).Error)
	require.Len(t, events, 3)
	require.Equal(t, "Desktop", events[0].Device)
	require.Equal(t, "Chrome", events[0].Browser)
	require.Equal(t, "Windows", events[0].OS)
	require.Equal(t, "https://news.ycombinator.com/", events[0].Referrer)
	require.Equal(t, "203.0.113.7", events[0].IPAddress)
}

func TestParseClickSubstitutesSentinels(t *testing.T) {
	event := parseClick(Click{
		LinkID:    1,
		UserAgent: "",
		Referrer:  "",
		Timestamp: time.Now(),
	})

	require.Equal(t, "Unknown", event.Device)
	require.Equal(t, "Unknown", event.Browser)
	require.Equal(t, "Unknown", event.OS)
	require.Equal(t, "Direct", event.Referrer)
}

func TestAnalyticsDailySeriesSortedAscending(t *testing.T) {
	db := testDB(t)
	links := NewLinkService(db, zap.NewNop())
	clicks := NewClickService(db, zap.NewNop())
	defer clicks.Stop()

	link, err := links.Create(1, "https://example.com", "", nil)
	require.NoError(t, err)

	day := func(s string) time.Time {
		ts, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return ts
	}

	// Inserted out of order, with a gap between the days.
	for _, ts := range []time.Time{day("2026-03-05"), day("2026-03-01"), day("2026-03-05"), day("2026-03-03")} {
		require.NoError(t, db.Create(&models.ClickEvent{
			LinkID:    link.ID,
			Timestamp: ts,
			Device:    "Mobile",
			Browser:   "Safari",
			OS:        "iOS",
			Referrer:  "Direct",
		}).Error)
	}

	summary, err := clicks.Analytics(link)
	require.NoError(t, err)

	require.Equal(t, []DailyClicks{
		{Date: "2026-03-01", Clicks: 1},
		{Date: "2026-03-03", Clicks: 1},
		{Date: "2026-03-05", Clicks: 2},
	}, summary.ClicksData)
}

func TestAnalyticsBreakdownsAndCounterDivergence(t *testing.T) {
	db := testDB(t)
	links := NewLinkService(db, zap.NewNop())
	clicks := NewClickService(db, zap.NewNop())
	defer clicks.Stop()

	link, err := links.Create(1, "https://example.com", "", nil)
	require.NoError(t, err)

	now := time.Now()
	for _, e := range []models.ClickEvent{
		{LinkID: link.ID, Timestamp: now, Device: "Desktop", Browser: "Chrome"},
		{LinkID: link.ID, Timestamp: now, Device: "Desktop", Browser: "Firefox"},
		{LinkID: link.ID, Timestamp: now, Device: "Mobile", Browser: "Chrome"},
		{LinkID: link.ID, Timestamp: now, Device: "", Browser: ""},
	} {
		require.NoError(t, db.Create(&e).Error)
	}

	// The counter legitimately disagrees with the event total after a
	// partial tracking failure; total_clicks must come from the counter.
	require.NoError(t, db.Model(link).Update("click_count", 5).Error)
	link.ClickCount = 5

	summary, err := clicks.Analytics(link)
	require.NoError(t, err)
	require.Equal(t, 5, summary.TotalClicks)

	devices := map[string]int{}
	for _, d := range summary.DeviceData {
		devices[d.Name] = d.Value
	}
	require.Equal(t, map[string]int{"Desktop": 2, "Mobile": 1, "Unknown": 1}, devices)

	browsers := map[string]int{}
	for _, b := range summary.BrowserData {
		browsers[b.Name] = b.Value
	}
	require.Equal(t, map[string]int{"Chrome": 2, "Firefox": 1, "Unknown": 1}, browsers)
}

func TestAnalyticsEmptyLink(t *testing.T) {
	db := testDB(t)
	links := NewLinkService(db, zap.NewNop())
	clicks := NewClickService(db, zap.NewNop())
	defer clicks.Stop()

	link, err := links.Create(1, "https://example.com", "", nil)
	require.NoError(t, err)

	summary, err := clicks.Analytics(link)
	require.NoError(t, err)
	require.Zero(t, summary.TotalClicks)
	require.Empty(t, summary.ClicksData)
	require.Empty(t, summary.DeviceData)
	require.Empty(t, summary.BrowserData)
}
