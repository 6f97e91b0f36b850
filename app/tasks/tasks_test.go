package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/menhub-monitor/app/database"
	"github.com/lysyi3m/menhub-monitor/app/feed"
)

type fakeFeedRepo struct {
	mu        sync.Mutex
	upserts   map[string]string
	successes map[string]int
	failures  map[string]string
	due       []string
	scheduled []string
}

func newFakeFeedRepo() *fakeFeedRepo {
	return &fakeFeedRepo{
		upserts:   make(map[string]string),
		successes: make(map[string]int),
		failures:  make(map[string]string),
	}
}

func (r *fakeFeedRepo) GetFeed(string) (*database.Feed, error) { return nil, nil }
func (r *fakeFeedRepo) GetFeeds() ([]database.Feed, error)     { return nil, nil }
func (r *fakeFeedRepo) GetFeedCount() (int, error)             { return len(r.upserts), nil }
func (r *fakeFeedRepo) DeleteFeed(string) error                { return nil }

func (r *fakeFeedRepo) GetFeedsDue(time.Time) ([]string, error) { return r.due, nil }

func (r *fakeFeedRepo) UpsertFeed(name, url, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts[name] = url
	return nil
}

func (r *fakeFeedRepo) RecordFetchSuccess(name, _ string, count int, _, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes[name] = count
	return nil
}

func (r *fakeFeedRepo) RecordFetchFailure(name, fetchErr string, _, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[name] = fetchErr
	return nil
}

func (r *fakeFeedRepo) ScheduleNow(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, name)
	return nil
}

const testRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>ANTARA Ekonomi</title>
    <item>
      <title>Menhub resmikan terminal baru di Makassar</title>
      <link>https://example.id/1</link>
      <description>Peresmian terminal oleh Menteri Perhubungan.</description>
      <pubDate>Mon, 10 Mar 2025 08:00:00 +0700</pubDate>
    </item>
    <item>
      <title>Iklan: promo tiket</title>
      <link>https://example.id/2</link>
      <description>Promo.</description>
    </item>
    <item>
      <title>Kemenhub siapkan mudik</title>
      <link>https://example.id/3</link>
      <description>Persiapan arus mudik.</description>
    </item>
  </channel>
</rss>`

func newTestDeps(t *testing.T, handler http.Handler) (Deps, *fakeFeedRepo, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	repo := newFakeFeedRepo()
	return Deps{
		ConfigCache:      feed.NewConfigCache(t.TempDir()),
		FeedRepo:         repo,
		Snapshot:         feed.NewSnapshot(),
		HTTPClient:       server.Client(),
		Parser:           feed.NewParser(),
		Filterer:         feed.NewFilterer(),
		ContentExtractor: feed.NewContentExtractor(),
		UserAgent:        "Menhub Monitor/test",
	}, repo, server
}

func testConfig(url string) *feed.Config {
	return &feed.Config{
		Name:   "antara",
		URL:    url,
		Source: "ANTARA",
		Settings: feed.ConfigSettings{
			Enabled:         true,
			RefreshInterval: 900,
			MaxItems:        10,
			Timeout:         5,
		},
		Filters: []feed.ConfigFilter{{Field: "title", Excludes: []string{"iklan"}}},
	}
}

func TestProcessFeedTaskPublishesItems(t *testing.T) {
	var userAgent string
	deps, repo, server := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Write([]byte(testRSS))
	}))

	task := NewProcessFeedTask("antara", testConfig(server.URL), deps)
	task.Start()
	require.NoError(t, task.Execute(context.Background()))

	assert.Equal(t, "Menhub Monitor/test", userAgent)
	assert.Equal(t, 2, repo.successes["antara"])

	batches, version := deps.Snapshot.Batches()
	assert.Equal(t, uint64(1), version)
	require.Len(t, batches, 1)
	assert.Equal(t, "ANTARA", batches[0].Name)
	assert.NoError(t, batches[0].Err)
	require.Len(t, batches[0].Items, 2)
	assert.Equal(t, "Menhub resmikan terminal baru di Makassar", batches[0].Items[0].Title)
	assert.Equal(t, "ANTARA", batches[0].Items[0].Source)
	assert.Equal(t, []string{"2025-03-10T01:00:00Z"}, batches[0].Items[0].DateFields)
}

func TestProcessFeedTaskMaxItems(t *testing.T) {
	deps, _, server := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testRSS))
	}))

	config := testConfig(server.URL)
	config.Settings.MaxItems = 1

	require.NoError(t, NewProcessFeedTask("antara", config, deps).Execute(context.Background()))

	batches, _ := deps.Snapshot.Batches()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0].Items, 1)
}

func TestProcessFeedTaskFailure(t *testing.T) {
	deps, repo, server := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))

	err := NewProcessFeedTask("antara", testConfig(server.URL), deps).Execute(context.Background())
	require.Error(t, err)

	assert.Contains(t, repo.failures["antara"], "503")

	batches, _ := deps.Snapshot.Batches()
	require.Len(t, batches, 1)
	assert.Error(t, batches[0].Err)
	assert.Empty(t, batches[0].Items)
}

func TestProcessFeedTaskExtractsThinBodies(t *testing.T) {
	article := `<html><head><title>Peresmian</title></head><body><article>
<p>Menteri Perhubungan Dudy Purwagandhi meresmikan terminal penumpang baru di Makassar pada Senin pagi. Terminal ini dirancang untuk melayani lonjakan penumpang selama musim mudik tahun ini.</p>
<p>"Ini adalah bukti komitmen kami untuk menghadirkan layanan transportasi yang aman dan nyaman," kata Menhub dalam sambutannya di hadapan para undangan dan warga sekitar.</p>
<p>Pembangunan terminal berlangsung selama dua tahun dan melibatkan ratusan pekerja lokal. Fasilitas baru mencakup ruang tunggu, area parkir, dan jalur khusus penyandang disabilitas.</p>
</article></body></html>`

	mux := http.NewServeMux()
	deps, _, server := newTestDeps(t, mux)

	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>T</title><item>
<title>Menhub resmikan terminal</title><link>` + "http://" + r.Host + `/berita/1</link><description>Singkat.</description>
</item></channel></rss>`))
	})
	mux.HandleFunc("/berita/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(article))
	})

	config := testConfig(server.URL + "/rss")
	config.Settings.ExtractContent = true

	require.NoError(t, NewProcessFeedTask("antara", config, deps).Execute(context.Background()))

	batches, _ := deps.Snapshot.Batches()
	require.Len(t, batches[0].Items, 1)
	assert.Contains(t, batches[0].Items[0].BodyFields[0], "bukti komitmen kami")
}

func TestProcessFeedTaskDisabled(t *testing.T) {
	deps, repo, server := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Disabled feed should not be fetched")
	}))

	config := testConfig(server.URL)
	config.Settings.Enabled = false

	require.NoError(t, NewProcessFeedTask("antara", config, deps).Execute(context.Background()))
	assert.Empty(t, repo.successes)
	assert.Equal(t, uint64(0), deps.Snapshot.Version())
}

func TestSyncFeedConfigTask(t *testing.T) {
	repo := newFakeFeedRepo()

	task := NewSyncFeedConfigTask("antara", testConfig("https://a.id/rss"), repo)
	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, "https://a.id/rss", repo.upserts["antara"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, task.Execute(ctx), context.Canceled)
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		retry    int
		expected time.Duration
	}{
		{retry: 0, expected: time.Second},
		{retry: 1, expected: time.Second},
		{retry: 2, expected: 2 * time.Second},
		{retry: 3, expected: 4 * time.Second},
		{retry: 5, expected: 16 * time.Second},
		{retry: 6, expected: 30 * time.Second},
		{retry: 40, expected: 30 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, retryDelay(tt.retry), "retry %d", tt.retry)
	}
}

func TestTaskRetryBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeProcessFeed, "antara")

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, time.Duration(0), task.GetDuration())

	for i := 0; i < DefaultMaxRetries; i++ {
		assert.True(t, task.CanRetry())
		task.IncrementRetryCount()
	}
	assert.False(t, task.CanRetry())
}

func TestSchedulerQueueFull(t *testing.T) {
	deps, _, _ := newTestDeps(t, http.NotFoundHandler())
	s := NewScheduler(deps, time.Minute, 1)
	s.taskQueue = make(chan TaskInterface, 1)

	task := NewSyncFeedConfigTask("antara", testConfig("https://a.id/rss"), deps.FeedRepo)
	require.NoError(t, s.EnqueueTask(task))
	assert.Error(t, s.EnqueueTask(task))

	s.cancel()
	assert.ErrorIs(t, s.EnqueueTask(task), context.Canceled)
}

func TestSchedulerRefreshFeed(t *testing.T) {
	deps, repo, _ := newTestDeps(t, http.NotFoundHandler())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "antara.yml"), []byte("url: \"https://a.id/rss\"\nsettings:\n  enabled: true\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "detik.yml"), []byte("url: \"https://d.id/rss\"\nsettings:\n  enabled: false\n"), 0644))
	deps.ConfigCache = feed.NewConfigCache(dir)
	require.NoError(t, deps.ConfigCache.Run())

	s := NewScheduler(deps, time.Minute, 1)

	require.NoError(t, s.RefreshFeed("antara"))
	assert.Equal(t, []string{"antara"}, repo.scheduled)
	assert.Len(t, s.taskQueue, 1)

	assert.Error(t, s.RefreshFeed("detik"))
	assert.Error(t, s.RefreshFeed("kompas"))
}

func TestSchedulerEnqueueDueFeeds(t *testing.T) {
	deps, repo, _ := newTestDeps(t, http.NotFoundHandler())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "antara.yml"), []byte("url: \"https://a.id/rss\"\nsettings:\n  enabled: true\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "detik.yml"), []byte("url: \"https://d.id/rss\"\nsettings:\n  enabled: false\n"), 0644))
	deps.ConfigCache = feed.NewConfigCache(dir)
	require.NoError(t, deps.ConfigCache.Run())

	repo.due = []string{"antara", "detik", "removed"}

	s := NewScheduler(deps, time.Minute, 1)
	s.enqueueTasks()

	require.Len(t, s.taskQueue, 1)
	task := <-s.taskQueue
	assert.Equal(t, "antara", task.GetFeedName())
	assert.Equal(t, TaskTypeProcessFeed, task.GetType())
}
