package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tooldesk/tooldesk/backend/models"
	"github.com/tooldesk/tooldesk/backend/services"
)

func TestAnalyticsEventsFillFromRequest(t *testing.T) {
	// httptest requests come from 192.0.2.1
	env := newTestEnv(t, withConfig(map[string]string{"TRUSTED_PROXIES": "192.0.2.0/24"}))
	env.createApp(t, map[string]any{"name": "Budget Tool", "url": "https://b.example", "category": "Finance"})

	req := httptest.NewRequest(http.MethodPost, "/api/analytics", strings.NewReader(`{"appId":1,"viewType":"launch"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent/1.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set(sessionIDHeader, "session-a")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	event := decode[models.AnalyticsEvent](t, rec)
	assert.Equal(t, "Budget Tool", event.AppName)
	assert.Equal(t, "Finance", event.AppCategory)
	require.NotNil(t, event.IPAddress)
	assert.Equal(t, "203.0.113.7", *event.IPAddress)
	require.NotNil(t, event.UserAgent)
	assert.Equal(t, "test-agent/1.0", *event.UserAgent)
	require.NotNil(t, event.SessionID)
	assert.Equal(t, "session-a", *event.SessionID)

	rec = env.do(t, http.MethodPost, "/api/analytics", map[string]any{"appName": "Wiki", "appCategory": "Docs", "viewType": "card_view", "ipAddress": "198.51.100.1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "198.51.100.1", *decode[models.AnalyticsEvent](t, rec).IPAddress)

	rec = env.do(t, http.MethodPost, "/api/analytics", map[string]any{"appId": 99, "viewType": "launch"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/analytics/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[models.AnalyticsSummary](t, rec)
	assert.Equal(t, 2, summary.TotalViews)
	assert.Equal(t, 1, summary.UniqueSessions)
	assert.Equal(t, 1, summary.ViewsByType[models.ViewTypeLaunch])
	assert.Equal(t, 0, summary.ViewsByType[models.ViewTypeDetail])
	require.Len(t, summary.RecentEvents, 2)
	assert.Equal(t, "Wiki", summary.RecentEvents[0].AppName)

	rec = env.do(t, http.MethodGet, "/api/analytics/summary?days=7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[models.AnalyticsSummary](t, rec).TotalViews)

	rec = env.do(t, http.MethodGet, "/api/analytics/summary?days=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsRateLimit(t *testing.T) {
	env := newTestEnv(t, withConfig(map[string]string{"ANALYTICS_RATE_PER_MINUTE": "2"}))
	body := map[string]any{"appName": "Wiki", "appCategory": "Docs", "viewType": "card_view"}

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/api/analytics", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/analytics", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	// Reads are not limited
	rec = env.do(t, http.MethodGet, "/api/analytics/summary", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func postViewFrom(t *testing.T, env testEnv, remoteAddr, forwardedFor string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analytics", strings.NewReader(`{"appName":"Wiki","appCategory":"Docs","viewType":"card_view"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec.Code
}

func TestAnalyticsRateLimitIgnoresForwardedForFromClients(t *testing.T) {
	env := newTestEnv(t, withConfig(map[string]string{"ANALYTICS_RATE_PER_MINUTE": "2"}))

	var codes []int
	for i := 1; i <= 4; i++ {
		codes = append(codes, postViewFrom(t, env, "198.51.100.20:4000", fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	summary := env.db.AnalyticsRepo().Summary(time.Time{})
	require.Len(t, summary.RecentEvents, 2)
	assert.Equal(t, "198.51.100.20", *summary.RecentEvents[0].IPAddress)
}

func TestAnalyticsRateLimitBehindTrustedProxy(t *testing.T) {
	env := newTestEnv(t, withConfig(map[string]string{
		"ANALYTICS_RATE_PER_MINUTE": "2",
		"TRUSTED_PROXIES":           "10.1.0.0/16",
	}))

	// Each forwarded client gets its own bucket
	for i := 1; i <= 4; i++ {
		assert.Equal(t, http.StatusCreated, postViewFrom(t, env, "10.1.2.3:5000", fmt.Sprintf("203.0.113.%d", i)))
	}

	assert.Equal(t, http.StatusCreated, postViewFrom(t, env, "10.1.2.3:5000", "203.0.113.9"))
	assert.Equal(t, http.StatusCreated, postViewFrom(t, env, "10.1.2.3:5000", "203.0.113.9"))
	assert.Equal(t, http.StatusTooManyRequests, postViewFrom(t, env, "10.1.2.3:5000", "203.0.113.9"))
}

func TestExportImportOverHTTP(t *testing.T) {
	source := newTestEnv(t)
	rec := source.do(t, http.MethodPost, "/api/categories", map[string]any{"name": "Finance"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = source.do(t, http.MethodPost, "/api/subcategories", map[string]any{"name": "Planning", "categoryId": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	source.createApp(t, map[string]any{"name": "Budget Tool", "url": "https://b.example", "category": "Finance", "subcategory": "Planning"})

	rec = source.do(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"tooldesk-export-")
	envelope := decode[models.ExportEnvelope](t, rec)
	assert.Equal(t, models.ExportVersion, envelope.Version)
	require.Len(t, envelope.Apps, 1)

	target := newTestEnv(t)
	rec = target.do(t, http.MethodPost, "/api/import", rec.Body.String())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[models.ImportResult](t, rec)
	assert.Equal(t, models.ImportCounts{Categories: 1, Subcategories: 1, Apps: 1}, result.Imported)

	// Importing the same document again only skips
	rec = target.do(t, http.MethodPost, "/api/import", envelope)
	require.Equal(t, http.StatusOK, rec.Code)
	result = decode[models.ImportResult](t, rec)
	assert.Equal(t, models.ImportCounts{}, result.Imported)
	assert.Len(t, result.Skipped, 3)

	rec = target.do(t, http.MethodPost, "/api/import", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func uploadRequest(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	return uploadRequestAs(t, field, filename, "application/octet-stream", content)
}

func uploadRequestAs(t *testing.T, field, filename, declared, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	partHeader.Set("Content-Type", declared)
	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadAndServeFile(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "file", "notes.txt", "hello files"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	uploaded := decode[UploadResponse](t, rec)
	assert.Equal(t, "notes.txt", uploaded.OriginalName)
	assert.Equal(t, int64(len("hello files")), uploaded.Size)
	assert.True(t, strings.HasSuffix(uploaded.Filename, ".txt"))
	assert.Equal(t, "/api/files/"+uploaded.Filename, uploaded.URL)
	assert.True(t, strings.HasPrefix(uploaded.ContentType, "text/plain"))

	rec = env.do(t, http.MethodGet, uploaded.URL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello files", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))

	rec = env.do(t, http.MethodGet, "/api/files/missing.txt", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/files/.."+uploaded.Filename, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "attachment", "notes.txt", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadedFilesAreServedBySniffedType(t *testing.T) {
	env := newTestEnv(t)

	upload := func(filename, declared, content string) UploadResponse {
		t.Helper()
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, uploadRequestAs(t, "file", filename, declared, content))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decode[UploadResponse](t, rec)
	}

	page := upload("page.html", "text/html", "<html><body><script>alert(1)</script></body></html>")
	rec := env.do(t, http.MethodGet, page.URL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	// The declared type loses to the bytes
	png := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32)
	image := upload("logo.html", "text/html", png)
	assert.Equal(t, "image/png", image.ContentType)
	rec = env.do(t, http.MethodGet, image.URL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestUploadRequiresMultipart(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/upload", map[string]any{"file": "x"})
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "content_type", decode[ErrorResponse](t, rec).Field)
}

func TestUploadTooLarge(t *testing.T) {
	env := newTestEnv(t, withConfig(map[string]string{"MAX_UPLOAD_MB": "1"}))

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "file", "big.bin", strings.Repeat("x", 1<<20+512<<10)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAppQRCode(t *testing.T) {
	env := newTestEnv(t)
	env.createApp(t, map[string]any{"name": "Budget Tool", "url": "https://b.example", "category": "Finance"})

	rec := env.do(t, http.MethodGet, "/api/apps/1/qrcode?size=128", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = env.do(t, http.MethodGet, "/api/apps/1/qrcode?size=10", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/apps/9/qrcode", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNews(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/news", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Eng Blog</title>
<item><title>Release notes</title><link>https://blog.example/1</link><pubDate>Mon, 01 Apr 2024 10:00:00 GMT</pubDate></item>
</channel></rss>`)
	}))
	t.Cleanup(feed.Close)

	env = newTestEnv(t, WithNews(services.NewNewsService([]string{feed.URL}, time.Minute)))
	rec = env.do(t, http.MethodGet, "/api/news", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]models.NewsItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Release notes", items[0].Title)
	assert.Equal(t, "Eng Blog", items[0].Source)
}
