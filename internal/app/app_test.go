package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xmlsheet/internal/config"
	"xmlsheet/internal/infrastructure"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	infrastructure.ResetLoggerForTesting()

	cfg := config.Default()
	cfg.Logging.Output = "stdout"
	// Rate limiting off so tests can hammer the router freely.
	cfg.Security.RateLimit.Enabled = false

	application, err := NewApplicationWithConfig(cfg)
	require.NoError(t, err)
	return application
}

func TestApplicationWiring(t *testing.T) {
	application := newTestApplication(t)

	assert.NotNil(t, application.Router)
	assert.NotNil(t, application.Server)
	assert.NotNil(t, application.ConvertService)
	assert.Equal(t, ":8080", application.Server.Addr)
}

func TestApplicationRejectsInvalidConversionConfig(t *testing.T) {
	infrastructure.ResetLoggerForTesting()

	cfg := config.Default()
	cfg.Logging.Output = "stdout"
	cfg.Conversion.CollisionPolicy = "median"

	_, err := NewApplicationWithConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "convert service")
}

func TestRouterHealthEndpoint(t *testing.T) {
	application := newTestApplication(t)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouterConvertEndToEnd(t *testing.T) {
	application := newTestApplication(t)

	body := `{"xml_content": "<DataList><TN_DT><CODE>A</CODE><PERIOD>2023</PERIOD><DTVAL>1</DTVAL></TN_DT><TN_DT><CODE>A</CODE><PERIOD>2024</PERIOD><DTVAL>2</DTVAL></TN_DT></DataList>"}`
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success      bool   `json:"success"`
		RecordsCount int    `json:"records_count"`
		ExcelFile    string `json:"excel_file"`
		Filename     string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.RecordsCount)
	assert.NotEmpty(t, resp.ExcelFile)
	assert.Equal(t, "converted_data.xlsx", resp.Filename)
}

func TestRouterConvertMalformedXML(t *testing.T) {
	application := newTestApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("<broken"))
	req.Header.Set("Content-Type", "text/xml")

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error parsing XML")
}

func TestRouterNotFound(t *testing.T) {
	application := newTestApplication(t)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not-found")
}

func TestRouterMethodOnConvert(t *testing.T) {
	application := newTestApplication(t)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/convert", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouterBodySizeLimit(t *testing.T) {
	infrastructure.ResetLoggerForTesting()

	cfg := config.Default()
	cfg.Logging.Output = "stdout"
	cfg.Security.RateLimit.Enabled = false
	cfg.Server.MaxBodyBytes = 64

	application, err := NewApplicationWithConfig(cfg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/convert",
		strings.NewReader(strings.Repeat("<a/>", 100)))
	req.Header.Set("Content-Type", "text/xml")

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	application := newTestApplication(t)

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
