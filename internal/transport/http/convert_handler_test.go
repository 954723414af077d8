package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xmlsheet/internal/convert"
	apierrors "xmlsheet/internal/errors"
	"xmlsheet/internal/services"
)

// stubConvertService records the input it was given and returns canned
// results.
type stubConvertService struct {
	lastInput string
	resp      *services.ConvertResponse
	err       error
}

func (s *stubConvertService) Convert(_ context.Context, xmlText string) (*services.ConvertResponse, error) {
	s.lastInput = xmlText
	return s.resp, s.err
}

func okResponse() *services.ConvertResponse {
	return &services.ConvertResponse{
		Success:      true,
		Message:      "Successfully parsed 2 records",
		RecordsCount: 2,
		ExcelFile:    "UEsDBA==",
		Filename:     services.OutputFilename,
	}
}

func newTestHandler(stub *stubConvertService) *ConvertHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConvertHandler(stub, logger, apierrors.NewErrorHandler(logger, false))
}

func doConvert(t *testing.T, h *ConvertHandler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestConvertJSONBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "xml_content field", body: `{"xml_content": "<root/>"}`, want: "<root/>"},
		{name: "xml field", body: `{"xml": "<doc/>"}`, want: "<doc/>"},
		{name: "xml_content wins over xml", body: `{"xml_content": "<a/>", "xml": "<b/>"}`, want: "<a/>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubConvertService{resp: okResponse()}
			h := newTestHandler(stub)

			req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := doConvert(t, h, req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, stub.lastInput)

			var resp services.ConvertResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.Equal(t, services.OutputFilename, resp.Filename)
		})
	}
}

func TestConvertJSONMissingContent(t *testing.T) {
	h := newTestHandler(&stubConvertService{resp: okResponse()})

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"other": 1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := doConvert(t, h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "xml_content")
}

func TestConvertInvalidJSON(t *testing.T) {
	h := newTestHandler(&stubConvertService{resp: okResponse()})

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"xml_content": `))
	req.Header.Set("Content-Type", "application/json")
	rec := doConvert(t, h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertMultipartFile(t *testing.T) {
	stub := &stubConvertService{resp: okResponse()}
	h := newTestHandler(stub)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "data.xml")
	require.NoError(t, err)
	_, err = part.Write([]byte("<upload/>"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doConvert(t, h, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "<upload/>", stub.lastInput)
}

func TestConvertMultipartFormField(t *testing.T) {
	stub := &stubConvertService{resp: okResponse()}
	h := newTestHandler(stub)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("xml_content", "<field/>"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doConvert(t, h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<field/>", stub.lastInput)
}

func TestConvertURLEncodedForm(t *testing.T) {
	stub := &stubConvertService{resp: okResponse()}
	h := newTestHandler(stub)

	form := url.Values{"xml": {"<form/>"}}
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := doConvert(t, h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<form/>", stub.lastInput)
}

func TestConvertRawXMLBody(t *testing.T) {
	for _, ct := range []string{"text/xml", "application/xml", ""} {
		t.Run("content type "+ct, func(t *testing.T) {
			stub := &stubConvertService{resp: okResponse()}
			h := newTestHandler(stub)

			req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("<raw/>"))
			if ct != "" {
				req.Header.Set("Content-Type", ct)
			}
			rec := doConvert(t, h, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "<raw/>", stub.lastInput)
		})
	}
}

func TestConvertEmptyRawBody(t *testing.T) {
	h := newTestHandler(&stubConvertService{resp: okResponse()})

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("   "))
	req.Header.Set("Content-Type", "text/xml")
	rec := doConvert(t, h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No XML content provided")
}

func TestConvertParseErrorKeepsEnvelope(t *testing.T) {
	stub := &stubConvertService{
		resp: &services.ConvertResponse{
			Success: false,
			Message: "Error parsing XML: unexpected EOF",
		},
		err: fmt.Errorf("%w: unexpected EOF", convert.ErrParse),
	}
	h := newTestHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("<broken"))
	req.Header.Set("Content-Type", "text/xml")
	rec := doConvert(t, h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp services.ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Error parsing XML")
}

func TestConvertAssemblyErrorRendersProblem(t *testing.T) {
	stub := &stubConvertService{
		err: fmt.Errorf("%w: too many rows", convert.ErrAssembly),
	}
	h := newTestHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("<root/>"))
	req.Header.Set("Content-Type", "text/xml")
	rec := doConvert(t, h, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many rows")
}
