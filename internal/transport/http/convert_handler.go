package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"xmlsheet/internal/convert"
	apierrors "xmlsheet/internal/errors"
)

// ConvertRequest is the JSON body accepted by POST /api/convert.
// Either field may carry the document; xml_content wins when both are set.
type ConvertRequest struct {
	XMLContent string `json:"xml_content" validate:"required_without=XML"`
	XML        string `json:"xml" validate:"required_without=XMLContent"`
}

// ConvertHandler handles conversion HTTP requests with RFC 7807 errors
type ConvertHandler struct {
	service      ConvertServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *validator.Validate
}

// NewConvertHandler creates a new conversion handler
func NewConvertHandler(service ConvertServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ConvertHandler {
	v := validator.New()
	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ConvertHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "convert_handler")),
		errorHandler: errorHandler,
		validator:    v,
	}
}

// Routes returns the conversion routes
func (h *ConvertHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/convert", h.Convert)
	return r
}

// Convert handles POST /api/convert. The XML document may arrive as a
// JSON body, a multipart file upload, a form field, or the raw body;
// extractXML tries them in that order.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	xmlText, err := h.extractXML(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.Convert(r.Context(), xmlText)
	switch {
	case err == nil:
		render.JSON(w, r, resp)

	case errors.Is(err, convert.ErrParse):
		// Parse failures keep the response envelope so clients see the
		// converter's own message, with a 400 status.
		h.logger.WarnContext(r.Context(), "conversion rejected malformed xml",
			slog.String("error", err.Error()))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp)

	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// extractXML pulls the XML document out of the request, trying each
// supported input form in a fixed order.
func (h *ConvertHandler) extractXML(r *http.Request) (string, error) {
	mediaType := requestMediaType(r)

	switch {
	case strings.HasPrefix(mediaType, "multipart/form-data"):
		return h.extractMultipart(r)

	case mediaType == "application/json":
		return h.extractJSON(r)

	case mediaType == "application/x-www-form-urlencoded":
		return h.extractForm(r)
	}

	// Raw body fallback covers text/xml, application/xml and clients
	// that send the document with no Content-Type at all.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", apierrors.InvalidRequestWithError(err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", apierrors.ErrMissingXML
	}
	return string(body), nil
}

func (h *ConvertHandler) extractJSON(r *http.Request) (string, error) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", apierrors.InvalidRequestWithError(err)
	}

	if err := h.validator.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]apierrors.ValidationError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, apierrors.ValidationError{
					Field:   fe.Field(),
					Message: "XML content is required",
				})
			}
			return "", apierrors.NewValidationErrors(fields)
		}
		return "", apierrors.InvalidRequestWithError(err)
	}

	if strings.TrimSpace(req.XMLContent) != "" {
		return req.XMLContent, nil
	}
	if strings.TrimSpace(req.XML) != "" {
		return req.XML, nil
	}
	return "", apierrors.ErrMissingXML
}

func (h *ConvertHandler) extractMultipart(r *http.Request) (string, error) {
	// ParseMultipartForm spools anything above this threshold to disk.
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return "", apierrors.InvalidRequestWithError(err)
	}

	for _, field := range []string{"file", "xml"} {
		f, _, err := r.FormFile(field)
		if err != nil {
			continue
		}
		defer f.Close()
		body, err := io.ReadAll(f)
		if err != nil {
			return "", apierrors.InvalidRequestWithError(err)
		}
		if strings.TrimSpace(string(body)) != "" {
			return string(body), nil
		}
	}

	for _, field := range []string{"xml_content", "xml"} {
		if v := r.FormValue(field); strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	return "", apierrors.ErrMissingXML
}

func (h *ConvertHandler) extractForm(r *http.Request) (string, error) {
	if err := r.ParseForm(); err != nil {
		return "", apierrors.InvalidRequestWithError(err)
	}
	for _, field := range []string{"xml_content", "xml"} {
		if v := r.PostFormValue(field); strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	return "", apierrors.ErrMissingXML
}

func requestMediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mediaType
}
