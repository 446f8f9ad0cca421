package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"classifyd/internal/pipeline"
	"classifyd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	// CheckHeader validates the declared filename and content type before
	// the upload body is read.
	CheckHeader(filename, contentType string) error
	Predict(ctx context.Context, u pipeline.Upload) (types.PredictionResponse, error)
	Model() types.ModelResponse
	Ready() bool
}

// uploadFields are the multipart field names accepted for the image, in
// order of preference.
var uploadFields = []string{"file", "image"}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5, "application/json"))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.RootResponse{Status: "ok", Message: "Image classification API is running."})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.HealthResponse{Status: "healthy", ModelLoaded: svc.Ready()})
	})

	r.Get("/model", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Model())
	})

	r.Post("/predict", predictHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// predictHandler classifies one multipart upload.
//
// @Summary      Classify an image
// @Description  Accepts a jpg/jpeg/png upload of at most 10 MiB and returns the predicted class with per-class scores. Predictions whose top score is below the confidence threshold are labelled "Low Confidence Prediction".
// @Tags         predict
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image file"
// @Success      200   {object}  types.PredictionResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      413   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /predict [post]
func predictHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lvl := requestLogLevel(r)

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
				writeJSONError(w, http.StatusRequestEntityTooLarge, pipeline.KindValidation, "Request body too large.")
				return
			}
			writeJSONError(w, http.StatusBadRequest, pipeline.KindValidation, "Request must be multipart/form-data with a 'file' field.")
			return
		}
		defer r.MultipartForm.RemoveAll()

		fh := formFile(r.MultipartForm)
		if fh == nil {
			writeJSONError(w, http.StatusBadRequest, pipeline.KindValidation, "No file uploaded. Use 'file' as the form field name.")
			return
		}
		contentType := fh.Header.Get("Content-Type")
		requestEvent(r, lvl, LevelInfo).
			Str("filename", fh.Filename).
			Str("content_type", contentType).
			Int64("bytes", fh.Size).
			Msg("predict start")

		if err := svc.CheckHeader(fh.Filename, contentType); err != nil {
			status := writeServiceError(w, err)
			requestEvent(r, lvl, LevelInfo).Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("predict end")
			return
		}

		data, err := readFormFile(fh)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, pipeline.KindValidation, "Could not read the uploaded file.")
			requestEvent(r, lvl, LevelError).Err(err).Msg("read upload")
			return
		}
		uploadBytes.Observe(float64(len(data)))

		ctx, cancel := predictContext(r)
		defer cancel()
		resp, err := svc.Predict(ctx, pipeline.Upload{Filename: fh.Filename, ContentType: contentType, Data: data})
		if err != nil {
			// If context was canceled (client disconnect or shutdown), just return.
			if canceled(r) {
				return
			}
			status := writeServiceError(w, err)
			requestEvent(r, lvl, LevelInfo).Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("predict end")
			return
		}
		writeJSON(w, http.StatusOK, resp)
		requestEvent(r, lvl, LevelInfo).
			Int("status", http.StatusOK).
			Str("prediction", resp.Prediction).
			Float64("confidence", resp.Confidence).
			Dur("dur", time.Since(start)).
			Msg("predict end")
		requestEvent(r, lvl, LevelDebug).Interface("all_probabilities", resp.AllProbabilities).Msg("predict scores")
	}
}

// formFile returns the first uploaded file under any accepted field name.
func formFile(form *multipart.Form) *multipart.FileHeader {
	for _, name := range uploadFields {
		if fhs := form.File[name]; len(fhs) > 0 {
			return fhs[0]
		}
	}
	return nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}
