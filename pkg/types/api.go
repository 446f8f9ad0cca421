package types

// PredictionResponse is returned by POST /predict.
type PredictionResponse struct {
	// Predicted class name, or "Low Confidence Prediction" when the top score
	// is below the confidence threshold.
	// example: glioma
	Prediction string `json:"prediction" example:"glioma"`
	// Score of the top class, rounded to 4 decimals.
	// example: 0.9731
	Confidence float64 `json:"confidence" example:"0.9731"`
	// Score of every known class, rounded to 4 decimals.
	AllProbabilities map[string]float64 `json:"all_probabilities"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: File must be an image.
	Error string `json:"error" example:"File must be an image."`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
	// Error class: validation, processing or inference.
	// example: validation
	Kind string `json:"kind,omitempty" example:"validation"`
}

// RootResponse is returned by GET /.
type RootResponse struct {
	// example: ok
	Status string `json:"status" example:"ok"`
	// example: Image classification API is running.
	Message string `json:"message" example:"Image classification API is running."`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Whether a classifier is attached and serving.
	// example: true
	ModelLoaded bool `json:"model_loaded" example:"true"`
}

// ModelResponse is returned by GET /model.
type ModelResponse struct {
	Model Model `json:"model"`
	// Ordered class names; index is the class index.
	Classes []string `json:"classes"`
	// Side length of the square input image.
	// example: 128
	ImageSize int `json:"image_size" example:"128"`
	// Minimum top score reported under its own label.
	// example: 0.6
	ConfidenceThreshold float64 `json:"confidence_threshold" example:"0.6"`
	// Maximum accepted upload size in bytes.
	// example: 10485760
	MaxFileSize int64 `json:"max_file_size" example:"10485760"`
	// Accepted file extensions.
	AllowedExtensions []string `json:"allowed_extensions"`
}
