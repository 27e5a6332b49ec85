package httpapi

// VerifyPayload is the body of POST /verify.
type VerifyPayload struct {
	SignedXML string `json:"signedXml"`
}

type VerifyResponse struct {
	Success bool   `json:"success"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// ErrorResponse is rendered for rejected requests and unhandled errors.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp int64  `json:"timestamp"`
}

type InfoResponse struct {
	Service                          string   `json:"service"`
	Version                          string   `json:"version"`
	Description                      string   `json:"description"`
	SupportedAlgorithms              []string `json:"supportedAlgorithms"`
	SupportedFormats                 []string `json:"supportedFormats"`
	SupportedCanonicalizationMethods []string `json:"supportedCanonicalizationMethods"`
}
