package dto

// HealthResponse reports service and storage status
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Time    string `json:"time"`
	Error   string `json:"error,omitempty"`
}
