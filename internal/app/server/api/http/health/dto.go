package health

// Input represents the input for health check endpoint
type Input struct{}

// Output represents the output for health check endpoint
type Output struct {
	Body HealthResponse
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status" example:"OK" doc:"OK when every provider is reachable, DEGRADED otherwise"`
	Providers []ProviderStatus `json:"providers" doc:"Availability of each configured provider"`
}

type ProviderStatus struct {
	Name      string `json:"name" example:"google_sheets"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}
