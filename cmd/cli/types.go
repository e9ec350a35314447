package main

// ErrorResponse matches httpserver.ErrorResponse.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse matches httpserver.HealthResponse.
type HealthResponse struct {
	Status string `json:"status"`
}

// GenerateRequest matches handlers.GenerateRequest, using the long field names.
type GenerateRequest struct {
	StoryURL               string `json:"storyUrl"`
	UIRepoLocation         string `json:"uiRepoLocation"`
	AutomationRepoLocation string `json:"automationRepoLocation,omitempty"`
}
