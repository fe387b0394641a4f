package services

import (
	"io"
	"log/slog"
	"testing"
)

func TestNewAnthropicService(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewAnthropicService("test-api-key", "claude-3-5-haiku-latest", log)

	if service.apiKey != "test-api-key" {
		t.Errorf("Expected API key test-api-key, got %s", service.apiKey)
	}
	if service.modelName != "claude-3-5-haiku-latest" {
		t.Errorf("Expected model name claude-3-5-haiku-latest, got %s", service.modelName)
	}
	if service.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
}

func TestNewAnthropicService_DefaultModel(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewAnthropicService("test-api-key", "", log)
	if service.modelName != DefaultAnthropicModel {
		t.Errorf("Expected default model %s, got %s", DefaultAnthropicModel, service.modelName)
	}
}
