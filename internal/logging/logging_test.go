package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		wantErr bool
	}{
		{"info", "json", false},
		{"debug", "console", false},
		{"warn", "", false},
		{"error", "json", false},
		{"verbose", "json", true},
		{"info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNewLevelEnabled(t *testing.T) {
	logger, err := New("warn", "json")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Error("debug enabled at warn level")
	}
	if !logger.Core().Enabled(zap.WarnLevel) {
		t.Error("warn disabled at warn level")
	}
}
