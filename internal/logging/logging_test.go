package logging

import "testing"

func TestNewDefaultsSucceed(t *testing.T) {
	logger, err := New(Config{})
	if err != nil {
		t.Fatalf("New(Config{}): %v", err)
	}
	defer logger.Sync()
	logger.Info("ready")
}

func TestNewJSONFormat(t *testing.T) {
	logger, err := New(Config{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("New(json): %v", err)
	}
	defer logger.Sync()
	logger.Debug("debug line")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(Config{Level: "verbose"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
