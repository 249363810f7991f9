package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// LoadWatermark reads the persisted watermark from path. A missing file
// yields the zero time, which makes the next sync a full refresh.
func LoadWatermark(path string) (time.Time, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read watermark file %s: %w", path, err)
	}

	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse watermark file %s: %w", path, err)
	}
	return t, nil
}

// StoreWatermark persists t to path. The watermark only ever advances:
// a t at or before the currently stored value is left alone.
func StoreWatermark(path string, t time.Time) error {
	if t.IsZero() {
		return nil
	}

	current, err := LoadWatermark(path)
	if err == nil && !t.After(current) {
		return nil
	}

	if err := os.WriteFile(path, []byte(t.Format(time.RFC3339Nano)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write watermark file %s: %w", path, err)
	}
	return nil
}
