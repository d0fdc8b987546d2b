package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TranscriptPath and SummaryPath name the files Persist writes for a video.
func TranscriptPath(dir, videoID string) string {
	return filepath.Join(dir, videoID+".json")
}

func SummaryPath(dir, videoID string) string {
	return filepath.Join(dir, videoID+"_summary.md")
}

// MarshalTranscript renders a transcript as a pretty-printed JSON array.
// Non-ASCII text is written as-is.
func MarshalTranscript(t Transcript) ([]byte, error) {
	if t == nil {
		t = Transcript{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTranscript writes <dir>/<id>.json atomically.
func WriteTranscript(dir, videoID string, t Transcript) (string, error) {
	data, err := MarshalTranscript(t)
	if err != nil {
		return "", err
	}
	path := TranscriptPath(dir, videoID)
	if err := atomicWrite(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSummary writes <dir>/<id>_summary.md atomically.
func WriteSummary(dir, videoID, summary string) (string, error) {
	path := SummaryPath(dir, videoID)
	if err := atomicWrite(path, []byte(strings.TrimSpace(summary)+"\n")); err != nil {
		return "", err
	}
	return path, nil
}

// atomicWrite writes to a temp file in the same directory, then renames.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
