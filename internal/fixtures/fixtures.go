// Package fixtures embeds recorded hand frames for tests.
package fixtures

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ayusman/handcloud/internal/detector"
)

//go:embed hands/*
var handsFS embed.FS

// LoadHandFrame loads a recorded hand frame by pose name, e.g. "pinch".
func LoadHandFrame(name string) (detector.HandFrame, error) {
	data, err := handsFS.ReadFile("hands/" + name + ".json")
	if err != nil {
		return detector.HandFrame{}, fmt.Errorf("load hand frame %s: %w", name, err)
	}

	var frame detector.HandFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return detector.HandFrame{}, fmt.Errorf("decode hand frame %s: %w", name, err)
	}
	return frame, nil
}

// LoadSession loads a recorded sequence of hand frames, one JSON object
// per line.
func LoadSession(name string) ([]detector.HandFrame, error) {
	data, err := handsFS.ReadFile("hands/" + name + ".jsonl")
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", name, err)
	}

	var frames []detector.HandFrame
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var frame detector.HandFrame
		if err := dec.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode session %s frame %d: %w", name, len(frames), err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// Poses lists the single-frame fixtures.
var Poses = []string{"empty", "open_palm", "fist", "pinch", "point_up", "victory"}
