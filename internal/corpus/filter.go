package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
)

type FilterStats struct {
	Valid       int `json:"valid"`
	Invalid     int `json:"invalid"`
	InvalidJSON int `json:"invalid_json"`
}

type filterSample struct {
	Terms []struct {
		From *int `json:"from"`
		To   *int `json:"to"`
	} `json:"aspect_terms"`
}

func (s filterSample) valid() bool {
	for _, t := range s.Terms {
		if t.From == nil || t.To == nil || *t.From < 0 || *t.To < 0 {
			return false
		}
	}
	return true
}

// FilterSamples copies the JSONL samples of r to w, dropping every sample in
// which an aspect term lacks a non-negative from/to offset. Lines that are
// not valid JSON are counted as invalid and skipped.
func FilterSamples(r io.Reader, w io.Writer, logger *zap.Logger) (FilterStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var stats FilterStats
	bw := bufio.NewWriter(w)
	sc := newScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var s filterSample
		if err := json.Unmarshal(raw, &s); err != nil {
			logger.Warn("skipping invalid JSON", zap.Int("line", line), zap.Error(err))
			stats.Invalid++
			stats.InvalidJSON++
			continue
		}
		if !s.valid() {
			stats.Invalid++
			continue
		}

		if _, err := bw.Write(raw); err != nil {
			return stats, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return stats, err
		}
		stats.Valid++
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("failed to read samples: %w", err)
	}
	return stats, bw.Flush()
}
