// Package report replays a simulation trace and computes latency and
// failure statistics over the finished requests.
package report

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/ulikunitz/xz"
)

type tickRecord struct {
	Type     string `json:"type"`
	Tick     int    `json:"tick"`
	Finished []struct {
		ID      uint64 `json:"id"`
		Latency int    `json:"latency"`
		Expired bool   `json:"expired"`
	} `json:"finished"`
}

// Summary aggregates one trace. Latencies are in ticks; expired requests
// count as failures and are excluded from the latency percentiles.
type Summary struct {
	Finished    int
	Failures    int
	FailureRate float64
	MeanLatency float64
	P95         int
	P99         int
	P999        int
}

// Read builds a Summary from a JSONL trace, transparently decompressing
// files with an .xz suffix.
func Read(path string) (*Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "could not open trace %s", path)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".xz") {
		reader, err = xz.NewReader(file)
		if err != nil {
			return nil, eris.Wrap(err, "failed to open xz stream")
		}
	}
	return read(reader)
}

func read(reader io.Reader) (*Summary, error) {
	var latencies []int
	failures := 0

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		var record tickRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, eris.Wrap(err, "malformed trace line")
		}
		if record.Type != "tick_info" {
			continue
		}
		for _, fin := range record.Finished {
			if fin.Expired {
				failures++
			} else {
				latencies = append(latencies, fin.Latency)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to read trace")
	}

	summary := &Summary{
		Finished: len(latencies) + failures,
		Failures: failures,
	}
	if summary.Finished > 0 {
		summary.FailureRate = float64(failures) / float64(summary.Finished)
	}
	if len(latencies) == 0 {
		return summary, nil
	}

	sort.Ints(latencies)
	total := 0
	for _, lat := range latencies {
		total += lat
	}
	summary.MeanLatency = float64(total) / float64(len(latencies))
	summary.P95 = percentile(latencies, 0.95)
	summary.P99 = percentile(latencies, 0.99)
	summary.P999 = percentile(latencies, 0.999)
	return summary, nil
}

// percentile expects sorted input.
func percentile(sorted []int, q float64) int {
	idx := int(float64(len(sorted)) * q)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
