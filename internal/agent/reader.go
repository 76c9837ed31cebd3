package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bft-labs/telship/pkg/contracts"
)

// lineReader tails a JSON-lines file, returning newly appended complete
// lines on each call. The offset only advances past newline-terminated
// lines, so a partially written record is picked up on the next poll.
type lineReader struct {
	path   string
	offset int64
}

// next returns the complete lines appended since the previous call.
// A file that shrank below the current offset is treated as rotated and
// read again from the start.
func (r *lineReader) next() ([][]byte, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if st.Size() < r.offset {
		r.offset = 0
	}

	if _, err := f.Seek(r.offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek input: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, nil
	}
	r.offset += int64(end + 1)

	var lines [][]byte
	for _, line := range bytes.Split(data[:end], []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// reserved top-level keys of an input record; everything else becomes payload.
var envelopeKeys = map[string]bool{
	"name": true,
	"time": true,
	"iKey": true,
	"tags": true,
	"data": true,
}

// parseEnvelope turns one input line into an envelope. Records may set
// name, time, iKey, tags, and data explicitly; unknown top-level fields
// are folded into the data payload. ikey is the fallback instrumentation
// key for records that carry none.
func parseEnvelope(line []byte, ikey string) (*contracts.Envelope, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}

	name := "Event"
	if v, ok := raw["name"].(string); ok && v != "" {
		name = v
	}
	e := contracts.NewEnvelope(name)

	if v, ok := raw["time"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			e.Time = ts
		}
	}

	e.IKey = ikey
	if v, ok := raw["iKey"].(string); ok && v != "" {
		e.IKey = v
	}

	if tags, ok := raw["tags"].(map[string]interface{}); ok {
		e.Tags = make(map[string]string, len(tags))
		for k, v := range tags {
			if s, ok := v.(string); ok {
				e.Tags[k] = s
			}
		}
	}

	if data, ok := raw["data"].(map[string]interface{}); ok {
		e.Data = data
	}
	for k, v := range raw {
		if envelopeKeys[k] {
			continue
		}
		if e.Data == nil {
			e.Data = make(map[string]interface{})
		}
		e.Data[k] = v
	}

	return e, nil
}
