// Package steplog writes a compressed JSONL trail of game steps, one line
// per step with a digest of the full snapshot, for replay checks.
package steplog

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/weather"
)

// Entry summarizes one step.
type Entry struct {
	Step    int          `json:"step"`
	Day     int          `json:"day"`
	Phase   engine.Phase `json:"phase"`
	Weather weather.Kind `json:"weather"`
	Hazard  string       `json:"hazard,omitempty"`
	Alive   int          `json:"alive"`
	Deaths  int          `json:"deaths"`
	Logs    int          `json:"logs"`
	Digest  string       `json:"digest"`
}

// Digest is the hex SHA-256 of a snapshot's JSON encoding.
func Digest(s *engine.GameState) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Summarize builds the entry for the step that turned prev into next.
func Summarize(step int, prev, next *engine.GameState) (Entry, error) {
	digest, err := Digest(next)
	if err != nil {
		return Entry{}, fmt.Errorf("digest step %d: %w", step, err)
	}
	e := Entry{
		Step:    step,
		Day:     next.Day,
		Phase:   next.Phase,
		Weather: next.Weather,
		Alive:   next.AliveCount(),
		Deaths:  prev.AliveCount() - next.AliveCount(),
		Logs:    len(next.Logs) - len(prev.Logs),
		Digest:  digest,
	}
	if next.Hazard != nil {
		e.Hazard = next.Hazard.Kind.String()
	}
	return e, nil
}

// Path is where a run's step log lives under dir.
func Path(dir, runID string) string {
	return filepath.Join(dir, runID+".jsonl.zst")
}

// Writer appends entries to one zstd-compressed file.
type Writer struct {
	mu    sync.Mutex
	f     *os.File
	enc   *zstd.Encoder
	w     *bufio.Writer
	steps int
}

// Create opens a new step log for the run, creating dir as needed.
func Create(dir, runID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("steplog dir: %w", err)
	}
	f, err := os.OpenFile(Path(dir, runID), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("steplog file: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("steplog encoder: %w", err)
	}
	return &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}, nil
}

// Write appends one entry.
func (w *Writer) Write(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return fmt.Errorf("steplog closed")
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Observe is a runner step hook: it summarizes and appends the step.
func (w *Writer) Observe(prev, next *engine.GameState) {
	w.mu.Lock()
	w.steps++
	step := w.steps
	w.mu.Unlock()

	e, err := Summarize(step, prev, next)
	if err == nil {
		err = w.Write(e)
	}
	if err != nil {
		slog.Error("steplog write failed", "step", step, "error", err)
	}
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	err := w.w.Flush()
	if cerr := w.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	w.w, w.enc, w.f = nil, nil, nil
	return err
}

// Read decodes every entry of a step log.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", len(out)+1, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
