package telemetry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Entry is one filter-engine diagnostic record: buffer depth
// warnings, decoder failures, focus-policy transitions.
type Entry struct {
	Message   string                 `json:"message"`
	Level     string                 `json:"level,omitempty"`
	Timestamp string                 `json:"ts"`
	Stream    string                 `json:"stream,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// SinkConfig configures a Sink. IngestURL is optional: when empty,
// batches are written as newline-delimited JSON under Directory
// instead of POSTed to an HTTP endpoint.
type SinkConfig struct {
	Enabled       bool
	Directory     string
	IngestURL     string
	BatchSize     int
	FlushInterval time.Duration
}

// Sink is a batching async diagnostics logger, adapted from the
// teacher's BetterStackLogger: the same buffer/ticker/flush shape,
// but flushing either to an HTTP ingest endpoint or to NDJSON files
// under a directory, gated by Enabled the way the original gates
// "write filtered WAVs to logDirectory" on Config.LogFilters.
type Sink struct {
	cfg    SinkConfig
	client *http.Client

	buffer   []Entry
	bufferMu sync.Mutex

	stopCh chan struct{}
	wg     sync.WaitGroup

	fileSeq int64
}

// NewSink constructs a Sink. If cfg.Enabled, a background goroutine
// flushes the buffer on cfg.FlushInterval until Close is called.
func NewSink(cfg SinkConfig) *Sink {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}

	s := &Sink{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		buffer: make([]Entry, 0, cfg.BatchSize),
		stopCh: make(chan struct{}),
	}

	if s.cfg.Enabled {
		s.wg.Add(1)
		go s.flushWorker()
	}
	return s
}

// Log buffers one entry, flushing immediately once the batch fills.
func (s *Sink) Log(e Entry) {
	if !s.cfg.Enabled {
		return
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	s.bufferMu.Lock()
	s.buffer = append(s.buffer, e)
	shouldFlush := len(s.buffer) >= s.cfg.BatchSize
	s.bufferMu.Unlock()

	if shouldFlush {
		s.Flush()
	}
}

// Flush sends all buffered entries immediately, in the background.
func (s *Sink) Flush() {
	if !s.cfg.Enabled {
		return
	}

	s.bufferMu.Lock()
	if len(s.buffer) == 0 {
		s.bufferMu.Unlock()
		return
	}
	entries := make([]Entry, len(s.buffer))
	copy(entries, s.buffer)
	s.buffer = s.buffer[:0]
	s.bufferMu.Unlock()

	go s.sendBatch(entries)
}

func (s *Sink) sendBatch(entries []Entry) {
	if len(entries) == 0 {
		return
	}
	if s.cfg.IngestURL != "" {
		s.postBatch(entries)
		return
	}
	s.writeBatchToDirectory(entries)
}

func (s *Sink) postBatch(entries []Entry) {
	jsonData, err := json.Marshal(entries)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.IngestURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
}

func (s *Sink) writeBatchToDirectory(entries []Entry) {
	if s.cfg.Directory == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.Directory, 0o755); err != nil {
		return
	}

	seq := atomic.AddInt64(&s.fileSeq, 1)
	name := filepath.Join(s.cfg.Directory, fmt.Sprintf("filters-%d.ndjson", seq))
	f, err := os.Create(name)
	if err != nil {
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, e := range entries {
		_ = enc.Encode(e)
	}
}

func (s *Sink) flushWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-s.stopCh:
			s.Flush()
			return
		}
	}
}

// Close stops the flush worker and flushes any remaining entries.
func (s *Sink) Close() {
	if !s.cfg.Enabled {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
}
