package farmhand

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	maxRecords     = 50
	summaryRecords = 5 // how many recent records a summary covers
)

// CycleRecord captures what happened in a single farmhand cycle.
type CycleRecord struct {
	Tick      uint64 `json:"tick"`
	Action    Action `json:"action"`
	Applied   bool   `json:"applied"`
	Gold      int    `json:"gold"`
	Level     int    `json:"level"`
	Condition string `json:"condition"`
	Rationale string `json:"rationale,omitempty"`
}

// CycleMemory manages a ring of recent farmhand cycle records.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`

	path string
}

// LoadMemory reads the memory file from disk. Returns empty memory if the
// file is missing or unreadable.
func LoadMemory(path string) *CycleMemory {
	data, err := os.ReadFile(path)
	if err != nil {
		return &CycleMemory{path: path}
	}
	var mem CycleMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("farmhand memory corrupted, starting fresh", "error", err)
		return &CycleMemory{path: path}
	}
	mem.path = path
	return &mem
}

// Save writes the memory to disk. A memory without a path is kept in
// process only.
func (m *CycleMemory) Save() {
	if m.path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal farmhand memory", "error", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		slog.Error("failed to write farmhand memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Summary describes the last few cycles for the log.
func (m *CycleMemory) Summary() string {
	if len(m.Records) == 0 {
		return "no cycles yet"
	}

	start := 0
	if len(m.Records) > summaryRecords {
		start = len(m.Records) - summaryRecords
	}

	parts := make([]string, 0, summaryRecords)
	for _, r := range m.Records[start:] {
		mark := ""
		if !r.Applied {
			mark = "!"
		}
		parts = append(parts, fmt.Sprintf("t%d:%s%s", r.Tick, r.Action, mark))
	}
	return strings.Join(parts, " ")
}
