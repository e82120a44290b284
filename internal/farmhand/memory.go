package farmhand

import (
	"encoding/json"
	"log/slog"
	"os"
)

const maxRecords = 20

// CycleRecord captures what happened in a single farmhand cycle.
type CycleRecord struct {
	Tick    uint64 `json:"tick"`
	Scene   string `json:"scene"`
	Planned int    `json:"planned"`
	Done    int    `json:"done"`
	Skipped int    `json:"skipped"`
	Limited bool   `json:"limited,omitempty"`
}

// CycleMemory manages a ring of recent cycle records.
type CycleMemory struct {
	path    string
	Records []CycleRecord `json:"records"`
}

// LoadMemory reads the memory file at path. Returns empty memory if not found.
func LoadMemory(path string) *CycleMemory {
	data, err := os.ReadFile(path)
	if err != nil {
		return &CycleMemory{path: path}
	}
	mem := CycleMemory{path: path}
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("farmhand memory corrupted, starting fresh", "error", err)
		return &CycleMemory{path: path}
	}
	return &mem
}

// Save writes the memory to disk.
func (m *CycleMemory) Save() {
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

// Worked returns the total tasks done across remembered cycles.
func (m *CycleMemory) Worked() int {
	n := 0
	for _, r := range m.Records {
		n += r.Done
	}
	return n
}
