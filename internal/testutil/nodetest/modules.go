package nodetest

import (
	"context"
	"sync"
	"time"

	"github.com/vk/nodegrid/internal/nodedef"
	"github.com/vk/nodegrid/internal/registry"
)

// SimpleModule registers one built-in type and one process. A nil Process
// registers nothing, which is useful for tests that expect validation to
// fail.
type SimpleModule struct {
	TypeName    string
	Manifest    string
	ProcessName string
	Process     nodedef.ProcessFunc
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.TypeName != "" {
		r.RegisterType(m.TypeName, registry.Builtin(m.TypeName, []byte(m.Manifest)))
	}
	if m.ProcessName != "" && m.Process != nil {
		r.RegisterProcess(m.ProcessName, m.Process)
	}
}

// ExecutionRecord holds the input and timing of one sleeper run.
type ExecutionRecord struct {
	In    float64
	Start time.Time
	End   time.Time
}

// SleeperManifest declares the "sleeper" type: a number input "in"
// (default 0) and a number output "out" equal to in + 1.
const SleeperManifest = `
node "sleeper" {
  process = "Sleeper"

  input "in" {
    type    = number
    default = 0
  }

  output "out" {
    type = number
  }
}
`

// SleeperModule registers the "sleeper" type. Every run sleeps and then
// records its input and timing.
type SleeperModule struct {
	mu            sync.Mutex
	records       []ExecutionRecord
	sleepDuration time.Duration
}

// NewSleeperModule creates a sleeper module sleeping d per run.
func NewSleeperModule(d time.Duration) *SleeperModule {
	return &SleeperModule{sleepDuration: d}
}

// Register implements the registry.Module interface.
func (m *SleeperModule) Register(r *registry.Registry) {
	r.RegisterType("sleeper", registry.Builtin("sleeper", []byte(SleeperManifest)))
	r.RegisterProcess("Sleeper", m.sleep)
}

// Records returns the runs in completion order.
func (m *SleeperModule) Records() []ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutionRecord(nil), m.records...)
}

func (m *SleeperModule) sleep(ctx context.Context, in map[string]any, rt nodedef.Runtime) (map[string]any, error) {
	x, _ := in["in"].(float64)
	rt.Logger().Debug("Sleeper started.", "in", x)

	start := time.Now()
	timer := time.NewTimer(m.sleepDuration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	m.mu.Lock()
	m.records = append(m.records, ExecutionRecord{In: x, Start: start, End: time.Now()})
	m.mu.Unlock()
	return map[string]any{"out": x + 1}, nil
}
