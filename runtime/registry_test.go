package runtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/daviderandino/ruggine/contract"
	"github.com/daviderandino/ruggine/domain"
)

type recordingSink struct {
	mu       sync.Mutex
	received []domain.Message
}

func (s *recordingSink) Deliver(m domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, m)
	return nil
}

func (s *recordingSink) messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.received...)
}

func Test_Registry_Snapshot_Preserves_Registration_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	groupID := uuid.New()

	first := &recordingSink{}
	second := &recordingSink{}
	third := &recordingSink{}
	registry.Register(groupID, first)
	registry.Register(groupID, second)
	registry.Register(groupID, third)

	snapshot := registry.Snapshot(groupID)
	req.Equal([]contract.Sink{first, second, third}, snapshot)
}

func Test_Registry_Unregister_Removes_Only_That_Handle(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	groupID := uuid.New()

	first := &recordingSink{}
	second := &recordingSink{}
	regFirst := registry.Register(groupID, first)
	registry.Register(groupID, second)

	registry.Unregister(regFirst)

	snapshot := registry.Snapshot(groupID)
	req.Equal([]contract.Sink{second}, snapshot)

	// Unregistering twice, or a nil handle, is harmless.
	registry.Unregister(regFirst)
	registry.Unregister(nil)
	req.Len(registry.Snapshot(groupID), 1)
}

func Test_Registry_Snapshot_Unknown_Group(t *testing.T) {
	require.Empty(t, NewRegistry().Snapshot(uuid.New()))
}

func Test_Registry_Double_Register_Panics(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	groupID := uuid.New()
	sink := &recordingSink{}

	registry.Register(groupID, sink)
	req.Panics(func() { registry.Register(groupID, sink) })
}

func Test_Registry_Same_Sink_On_Two_Groups(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &recordingSink{}
	groupA := uuid.New()
	groupB := uuid.New()

	registry.Register(groupA, sink)
	req.NotPanics(func() { registry.Register(groupB, sink) })
	req.Len(registry.Snapshot(groupA), 1)
	req.Len(registry.Snapshot(groupB), 1)
}

func Test_Registry_Concurrent_Register_Unregister(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			groupID := uuid.New()
			reg := registry.Register(groupID, &recordingSink{})
			registry.Snapshot(groupID)
			registry.Unregister(reg)
		}()
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		req.Empty(registry.Snapshot(uuid.New()))
	}
}
