package accesscore

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink)
	defer d.Close()

	d.Emit(context.Background(), AuditEvent{EventType: auditEventSignInSuccess, SubjectID: "sub-1"})

	select {
	case got := <-sink.Events():
		if got.EventType != auditEventSignInSuccess || got.SubjectID != "sub-1" {
			t.Errorf("delivered event = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(16)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventSignOut})
	}
	d.Close()

	delivered := 0
	for {
		select {
		case <-sink.Events():
			delivered++
		default:
			if delivered != 10 {
				t.Fatalf("delivered = %d, want 10", delivered)
			}
			return
		}
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	// A sink that never returns keeps the buffer full. The block channel
	// is released before Close so the drain can finish.
	block := make(chan struct{})
	sink := blockingSink{block: block}

	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)
	defer d.Close()
	defer close(block)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventSignOut})
	}
	if d.Dropped() == 0 {
		t.Error("no events dropped despite a full buffer")
	}
}

type blockingSink struct {
	block chan struct{}
}

func (s blockingSink) Emit(context.Context, AuditEvent) {
	<-s.block
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("disabled dispatcher is non-nil")
	}
	// Nil receivers must be safe.
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Error("Dropped on nil dispatcher != 0")
	}
}

func TestJSONWriterSinkWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{EventType: auditEventSignInSuccess, Success: true})
	sink.Emit(context.Background(), AuditEvent{EventType: auditEventSignOut})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2", len(lines))
	}
	var event AuditEvent
	if err := json.Unmarshal(lines[0], &event); err != nil {
		t.Fatalf("first line is not valid JSON: %v", err)
	}
	if event.EventType != auditEventSignInSuccess || !event.Success {
		t.Errorf("decoded event = %+v", event)
	}
}
