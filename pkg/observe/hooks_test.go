package observe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHooksNotifyFansOut(t *testing.T) {
	var first, second []Event
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			first = append(first, event)
			return nil
		}),
		nil,
		HookFunc(func(ctx context.Context, event Event) error {
			second = append(second, event)
			return nil
		}),
	}

	event := Event{Kind: KindCommit, Type: "setMessage", Path: "root"}
	if err := hooks.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected both hooks notified, got %d/%d", len(first), len(second))
	}
	if first[0].OccurredAt.IsZero() {
		t.Fatal("expected normalized event to carry a timestamp")
	}
}

func TestHooksNotifySkipsIncompleteEvents(t *testing.T) {
	var calls int
	hooks := Hooks{HookFunc(func(ctx context.Context, event Event) error {
		calls++
		return nil
	})}

	if err := hooks.Notify(context.Background(), Event{Type: "setMessage"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := hooks.Notify(context.Background(), Event{Kind: KindCommit}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no notifications for incomplete events, got %d", calls)
	}
}

func TestHooksNotifyJoinsErrors(t *testing.T) {
	errA := errors.New("hook a failed")
	errB := errors.New("hook b failed")
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error { return errA }),
		HookFunc(func(ctx context.Context, event Event) error { return nil }),
		HookFunc(func(ctx context.Context, event Event) error { return errB }),
	}

	err := hooks.Notify(context.Background(), Event{Kind: KindDispatch, Type: "load"})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both hook errors joined, got %v", err)
	}
}

func TestNormalizeEventTrimsAndClones(t *testing.T) {
	meta := map[string]any{"request": "r-1"}
	event := NormalizeEvent(Event{
		Kind:     "  " + KindCommit + "  ",
		ID:       " id ",
		Type:     " setMessage ",
		Channel:  " audit ",
		Metadata: meta,
	})

	if event.Kind != KindCommit || event.ID != "id" || event.Type != "setMessage" || event.Channel != "audit" {
		t.Fatalf("expected trimmed fields, got %+v", event)
	}
	event.Metadata["request"] = "mutated"
	if meta["request"] != "r-1" {
		t.Fatal("expected metadata to be cloned")
	}
}

func TestNormalizeEventKeepsExplicitTimestamp(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := NormalizeEvent(Event{Kind: KindCommit, Type: "set", OccurredAt: at})
	if !event.OccurredAt.Equal(at) {
		t.Fatalf("expected explicit timestamp preserved, got %v", event.OccurredAt)
	}
}

func TestEmitterAppliesDefaultChannel(t *testing.T) {
	var got []Event
	hooks := Hooks{HookFunc(func(ctx context.Context, event Event) error {
		got = append(got, event)
		return nil
	})}
	emitter := NewEmitter(hooks, Config{Enabled: true})

	if err := emitter.Emit(context.Background(), Event{Kind: KindCommit, Type: "set"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(got) != 1 || got[0].Channel != "store" {
		t.Fatalf("expected default channel, got %+v", got)
	}

	if err := emitter.Emit(context.Background(), Event{Kind: KindCommit, Type: "set", Channel: "audit"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got[1].Channel != "audit" {
		t.Fatalf("expected explicit channel kept, got %q", got[1].Channel)
	}
}

func TestEmitterDisabled(t *testing.T) {
	var calls int
	hooks := Hooks{HookFunc(func(ctx context.Context, event Event) error {
		calls++
		return nil
	})}

	disabled := NewEmitter(hooks, Config{Enabled: false})
	if err := disabled.Emit(context.Background(), Event{Kind: KindCommit, Type: "set"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if disabled.Enabled() || calls != 0 {
		t.Fatal("expected disabled emitter to drop events")
	}

	empty := NewEmitter(nil, Config{Enabled: true})
	if empty.Enabled() {
		t.Fatal("expected emitter without hooks to be disabled")
	}
}

func TestBuildEventsRecordErrorsInMetadata(t *testing.T) {
	failure := errors.New("save rejected")
	event := BuildDispatchEvent(EventInput{
		ID:   "d-1",
		Type: "save",
		Err:  failure,
	})
	if event.Kind != KindDispatch {
		t.Fatalf("expected dispatch kind, got %q", event.Kind)
	}
	if event.Metadata["error"] != failure.Error() {
		t.Fatalf("expected error recorded in metadata, got %+v", event.Metadata)
	}

	commit := BuildCommitEvent(EventInput{ID: "c-1", Type: "set", Payload: 7})
	if commit.Kind != KindCommit || commit.Payload != 7 {
		t.Fatalf("unexpected commit event: %+v", commit)
	}
	if commit.Metadata != nil {
		t.Fatalf("expected no metadata without error, got %+v", commit.Metadata)
	}
}
