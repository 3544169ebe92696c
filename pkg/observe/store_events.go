package observe

import "time"

const (
	// KindCommit marks a mutation applied through the commit path.
	KindCommit = "store.commit"
	// KindDispatch marks an action executed through the dispatch path.
	KindDispatch = "store.dispatch"
)

// EventInput describes the common fields for store lifecycle events.
type EventInput struct {
	ID         string
	Path       string
	Type       string
	Channel    string
	Payload    any
	Duration   time.Duration
	Err        error
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildCommitEvent constructs a normalized event for an applied mutation.
func BuildCommitEvent(input EventInput) Event {
	return buildStoreEvent(KindCommit, input)
}

// BuildDispatchEvent constructs a normalized event for a dispatched action.
func BuildDispatchEvent(input EventInput) Event {
	return buildStoreEvent(KindDispatch, input)
}

func buildStoreEvent(kind string, input EventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Err != nil {
		metadata = ensureMetadata(metadata)
		metadata["error"] = input.Err.Error()
	}

	return Event{
		Kind:       kind,
		ID:         input.ID,
		Path:       input.Path,
		Type:       input.Type,
		Channel:    input.Channel,
		Payload:    input.Payload,
		Duration:   input.Duration,
		Err:        input.Err,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
