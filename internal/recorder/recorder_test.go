package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expense-share/client/internal/notify"
)

func TestRecorder_WriteAndRead(t *testing.T) {
	var buf bytes.Buffer
	rec := NewWithWriter(&buf)

	require.NoError(t, rec.WriteHeader("ws://localhost:8000/ws/notifications", []string{"invite", "expenses_changed"}))
	require.NoError(t, rec.Record(notify.Envelope{Type: "invite", Data: json.RawMessage(`{"id":1}`)}))
	require.NoError(t, rec.Record(notify.Envelope{Type: "expenses_changed"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"version":1`)
	assert.True(t, strings.HasSuffix(lines[1], `,"invite",{"id":1}]`), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], `,"expenses_changed",null]`), lines[2])

	header, events, err := ReadRecording(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"invite", "expenses_changed"}, header.Types)
	assert.Equal(t, rec.StartTime().Unix(), header.Timestamp)
	require.Len(t, events, 2)
	assert.JSONEq(t, `{"id":1}`, string(events[0].Data))
	assert.Nil(t, events[1].Data)
	assert.False(t, events[1].Envelope().HasData())
	assert.LessOrEqual(t, events[0].TimeOffset, events[1].TimeOffset)
}

func TestRecorder_UsesArrivalTime(t *testing.T) {
	var buf bytes.Buffer
	rec := NewWithWriter(&buf)
	require.NoError(t, rec.WriteHeader("", nil))

	at := rec.StartTime().Add(1500 * time.Millisecond)
	require.NoError(t, rec.Record(notify.Envelope{Type: "invite", ReceivedAt: at}))
	require.NoError(t, rec.Record(notify.Envelope{Type: "invite", ReceivedAt: rec.StartTime().Add(-time.Second)}))

	_, events, err := ReadRecording(&buf)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, events[0].TimeOffset, 0.001)
	assert.Equal(t, 0.0, events[1].TimeOffset)
}

func TestRecorder_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.jsonl")
	rec, err := Create(path)
	require.NoError(t, err)

	handler := rec.Handler(func(err error) { t.Errorf("record: %v", err) })
	require.NoError(t, rec.WriteHeader("ws://x/ws/notifications", nil))
	handler(json.RawMessage(`{"group_id":2}`), notify.Envelope{Type: "settlement_update", Data: json.RawMessage(`{"group_id":2}`)})
	require.NoError(t, rec.Close())

	_, events, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "settlement_update", events[0].Type)
}

func TestReadRecording_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad header", "not json\n"},
		{"wrong version", `{"version":9}` + "\n"},
		{"short event", `{"version":1}` + "\n" + `[0.5,"invite"]` + "\n"},
		{"bad offset", `{"version":1}` + "\n" + `["x","invite",null]` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadRecording(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}

	_, _, err := ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestReplay(t *testing.T) {
	events := []Event{
		{TimeOffset: 0, Type: "a"},
		{TimeOffset: 0.05, Type: "b"},
		{TimeOffset: 0.1, Type: "c"},
	}

	var got []string
	start := time.Now()
	require.NoError(t, Replay(context.Background(), events, 1, func(ev Event) { got = append(got, ev.Type) }))
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)

	got = nil
	require.NoError(t, Replay(context.Background(), events, 0, func(ev Event) { got = append(got, ev.Type) }))
	assert.Len(t, got, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Replay(ctx, []Event{{TimeOffset: 10, Type: "late"}}, 1, func(Event) { t.Fatal("must not be called") })
	assert.ErrorIs(t, err, context.Canceled)
}

// Any sequence of envelopes survives a write/read cycle in order.
func TestRecordingRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("events read back in order with their data", prop.ForAll(
		func(types []string, ids []int) bool {
			var buf bytes.Buffer
			rec := NewWithWriter(&buf)
			if err := rec.WriteHeader("", nil); err != nil {
				return false
			}
			n := len(types)
			if len(ids) < n {
				n = len(ids)
			}
			for i := 0; i < n; i++ {
				data, _ := json.Marshal(map[string]int{"id": ids[i]})
				if err := rec.Record(notify.Envelope{Type: types[i], Data: data}); err != nil {
					return false
				}
			}

			_, events, err := ReadRecording(&buf)
			if err != nil || len(events) != n {
				return false
			}
			for i, ev := range events {
				var got map[string]int
				if ev.Type != types[i] || json.Unmarshal(ev.Data, &got) != nil || got["id"] != ids[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.Int()),
	))

	properties.TestingRun(t)
}
