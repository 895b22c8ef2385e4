package syncwindow

import (
	"testing"
	"time"
)

func TestParsePayload(t *testing.T) {
	cases := []struct {
		payload string
		want    Event
		wantErr bool
	}{
		{payload: "start:25", want: Event{Kind: EventStart, Minutes: 25}},
		{payload: "START:5", want: Event{Kind: EventStart, Minutes: 5}},
		{payload: " start ", want: Event{Kind: EventStart}},
		{payload: "stop", want: Event{Kind: EventStop}},
		{payload: "Stop\n", want: Event{Kind: EventStop}},
		{payload: "start:0", wantErr: true},
		{payload: "start:-5", wantErr: true},
		{payload: "start:soon", wantErr: true},
		{payload: "pause", wantErr: true},
		{payload: "", wantErr: true},
	}
	for _, tc := range cases {
		event, err := ParsePayload(tc.payload)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePayload(%q): expected error", tc.payload)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePayload(%q) failed: %v", tc.payload, err)
			continue
		}
		if event != tc.want {
			t.Errorf("ParsePayload(%q) = %+v, want %+v", tc.payload, event, tc.want)
		}
	}
}

func TestWindowActiveAt(t *testing.T) {
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	inactive := Window{}
	if inactive.ActiveAt(now) {
		t.Fatal("zero window should be inactive")
	}

	bounded := Window{Active: true, ExpiresAt: now.Add(10 * time.Minute)}
	if !bounded.ActiveAt(now) {
		t.Fatal("window should be active before expiry")
	}
	if bounded.ActiveAt(now.Add(10 * time.Minute)) {
		t.Fatal("window should be inactive at expiry")
	}
	if got := bounded.Remaining(now.Add(4 * time.Minute)); got != 6*time.Minute {
		t.Fatalf("expected 6m remaining, got %v", got)
	}

	openEnded := Window{Active: true}
	if !openEnded.ActiveAt(now.Add(100 * time.Hour)) {
		t.Fatal("open-ended window should stay active")
	}
	if openEnded.Remaining(now) != 0 {
		t.Fatal("open-ended window has no finite remaining duration")
	}
}
