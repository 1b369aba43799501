package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open: %s", err)
	}
	defer j.Close()

	now := time.Now().Round(0).UTC()
	o := Outcome{
		Interface:  "wg0",
		Hostname:   "vpn.example.com",
		ResolvedIP: "10.0.0.2",
		Changed:    true,
		Reset:      true,
		CheckedAt:  now,
	}
	if err := j.RecordOutcome(o); err != nil {
		t.Fatalf("record outcome: %s", err)
	}
	sum := Summary{StartedAt: now, FinishedAt: now, Clients: 1, Resets: 1}
	if err := j.RecordSummary(sum); err != nil {
		t.Fatalf("record summary: %s", err)
	}

	got, ok, err := j.LastSummary()
	if err != nil {
		t.Fatalf("last summary: %s", err)
	}
	if !ok {
		t.Fatal("summary not found")
	}
	if diff := cmp.Diff(sum, got); diff != "" {
		t.Fatalf("summary mismatch:\n%s", diff)
	}
	outcomes, err := j.Outcomes()
	if err != nil {
		t.Fatalf("outcomes: %s", err)
	}
	if diff := cmp.Diff([]Outcome{o}, outcomes); diff != "" {
		t.Fatalf("outcomes mismatch:\n%s", diff)
	}
}

func TestOutcomeOverwrite(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open: %s", err)
	}
	defer j.Close()
	if err := j.RecordOutcome(Outcome{Interface: "wg0", Hostname: "a.example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := j.RecordOutcome(Outcome{Interface: "wg0", Hostname: "b.example.com"}); err != nil {
		t.Fatal(err)
	}
	outcomes, err := j.Outcomes()
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 1 || outcomes[0].Hostname != "b.example.com" {
		t.Fatalf("want latest outcome only, got %v", outcomes)
	}
}

func TestNilJournal(t *testing.T) {
	var j *Journal
	if err := j.RecordOutcome(Outcome{Interface: "wg0"}); err != nil {
		t.Fatal(err)
	}
	if err := j.RecordSummary(Summary{}); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := j.LastSummary(); ok || err != nil {
		t.Fatal("nil journal must report nothing")
	}
	if out, err := j.Outcomes(); out != nil || err != nil {
		t.Fatal("nil journal must report nothing")
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
}
