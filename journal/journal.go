// Package journal records sweep outcomes in an embedded buntdb store.
package journal

import (
	"encoding/json"
	"time"

	"github.com/tidwall/buntdb"
)

// Outcome is the recorded result of checking one client.
type Outcome struct {
	Interface  string
	Hostname   string
	ResolvedIP string `json:",omitempty"`
	Changed    bool
	Reset      bool
	Err        string `json:",omitempty"`
	CheckedAt  time.Time
}

// Summary describes one whole sweep.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Clients    int
	Resets     int
	Failures   int
}

// Journal persists sweep outcomes. A nil Journal discards everything, so
// callers need not special-case a disabled journal.
type Journal struct {
	db *buntdb.DB
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}

// RecordOutcome stores the latest outcome for one interface.
func (j *Journal) RecordOutcome(o Outcome) error {
	if j == nil {
		return nil
	}
	data, err := json.Marshal(o)
	if err != nil {
		panic(err)
	}
	return j.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set("iface:"+o.Interface, string(data), nil)
		return err
	})
}

// RecordSummary stores the summary of the last completed sweep.
func (j *Journal) RecordSummary(s Summary) error {
	if j == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return j.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set("sweep:last", string(data), nil)
		return err
	})
}

// LastSummary returns the summary of the last completed sweep, if any.
func (j *Journal) LastSummary() (Summary, bool, error) {
	if j == nil {
		return Summary{}, false, nil
	}
	var s Summary
	var found bool
	err := j.db.View(func(tx *buntdb.Tx) error {
		val, err := tx.Get("sweep:last")
		if err == buntdb.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return json.Unmarshal([]byte(val), &s)
	})
	return s, found, err
}

// Outcomes returns the latest outcome recorded for every interface.
func (j *Journal) Outcomes() ([]Outcome, error) {
	if j == nil {
		return nil, nil
	}
	var out []Outcome
	err := j.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys("iface:*", func(key, val string) bool {
			var o Outcome
			if err := json.Unmarshal([]byte(val), &o); err == nil {
				out = append(out, o)
			}
			return true
		})
	})
	return out, err
}
