package core

import "fmt"

// ImportResult tallies the outcome of a bulk import run.
type ImportResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Errored  int `json:"errored"`
}

func (r *ImportResult) Add(other ImportResult) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Errored += other.Errored
}

func (r ImportResult) String() string {
	return fmt.Sprintf("inserted=%d updated=%d skipped=%d errored=%d", r.Inserted, r.Updated, r.Skipped, r.Errored)
}
