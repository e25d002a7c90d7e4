package Sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"Motorhouse/Models"

	"github.com/google/uuid"
)

// State is the connectivity state of the coordinator.
type State string

const (
	StateOnline  State = "ONLINE"
	StateOffline State = "OFFLINE"
)

// Coordinator owns the in-memory snapshot and reconciles it with the
// local store and the remote store. All mutation goes through Save,
// Delete or a remote snapshot delivery; the mutex serializes them.
//
// Policy: the local write always succeeds; the remote push is
// best-effort and a failure is surfaced as a warning, never rolled
// back or reconciled later.
type Coordinator struct {
	mu     sync.RWMutex
	local  *Models.LocalStore
	remote RemoteStore

	state    State
	snapshot *Models.Snapshot
	cancels  []CancelFunc
	// gen invalidates in-flight deliveries from a detached
	// subscription set (zombie update hazard).
	gen uint64

	onChange func(coll string)
}

// NewCoordinator starts OFFLINE with the last locally persisted
// snapshot, if any.
func NewCoordinator(local *Models.LocalStore, remote RemoteStore) *Coordinator {
	c := &Coordinator{
		local:    local,
		remote:   remote,
		state:    StateOffline,
		snapshot: Models.NewSnapshot(),
	}
	if snap, err := c.local.LoadSnapshot(); err != nil {
		log.Printf("Could not load local snapshot: %v", err)
	} else if snap != nil {
		c.snapshot = snap
	}
	return c
}

// SetOnChange registers a hook fired after any collection changes.
// An empty collection name means the whole snapshot changed.
func (c *Coordinator) SetOnChange(fn func(coll string)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Coordinator) notify(coll string) {
	c.mu.RLock()
	fn := c.onChange
	c.mu.RUnlock()
	if fn != nil {
		fn(coll)
	}
}

// State returns the current connectivity state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Online reports whether remote pushes are attempted.
func (c *Coordinator) Online() bool {
	return c.State() == StateOnline
}

// StartSync attaches one real-time subscription per collection. The
// state flips to ONLINE on the first successful delivery; any
// subscription failure drops back to OFFLINE.
func (c *Coordinator) StartSync(ctx context.Context) error {
	if c.remote == nil {
		return fmt.Errorf("no remote store configured")
	}

	c.mu.Lock()
	c.detachLocked()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	for _, coll := range Models.Collections {
		coll := coll
		cancel, err := c.remote.Subscribe(ctx, coll,
			func(docs []map[string]interface{}) {
				c.applyRemote(gen, coll, docs)
			},
			func(err error) {
				log.Printf("Subscription error on %s: %v", coll, err)
				c.GoOffline()
			},
		)
		if err != nil {
			c.GoOffline()
			return fmt.Errorf("subscribe %s: %w", coll, err)
		}
		c.mu.Lock()
		c.cancels = append(c.cancels, cancel)
		c.mu.Unlock()
	}
	return nil
}

// applyRemote replaces one collection wholesale from a remote snapshot
// delivery. Deliveries from a superseded subscription set are dropped.
func (c *Coordinator) applyRemote(gen uint64, coll string, docs []map[string]interface{}) {
	raw, err := json.Marshal(docs)
	if err != nil {
		log.Printf("Could not encode %s delivery: %v", coll, err)
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	if err := c.snapshot.ReplaceCollection(coll, raw); err != nil {
		c.mu.Unlock()
		log.Printf("Could not apply %s delivery: %v", coll, err)
		return
	}
	c.state = StateOnline
	c.mu.Unlock()

	c.notify(coll)
}

// GoOffline synchronously detaches every subscription, then loads the
// last-known local snapshot. A snapshot that fails to parse leaves the
// in-memory state unchanged.
func (c *Coordinator) GoOffline() {
	c.mu.Lock()
	c.detachLocked()
	c.gen++
	c.state = StateOffline
	c.mu.Unlock()

	if snap, err := c.local.LoadSnapshot(); err != nil {
		log.Printf("Could not load local snapshot: %v", err)
	} else if snap != nil {
		c.mu.Lock()
		c.snapshot = snap
		c.mu.Unlock()
	}

	c.notify("")
}

func (c *Coordinator) detachLocked() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
}

// View runs fn with read access to the snapshot.
func (c *Coordinator) View(fn func(snap *Models.Snapshot)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.snapshot)
}

// Save runs the write path: assign id, stamp schema version and
// createdAt (first-write-wins), upsert in memory, persist the whole
// snapshot locally, then push the single document remotely when
// online. A remote failure comes back as a non-empty warning; the
// local write stands regardless.
func (c *Coordinator) Save(ctx context.Context, coll string, rec Models.Record) (warn string, err error) {
	c.mu.Lock()
	if rec.GetID() == "" {
		rec.SetID(uuid.NewString())
	}
	rec.StampSchemaVersion()
	if rec.GetCreatedAt() == "" {
		if existing := c.snapshot.Find(coll, rec.GetID()); existing != nil && existing.GetCreatedAt() != "" {
			rec.SetCreatedAt(existing.GetCreatedAt())
		} else {
			rec.SetCreatedAt(time.Now().UTC().Format(time.RFC3339))
		}
	}
	if err := c.snapshot.Upsert(coll, rec); err != nil {
		c.mu.Unlock()
		return "", err
	}
	persistErr := c.local.SaveSnapshot(c.snapshot)
	online := c.state == StateOnline
	c.mu.Unlock()

	if persistErr != nil {
		return "", fmt.Errorf("persist snapshot: %w", persistErr)
	}

	if online && c.remote != nil {
		doc, derr := recordToDoc(rec)
		if derr != nil {
			warn = fmt.Sprintf("saved locally, cloud update skipped: %v", derr)
		} else if rerr := c.remote.Upsert(ctx, coll, rec.GetID(), doc); rerr != nil {
			log.Printf("Remote upsert failed for %s/%s: %v", coll, rec.GetID(), rerr)
			warn = fmt.Sprintf("saved locally, cloud update failed: %v", rerr)
		}
	}

	c.notify(coll)
	return warn, nil
}

// Delete removes a record from memory and the local store, and from
// the remote store when online. Confirmation is the caller's job.
func (c *Coordinator) Delete(ctx context.Context, coll, id string) (warn string, err error) {
	c.mu.Lock()
	removed := c.snapshot.Remove(coll, id)
	var persistErr error
	if removed {
		persistErr = c.local.SaveSnapshot(c.snapshot)
	}
	online := c.state == StateOnline
	c.mu.Unlock()

	if !removed {
		return "", fmt.Errorf("record %s/%s not found", coll, id)
	}
	if persistErr != nil {
		return "", fmt.Errorf("persist snapshot: %w", persistErr)
	}

	if online && c.remote != nil {
		if rerr := c.remote.Delete(ctx, coll, id); rerr != nil {
			log.Printf("Remote delete failed for %s/%s: %v", coll, id, rerr)
			warn = fmt.Sprintf("deleted locally, cloud delete failed: %v", rerr)
		}
	}

	c.notify(coll)
	return warn, nil
}

// HardReset wipes the in-memory and locally stored snapshot. Remote
// data is untouched.
func (c *Coordinator) HardReset() error {
	c.mu.Lock()
	c.snapshot = Models.NewSnapshot()
	err := c.local.ClearSnapshot()
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.notify("")
	return nil
}

// recordToDoc converts a record into the map payload a merge-upsert
// expects.
func recordToDoc(rec Models.Record) (map[string]interface{}, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
