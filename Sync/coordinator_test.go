package Sync

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"Motorhouse/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeRemote is an in-memory RemoteStore that records every call and
// lets tests drive snapshot deliveries by hand.
type fakeRemote struct {
	mu        sync.Mutex
	delivers  map[string]func(docs []map[string]interface{})
	fails     map[string]func(error)
	upserts   []string
	deletes   []string
	upsertErr error
	deleteErr error
	seq       int64
	seqErr    error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		delivers: map[string]func(docs []map[string]interface{}){},
		fails:    map[string]func(error){},
	}
}

func (f *fakeRemote) Subscribe(ctx context.Context, coll string, deliver func(docs []map[string]interface{}), fail func(error)) (CancelFunc, error) {
	f.mu.Lock()
	f.delivers[coll] = deliver
	f.fails[coll] = fail
	f.mu.Unlock()
	return func() {}, nil
}

func (f *fakeRemote) Upsert(ctx context.Context, coll, id string, doc map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, coll+"/"+id)
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, coll, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, coll+"/"+id)
	return nil
}

func (f *fakeRemote) NextInvoiceSequence(ctx context.Context, year int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seqErr != nil {
		return 0, f.seqErr
	}
	f.seq++
	return f.seq, nil
}

func (f *fakeRemote) deliver(coll string, docs []map[string]interface{}) {
	f.mu.Lock()
	fn := f.delivers[coll]
	f.mu.Unlock()
	if fn != nil {
		fn(docs)
	}
}

func (f *fakeRemote) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts)
}

func newTestStore(t *testing.T) *Models.LocalStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Models.StoredSnapshot{}, &Models.CounterEntry{}))
	return Models.NewLocalStore(db)
}

// goOnline attaches the fake subscriptions and delivers one empty
// snapshot per collection, which is what flips the state to ONLINE.
func goOnline(t *testing.T, c *Coordinator, remote *fakeRemote) {
	t.Helper()
	require.NoError(t, c.StartSync(context.Background()))
	for _, coll := range Models.Collections {
		remote.deliver(coll, []map[string]interface{}{})
	}
	require.True(t, c.Online())
}

func TestCoordinatorStartsOffline(t *testing.T) {
	c := NewCoordinator(newTestStore(t), newFakeRemote())
	assert.Equal(t, StateOffline, c.State())
}

func TestSaveAssignsEnvelopeFields(t *testing.T) {
	c := NewCoordinator(newTestStore(t), nil)

	inv := &Models.Invoice{Customer: "Jane Birch", Type: Models.TypeInvoice}
	warn, err := c.Save(context.Background(), Models.CollInvoices, inv)
	require.NoError(t, err)
	assert.Empty(t, warn)

	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, Models.SchemaVersion, inv.SchemaVersion)
	assert.NotEmpty(t, inv.CreatedAt)
}

func TestSavePrependsNewRecords(t *testing.T) {
	c := NewCoordinator(newTestStore(t), nil)
	ctx := context.Background()

	first := &Models.Invoice{Customer: "First"}
	second := &Models.Invoice{Customer: "Second"}
	_, err := c.Save(ctx, Models.CollInvoices, first)
	require.NoError(t, err)
	_, err = c.Save(ctx, Models.CollInvoices, second)
	require.NoError(t, err)

	c.View(func(snap *Models.Snapshot) {
		require.Len(t, snap.Invoices, 2)
		assert.Equal(t, "Second", snap.Invoices[0].Customer)
		assert.Equal(t, "First", snap.Invoices[1].Customer)
	})
}

func TestSaveReplacesExistingInPlace(t *testing.T) {
	c := NewCoordinator(newTestStore(t), nil)
	ctx := context.Background()

	first := &Models.Invoice{Customer: "First"}
	second := &Models.Invoice{Customer: "Second"}
	_, err := c.Save(ctx, Models.CollInvoices, first)
	require.NoError(t, err)
	_, err = c.Save(ctx, Models.CollInvoices, second)
	require.NoError(t, err)

	edited := *first
	edited.Customer = "First (edited)"
	edited.CreatedAt = ""
	_, err = c.Save(ctx, Models.CollInvoices, &edited)
	require.NoError(t, err)

	c.View(func(snap *Models.Snapshot) {
		require.Len(t, snap.Invoices, 2)
		assert.Equal(t, "Second", snap.Invoices[0].Customer)
		assert.Equal(t, "First (edited)", snap.Invoices[1].Customer)
	})

	// createdAt is assigned once and survives edits
	assert.Equal(t, first.CreatedAt, edited.CreatedAt)
}

func TestSavePersistsLocally(t *testing.T) {
	store := newTestStore(t)
	c := NewCoordinator(store, nil)

	inv := &Models.Invoice{Customer: "Persisted"}
	_, err := c.Save(context.Background(), Models.CollInvoices, inv)
	require.NoError(t, err)

	snap, err := store.LoadSnapshot()
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Invoices, 1)
	assert.Equal(t, "Persisted", snap.Invoices[0].Customer)
}

func TestSaveOfflineNeverTouchesRemote(t *testing.T) {
	remote := newFakeRemote()
	c := NewCoordinator(newTestStore(t), remote)

	_, err := c.Save(context.Background(), Models.CollInvoices, &Models.Invoice{Customer: "Offline"})
	require.NoError(t, err)
	assert.Zero(t, remote.upsertCount())
}

func TestSaveOnlinePushesRemote(t *testing.T) {
	remote := newFakeRemote()
	c := NewCoordinator(newTestStore(t), remote)
	goOnline(t, c, remote)

	inv := &Models.Invoice{Customer: "Online"}
	warn, err := c.Save(context.Background(), Models.CollInvoices, inv)
	require.NoError(t, err)
	assert.Empty(t, warn)

	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.Len(t, remote.upserts, 1)
	assert.Equal(t, Models.CollInvoices+"/"+inv.ID, remote.upserts[0])
}

func TestSaveRemoteFailureIsWarningNotError(t *testing.T) {
	remote := newFakeRemote()
	c := NewCoordinator(newTestStore(t), remote)
	goOnline(t, c, remote)

	remote.mu.Lock()
	remote.upsertErr = fmt.Errorf("deadline exceeded")
	remote.mu.Unlock()

	inv := &Models.Invoice{Customer: "Flaky"}
	warn, err := c.Save(context.Background(), Models.CollInvoices, inv)
	require.NoError(t, err)
	assert.Contains(t, warn, "cloud update failed")

	// local write stands
	c.View(func(snap *Models.Snapshot) {
		require.Len(t, snap.Invoices, 1)
		assert.Equal(t, "Flaky", snap.Invoices[0].Customer)
	})
}

func TestDeleteRemovesLocallyAndRemotelyWhenOnline(t *testing.T) {
	remote := newFakeRemote()
	c := NewCoordinator(newTestStore(t), remote)
	goOnline(t, c, remote)

	inv := &Models.Invoice{Customer: "Doomed"}
	_, err := c.Save(context.Background(), Models.CollInvoices, inv)
	require.NoError(t, err)

	warn, err := c.Delete(context.Background(), Models.CollInvoices, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, warn)

	c.View(func(snap *Models.Snapshot) {
		assert.Empty(t, snap.Invoices)
	})

	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.Len(t, remote.deletes, 1)
	assert.Equal(t, Models.CollInvoices+"/"+inv.ID, remote.deletes[0])
}

func TestDeleteOfflineSkipsRemote(t *testing.T) {
	remote := newFakeRemote()
	c := NewCoordinator(newTestStore(t), remote)

	inv := &Models.Invoice{Customer: "Doomed"}
	_, err := c.Save(context.Background(), Models.CollInvoices, inv)
	require.NoError(t, err)

	_, err = c.Delete(context.Background(), Models.CollInvoices, inv.ID)
	require.NoError(t, err)

	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Empty(t, remote.deletes)
}

func TestDeleteUnknownRecordFails(t *testing.T) {
	c := NewCoordinator(newTestStore(t), nil)
	_, err := c.Delete(context.Background(), Models.CollInvoices, "no-such-id")
	assert.Error(t, err)
}

func TestRemoteDeliveryReplacesCollection(t *testing.T) {
	remote := newFakeRemote()
	c := NewCoordinator(newTestStore(t), remote)
	require.NoError(t, c.StartSync(context.Background()))

	remote.deliver(Models.CollCustomers, []map[string]interface{}{
		{"id": "c1", "name": "Cloud Customer", "schemaVersion": 1},
	})

	assert.True(t, c.Online())
	c.View(func(snap *Models.Snapshot) {
		require.Len(t, snap.Customers, 1)
		assert.Equal(t, "Cloud Customer", snap.Customers[0].Name)
	})
}

func TestGoOfflineDropsLateDeliveries(t *testing.T) {
	remote := newFakeRemote()
	c := NewCoordinator(newTestStore(t), remote)
	goOnline(t, c, remote)

	c.GoOffline()
	assert.Equal(t, StateOffline, c.State())

	// A delivery from the detached subscription set must not land.
	remote.deliver(Models.CollCustomers, []map[string]interface{}{
		{"id": "zombie", "name": "Zombie", "schemaVersion": 1},
	})

	assert.Equal(t, StateOffline, c.State())
	c.View(func(snap *Models.Snapshot) {
		assert.Empty(t, snap.Customers)
	})
}

func TestGoOfflineLoadsLocalSnapshot(t *testing.T) {
	store := newTestStore(t)
	remote := newFakeRemote()
	c := NewCoordinator(store, remote)

	inv := &Models.Invoice{Customer: "Local Copy"}
	_, err := c.Save(context.Background(), Models.CollInvoices, inv)
	require.NoError(t, err)

	goOnline(t, c, remote)
	// The empty online deliveries wiped the in-memory collection.
	c.View(func(snap *Models.Snapshot) {
		assert.Empty(t, snap.Invoices)
	})

	c.GoOffline()
	c.View(func(snap *Models.Snapshot) {
		require.Len(t, snap.Invoices, 1)
		assert.Equal(t, "Local Copy", snap.Invoices[0].Customer)
	})
}

func TestSubscriptionFailureFlipsOffline(t *testing.T) {
	remote := newFakeRemote()
	c := NewCoordinator(newTestStore(t), remote)
	goOnline(t, c, remote)

	remote.mu.Lock()
	fail := remote.fails[Models.CollInvoices]
	remote.mu.Unlock()
	fail(fmt.Errorf("listener broke"))

	assert.Equal(t, StateOffline, c.State())
}

func TestHardResetWipesLocalData(t *testing.T) {
	store := newTestStore(t)
	c := NewCoordinator(store, nil)

	_, err := c.Save(context.Background(), Models.CollInvoices, &Models.Invoice{Customer: "Gone"})
	require.NoError(t, err)

	require.NoError(t, c.HardReset())

	c.View(func(snap *Models.Snapshot) {
		assert.Empty(t, snap.Invoices)
	})
	snap, err := store.LoadSnapshot()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestOnChangeFires(t *testing.T) {
	c := NewCoordinator(newTestStore(t), nil)

	var changed []string
	c.SetOnChange(func(coll string) { changed = append(changed, coll) })

	_, err := c.Save(context.Background(), Models.CollFleet, &Models.FleetVehicle{Make: "Ford", VRM: "AB12CDE"})
	require.NoError(t, err)
	assert.Equal(t, []string{Models.CollFleet}, changed)
}
