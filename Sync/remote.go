package Sync

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CancelFunc detaches one collection subscription. Safe to call more
// than once.
type CancelFunc func()

// RemoteStore wraps the real-time document database the coordinator
// mirrors into. Implemented by FirestoreStore in production and by
// fakes in tests.
type RemoteStore interface {
	// Subscribe attaches a real-time listener to a collection, ordered
	// by creation time descending. Every delivery carries the full
	// collection snapshot. fail is invoked once on a listener error,
	// after which no further deliveries occur.
	Subscribe(ctx context.Context, coll string, deliver func(docs []map[string]interface{}), fail func(error)) (CancelFunc, error)

	// Upsert writes a single document with merge semantics: remote
	// fields absent from the payload are preserved.
	Upsert(ctx context.Context, coll, id string, doc map[string]interface{}) error

	// Delete removes a single document.
	Delete(ctx context.Context, coll, id string) error

	// NextInvoiceSequence atomically increments the year-scoped
	// invoice counter and returns the new value.
	NextInvoiceSequence(ctx context.Context, year int) (int64, error)
}

// FirestoreStore is the production RemoteStore backed by Cloud
// Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initializes the Firebase app and its Firestore
// client from a service account key file.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %v", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %v", err)
	}

	return &FirestoreStore{client: client}, nil
}

// Close releases the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) Subscribe(ctx context.Context, coll string, deliver func(docs []map[string]interface{}), fail func(error)) (CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	snaps := s.client.Collection(coll).OrderBy("createdAt", firestore.Desc).Snapshots(ctx)

	go func() {
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				fail(err)
				return
			}

			var docs []map[string]interface{}
			iter := snap.Documents
			for {
				d, err := iter.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					fail(err)
					return
				}
				doc := d.Data()
				doc["id"] = d.Ref.ID
				docs = append(docs, doc)
			}
			deliver(docs)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			snaps.Stop()
		})
	}, nil
}

func (s *FirestoreStore) Upsert(ctx context.Context, coll, id string, doc map[string]interface{}) error {
	_, err := s.client.Collection(coll).Doc(id).Set(ctx, doc, firestore.MergeAll)
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, coll, id string) error {
	_, err := s.client.Collection(coll).Doc(id).Delete(ctx)
	return err
}

// NextInvoiceSequence increments meta/invCounter_<year> inside a
// transaction so no two devices can observe the same value.
func (s *FirestoreStore) NextInvoiceSequence(ctx context.Context, year int) (int64, error) {
	ref := s.client.Collection("meta").Doc(fmt.Sprintf("invCounter_%d", year))

	var next int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current int64
		snap, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if err == nil {
			if v, err := snap.DataAt("value"); err == nil {
				switch n := v.(type) {
				case int64:
					current = n
				case float64:
					current = int64(n)
				}
			}
		}
		next = current + 1
		return tx.Set(ref, map[string]interface{}{"value": next}, firestore.MergeAll)
	})
	if err != nil {
		return 0, fmt.Errorf("invoice counter transaction failed: %w", err)
	}
	return next, nil
}
