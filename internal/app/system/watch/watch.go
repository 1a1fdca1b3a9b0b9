// internal/app/system/watch/watch.go

// Package watch exposes MongoDB change streams as a small subscription
// abstraction. Callers open a Stream on a collection, range over Events(),
// and Close it when done; there is no hidden callback registry and no
// automatic reconnect. A consumer that needs to survive a dropped stream
// re-subscribes and re-reads current state itself.
package watch

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Event is one change observed on a watched collection.
type Event struct {
	// Operation is the change stream operationType: insert, update,
	// replace, delete.
	Operation string
	// Document is the post-image of the changed document (nil for deletes).
	Document bson.Raw
	// DocumentKey holds the _id of the changed document.
	DocumentKey bson.Raw
}

// Stream is a live subscription to one collection's changes.
type Stream struct {
	events chan Event
	cancel context.CancelFunc
	done   chan struct{}

	err error
}

// Collection opens a change stream on coll. Updates are delivered with the
// full post-image (UpdateLookup). The stream ends when ctx is cancelled,
// Close is called, or the server drops it; Err reports why after Events()
// is closed.
func Collection(ctx context.Context, coll *mongo.Collection, log *zap.Logger) (*Stream, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	cs, err := coll.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		events: make(chan Event),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.pump(ctx, cs, coll.Name(), log)
	return s, nil
}

// Events returns the channel of changes. It is closed when the stream ends.
func (s *Stream) Events() <-chan Event { return s.events }

// Err reports why the stream ended, nil for a clean Close. Only valid
// after Events() has been closed.
func (s *Stream) Err() error {
	<-s.done
	return s.err
}

// Close ends the subscription and waits for the pump goroutine to exit.
func (s *Stream) Close() {
	s.cancel()
	<-s.done
}

func (s *Stream) pump(ctx context.Context, cs *mongo.ChangeStream, coll string, log *zap.Logger) {
	defer close(s.done)
	defer close(s.events)
	defer cs.Close(context.Background())

	for cs.Next(ctx) {
		var change struct {
			OperationType string   `bson:"operationType"`
			FullDocument  bson.Raw `bson:"fullDocument"`
			DocumentKey   bson.Raw `bson:"documentKey"`
		}
		if err := cs.Decode(&change); err != nil {
			log.Warn("change stream decode failed",
				zap.String("collection", coll), zap.Error(err))
			continue
		}
		ev := Event{
			Operation:   change.OperationType,
			Document:    change.FullDocument,
			DocumentKey: change.DocumentKey,
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}

	if err := cs.Err(); err != nil && ctx.Err() == nil {
		s.err = err
		log.Warn("change stream ended",
			zap.String("collection", coll), zap.Error(err))
	}
}
