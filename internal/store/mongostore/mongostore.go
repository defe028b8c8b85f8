// Package mongostore stores forms in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/formapi/formapi/internal/model"
	"github.com/formapi/formapi/internal/store"
)

// Driver is the STORE_DRIVER value for this adapter.
const Driver = "mongo"

// Defaults applied when Config leaves them empty.
const (
	DefaultDatabase   = "mernform"
	DefaultCollection = "forms"
)

// Config describes how to reach the collection.
type Config struct {
	URI        string
	Database   string
	Collection string
	Options    store.Options
}

// Store is a MongoDB-backed form repository.
type Store struct {
	client  *mongo.Client
	coll    *mongo.Collection
	tracker *store.Tracker
	logger  *slog.Logger
	info    store.Info

	mu      sync.Mutex
	healthy map[string]bool
	closing bool
}

// formDocument is the stored shape of a form.
type formDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Message   string             `bson:"message"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *formDocument) toModel() *model.Form {
	return &model.Form{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Connect builds the client and pings the server once.
//
// An error is returned only when the client cannot be built (bad URI or
// options). An unreachable server is logged and leaves the store
// disconnected; the driver keeps monitoring and the store flips to
// connected once a heartbeat succeeds.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := cfg.Options
	if opts.ConnectTimeout <= 0 {
		opts = store.DefaultOptions()
	}

	s := &Store{
		tracker: store.NewTracker(Driver, logger),
		logger:  logger,
		info:    describe(cfg),
		healthy: make(map[string]bool),
	}
	s.tracker.Set(store.StateConnecting)

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ConnectTimeout).
		SetSocketTimeout(opts.SocketTimeout).
		SetServerMonitor(s.serverMonitor())
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(uint64(opts.MaxPoolSize))
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		s.tracker.Set(store.StateDisconnected)
		return nil, fmt.Errorf("failed to create mongo client: %s", store.Redact(err.Error(), cfg.URI))
	}

	s.client = client
	s.coll = client.Database(s.info.Database).Collection(collectionName(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		s.tracker.Set(store.StateDisconnected)
		logger.Error("store connection failed",
			slog.String("driver", Driver),
			slog.String("error", store.Redact(err.Error(), cfg.URI)),
			slog.String("hint", store.ConnectHint(err)),
		)
		logger.Warn("server will continue running; API endpoints report the store as unavailable until it is reachable")
		return s, nil
	}

	s.tracker.Set(store.StateConnected)
	logger.Info("store ready",
		slog.String("driver", Driver),
		slog.String("database", s.info.Database),
		slog.String("host", s.info.Host),
	)
	return s, nil
}

// serverMonitor keeps the tracker in sync with driver heartbeats.
func (s *Store) serverMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatSucceeded: func(e *event.ServerHeartbeatSucceededEvent) {
			s.heartbeat(e.ConnectionID, true)
		},
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			s.logger.Debug("store heartbeat failed",
				slog.String("connection_id", e.ConnectionID),
				slog.Any("error", e.Failure),
			)
			s.heartbeat(e.ConnectionID, false)
		},
	}
}

// heartbeat records a result per server address. The store counts as
// connected while at least one server answers.
func (s *Store) heartbeat(connectionID string, ok bool) {
	addr := serverAddress(connectionID)

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.healthy[addr] = ok
	anyHealthy := false
	for _, h := range s.healthy {
		if h {
			anyHealthy = true
			break
		}
	}
	s.mu.Unlock()

	if anyHealthy {
		s.tracker.Set(store.StateConnected)
	} else {
		s.tracker.Set(store.StateDisconnected)
	}
}

// serverAddress strips the per-connection suffix the driver appends,
// e.g. "db.example.net:27017[-4]".
func serverAddress(connectionID string) string {
	if i := strings.IndexByte(connectionID, '['); i >= 0 {
		return connectionID[:i]
	}
	return connectionID
}

// ReadyState implements store.StateSource.
func (s *Store) ReadyState() store.State {
	return s.tracker.ReadyState()
}

// Ping checks connectivity against the primary.
func (s *Store) Ping(ctx context.Context) error {
	return classify(s.client.Ping(ctx, readpref.Primary()))
}

// Info implements store.Store.
func (s *Store) Info() store.Info {
	return s.info
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	s.tracker.Set(store.StateDisconnecting)
	err := s.client.Disconnect(ctx)
	s.tracker.Set(store.StateDisconnected)
	if err != nil {
		return fmt.Errorf("failed to disconnect mongo client: %w", err)
	}
	return nil
}

// Insert implements store.FormRepository.
func (s *Store) Insert(ctx context.Context, f *model.Form) (*model.Form, error) {
	if err := store.CheckInsert(f); err != nil {
		return nil, err
	}

	now := timestamp()
	doc := formDocument{
		ID:        primitive.NewObjectID(),
		Name:      f.Name,
		Email:     f.Email,
		Message:   f.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert form: %w", classify(err))
	}

	return doc.toModel(), nil
}

// FindAll implements store.FormRepository.
func (s *Store) FindAll(ctx context.Context) ([]*model.Form, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", classify(err))
	}

	var docs []formDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode forms: %w", classify(err))
	}

	forms := make([]*model.Form, len(docs))
	for i := range docs {
		forms[i] = docs[i].toModel()
	}
	return forms, nil
}

// FindByID implements store.FormRepository.
func (s *Store) FindByID(ctx context.Context, id string) (*model.Form, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc formDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to get form: %w", classify(err))
	}
	return doc.toModel(), nil
}

// UpdateByID implements store.FormRepository. The patch is applied with a
// single findOneAndUpdate so concurrent updates never interleave fields.
func (s *Store) UpdateByID(ctx context.Context, id string, patch model.FormPatch) (*model.Form, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := store.CheckPatch(patch); err != nil {
		return nil, err
	}

	var doc formDocument
	if patch.IsEmpty() {
		err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	} else {
		err = s.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": setDocument(patch, timestamp())},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update form: %w", classify(err))
	}
	return doc.toModel(), nil
}

// DeleteByID implements store.FormRepository.
func (s *Store) DeleteByID(ctx context.Context, id string) (*model.Form, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc formDocument
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to delete form: %w", classify(err))
	}
	return doc.toModel(), nil
}

// setDocument builds the $set payload for a patch.
func setDocument(patch model.FormPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	for field, value := range patch.Fields() {
		set[field] = value
	}
	return set
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", store.ErrInvalidID, id)
	}
	return oid, nil
}

// classify maps driver errors onto store sentinels.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", store.ErrTimeout, err)
	case mongo.IsNetworkError(err), errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	default:
		return err
	}
}

// timestamp returns now at the precision BSON dates keep.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func describe(cfg Config) store.Info {
	info := store.Info{Driver: Driver, Database: cfg.Database}

	if parsed, err := url.Parse(cfg.URI); err == nil {
		info.Host = parsed.Host
		if info.Database == "" {
			info.Database = strings.TrimPrefix(parsed.Path, "/")
		}
	}
	if info.Database == "" {
		info.Database = DefaultDatabase
	}
	return info
}

func collectionName(cfg Config) string {
	if cfg.Collection != "" {
		return cfg.Collection
	}
	return DefaultCollection
}
