// Package mongostore keeps studios, rooms, profiles, availability and bookings in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"punchin/internal/domain"
)

const (
	studiosCollection      = "studios"
	roomsCollection        = "rooms"
	profilesCollection     = "profiles"
	availabilityCollection = "availability"
	bookingsCollection     = "bookings"
)

type Store struct {
	client       *mongo.Client
	studios      *mongo.Collection
	rooms        *mongo.Collection
	profiles     *mongo.Collection
	availability *mongo.Collection
	bookings     *mongo.Collection
	currency     string
	log          *zap.Logger
}

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// New binds a store to database dbName. currency fills in bookings priced without one.
func New(client *mongo.Client, dbName, currency string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	db := client.Database(dbName)
	return &Store{
		client:       client,
		studios:      db.Collection(studiosCollection),
		rooms:        db.Collection(roomsCollection),
		profiles:     db.Collection(profilesCollection),
		availability: db.Collection(availabilityCollection),
		bookings:     db.Collection(bookingsCollection),
		currency:     currency,
		log:          log,
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.rooms: {
			{Keys: bson.D{{Key: "studioId", Value: 1}}, Options: options.Index().SetName("studio_idx")},
		},
		s.availability: {
			{Keys: bson.D{{Key: "scope", Value: 1}, {Key: "ownerId", Value: 1}}, Options: options.Index().SetName("scope_owner_idx")},
		},
		s.bookings: {
			{Keys: bson.D{{Key: "studioId", Value: 1}, {Key: "roomId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("studio_room_status_idx")},
			{Keys: bson.D{{Key: "engineerId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("engineer_status_idx")},
			{Keys: bson.D{{Key: "artistId", Value: 1}}, Options: options.Index().SetName("artist_idx")},
		},
	}
	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) FetchStudios(ctx context.Context) ([]domain.Studio, error) {
	cursor, err := s.studios.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("fetch studios: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []studioDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode studios: %w", err)
	}
	out := make([]domain.Studio, 0, len(docs))
	for _, d := range docs {
		out = append(out, decodeStudio(d))
	}
	return out, nil
}

func (s *Store) LoadStudio(ctx context.Context, id string) (*domain.Studio, error) {
	var d studioDoc
	if err := s.studios.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, notFound("studio", id, err)
	}
	studio := decodeStudio(d)
	return &studio, nil
}

func (s *Store) SaveStudio(ctx context.Context, studio *domain.Studio) error {
	stamp(&studio.CreatedAt, &studio.UpdatedAt)
	_, err := s.studios.ReplaceOne(ctx, bson.M{"_id": studio.ID}, encodeStudio(*studio), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save studio: %w", err)
	}
	return nil
}

func (s *Store) FetchRooms(ctx context.Context, studioID string) ([]domain.Room, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "name", Value: 1}})
	cursor, err := s.rooms.Find(ctx, bson.M{"studioId": studioID}, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []roomDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	out := make([]domain.Room, 0, len(docs))
	for _, d := range docs {
		out = append(out, decodeRoom(d))
	}
	return out, nil
}

func (s *Store) SaveRoom(ctx context.Context, room *domain.Room) error {
	stamp(&room.CreatedAt, &room.UpdatedAt)
	_, err := s.rooms.ReplaceOne(ctx, bson.M{"_id": room.ID}, encodeRoom(*room), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save room: %w", err)
	}
	return nil
}

func (s *Store) FetchUserProfiles(ctx context.Context, ids []string) ([]domain.UserProfile, error) {
	if len(ids) == 0 {
		return []domain.UserProfile{}, nil
	}
	cursor, err := s.profiles.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []profileDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	out := make([]domain.UserProfile, 0, len(docs))
	for _, d := range docs {
		out = append(out, decodeProfile(d))
	}
	return out, nil
}

func (s *Store) SaveProfile(ctx context.Context, p *domain.UserProfile) error {
	stamp(&p.CreatedAt, &p.UpdatedAt)
	_, err := s.profiles.ReplaceOne(ctx, bson.M{"_id": p.ID}, encodeProfile(*p), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// FetchAvailability skips documents that fail to decode.
func (s *Store) FetchAvailability(ctx context.Context, scope domain.AvailabilityScope, ownerID string) ([]domain.AvailabilityEntry, error) {
	cursor, err := s.availability.Find(ctx, bson.M{"scope": string(scope), "ownerId": ownerID})
	if err != nil {
		return nil, fmt.Errorf("fetch availability: %w", err)
	}
	defer cursor.Close(ctx)

	out := []domain.AvailabilityEntry{}
	for cursor.Next(ctx) {
		var d availabilityDoc
		if err := cursor.Decode(&d); err != nil {
			s.log.Warn("skipping undecodable availability document", zap.Error(err))
			continue
		}
		e, err := decodeAvailability(d)
		if err != nil {
			s.log.Warn("skipping availability entry", zap.String("id", d.ID), zap.Error(err))
			continue
		}
		out = append(out, e)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability: %w", err)
	}
	return out, nil
}

func (s *Store) LoadAvailability(ctx context.Context, id string) (*domain.AvailabilityEntry, error) {
	var d availabilityDoc
	if err := s.availability.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, notFound("availability", id, err)
	}
	e, err := decodeAvailability(d)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) CreateAvailability(ctx context.Context, e *domain.AvailabilityEntry) error {
	if _, err := s.availability.InsertOne(ctx, encodeAvailability(*e)); err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

func (s *Store) DeleteAvailability(ctx context.Context, id string) error {
	res, err := s.availability.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("availability %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

var participantFields = map[domain.ParticipantRole]string{
	domain.ParticipantArtist:   "artistId",
	domain.ParticipantStudio:   "studioId",
	domain.ParticipantEngineer: "engineerId",
}

func (s *Store) FetchBookings(ctx context.Context, participantID string, role domain.ParticipantRole) ([]domain.Booking, error) {
	field, ok := participantFields[role]
	if !ok {
		return nil, fmt.Errorf("fetch bookings: unknown role %q", role)
	}
	opts := options.Find().SetSort(bson.D{{Key: "requestedStart", Value: -1}})
	return s.findBookings(ctx, bson.M{field: participantID}, opts)
}

func (s *Store) findBookings(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.Booking, error) {
	cursor, err := s.bookings.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("fetch bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	out := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, decodeBooking(d, s.currency))
	}
	return out, nil
}

func (s *Store) LoadBooking(ctx context.Context, id string) (*domain.Booking, error) {
	var d bookingDoc
	if err := s.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, notFound("booking", id, err)
	}
	b := decodeBooking(d, s.currency)
	return &b, nil
}

// CreateBooking rejects b when a committed live booking holds the same room or engineer
// for an overlapping window, then inserts it. The check reads the transaction snapshot, so
// two concurrent overlapping inserts are not caught here; callers serialize on the booking
// locks first. Transactions need a replica set or sharded cluster.
func (s *Store) CreateBooking(ctx context.Context, b *domain.Booking) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		holders := bson.A{bson.M{"studioId": b.StudioID, "roomId": b.RoomID}}
		if b.EngineerID != "" {
			holders = append(holders, bson.M{"engineerId": b.EngineerID})
		}
		live, err := s.findBookings(sc, bson.M{"status": bson.M{"$in": liveStatuses()}, "$or": holders})
		if err != nil {
			return nil, err
		}
		start, end := b.EffectiveWindow()
		for _, existing := range live {
			if existing.ID != b.ID && existing.OverlapsWindow(start, end) {
				return nil, domain.ErrBookingConflict
			}
		}
		_, err = s.bookings.InsertOne(sc, encodeBooking(*b))
		return nil, err
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrBookingConflict), mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("create booking %s: %w", b.ID, domain.ErrBookingConflict)
	default:
		return fmt.Errorf("create booking: %w", err)
	}
}

func (s *Store) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	_, err := s.bookings.ReplaceOne(ctx, bson.M{"_id": b.ID}, encodeBooking(*b), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

func liveStatuses() bson.A {
	out := bson.A{}
	for _, st := range domain.LiveBookingStatuses {
		out = append(out, string(st))
	}
	return out
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", kind, err)
}

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
