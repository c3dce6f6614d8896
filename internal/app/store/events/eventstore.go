package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LatestLimit caps the number of events Latest returns.
const LatestLimit = 6

// emailCollation compares emails ignoring case.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// Conn hands out the events collection, connecting on first use.
type Conn interface {
	Events(ctx context.Context) (*mongo.Collection, error)
}

type Store struct {
	conn Conn
	now  func() time.Time
}

func New(conn Conn) *Store {
	return &Store{conn: conn, now: time.Now}
}

func (s *Store) coll(ctx context.Context) (*mongo.Collection, error) {
	c, err := s.conn.Events(ctx)
	if err != nil {
		return nil, apierr.NewDatabaseError("connect", err)
	}
	return c, nil
}

// List returns every event in natural order, or only those whose email
// equals the filter when one is given. It never returns a nil slice.
func (s *Store) List(ctx context.Context, email string) ([]models.Event, error) {
	c, err := s.coll(ctx)
	if err != nil {
		return nil, err
	}
	filter := bson.M{}
	var opts []*options.FindOptions
	if email = normalize.Email(email); email != "" {
		filter[models.EventFieldEmail] = email
		// Documents written before emails were normalized may be mixed case.
		opts = append(opts, options.Find().SetCollation(emailCollation))
	}
	return s.find(ctx, c, "list events", filter, opts...)
}

// Latest returns up to LatestLimit events ordered by start_date, newest
// first. Events without a start_date sort after every dated event.
func (s *Store) Latest(ctx context.Context) ([]models.Event, error) {
	c, err := s.coll(ctx)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: models.EventFieldStartDate, Value: -1}}).
		SetLimit(LatestLimit)
	return s.find(ctx, c, "latest events", bson.M{}, opts)
}

func (s *Store) find(ctx context.Context, c *mongo.Collection, op string, filter bson.M, opts ...*options.FindOptions) ([]models.Event, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, apierr.NewDatabaseError(op, err)
	}
	defer cur.Close(ctx)

	out := make([]models.Event, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, apierr.NewDatabaseError(op, err)
	}
	return out, nil
}

// GetByID loads one event. A missing event is a NotFoundError.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	c, err := s.coll(ctx)
	if err != nil {
		return models.Event{}, err
	}
	var e models.Event
	if err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Event{}, apierr.NewNotFoundError("Event not found")
		}
		return models.Event{}, apierr.NewDatabaseError("get event", err)
	}
	return e, nil
}

// Create stamps createdAt when the caller left it out, normalizes the
// email, and inserts the event. The store assigns the ID.
func (s *Store) Create(ctx context.Context, e models.Event) (models.InsertAck, error) {
	c, err := s.coll(ctx)
	if err != nil {
		return models.InsertAck{}, err
	}
	e.ID = primitive.NilObjectID
	e.StampCreated(s.now())
	if email, ok := e.Fields[models.EventFieldEmail].(string); ok {
		e.Fields[models.EventFieldEmail] = normalize.Email(email)
	}

	res, err := c.InsertOne(ctx, e)
	if err != nil {
		return models.InsertAck{}, apierr.NewDatabaseError("create event", err)
	}
	ack := models.InsertAck{Acknowledged: true}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		ack.InsertedID = oid.Hex()
	}
	return ack, nil
}

// Delete removes an event by ID. Deleting an event that does not exist is
// reported with a zero count, not an error.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteAck, error) {
	c, err := s.coll(ctx)
	if err != nil {
		return models.DeleteAck{}, err
	}
	res, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.DeleteAck{}, apierr.NewDatabaseError("delete event", err)
	}
	return models.DeleteAck{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}
