// internal/app/features/events/handler.go
package events

import (
	"context"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/apierr"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the slice of the event store the handlers use.
type Store interface {
	List(ctx context.Context, email string) ([]models.Event, error)
	Latest(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
	Create(ctx context.Context, e models.Event) (models.InsertAck, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.DeleteAck, error)
}

// Handler serves the event endpoints.
type Handler struct {
	Store Store
	Log   *zap.Logger
	resp  *apierr.Responder
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
		resp:  apierr.NewResponder(logger),
	}
}

func eventID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apierr.NewValidationError("Invalid event ID")
	}
	return id, nil
}

// ServeList handles GET /events with an optional ?email= filter.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "events.list")
	defer cancel()

	evs, err := h.Store.List(ctx, query.Get(r, "email"))
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.resp.JSON(w, r, http.StatusOK, evs)
}

// ServeLatest handles GET /latest-events.
func (h *Handler) ServeLatest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "events.latest")
	defer cancel()

	evs, err := h.Store.Latest(ctx)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.resp.JSON(w, r, http.StatusOK, evs)
}

// ServeGet handles GET /events/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "events.get")
	defer cancel()

	ev, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.resp.JSON(w, r, http.StatusOK, ev)
}

// ServeCreate handles POST /events. The body is any JSON object.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	body, err := apierr.ReadBody(r)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	ev, err := models.ParseEvent(body)
	if err != nil {
		h.resp.HandleError(w, r, apierr.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "events.create")
	defer cancel()

	ack, err := h.Store.Create(ctx, ev)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.Log.Info("event created", zap.String("event_id", ack.InsertedID))
	h.resp.JSON(w, r, http.StatusCreated, ack)
}

// ServeDelete handles DELETE /events/{id}. A missing event is reported
// with deletedCount 0.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "events.delete")
	defer cancel()

	ack, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.resp.HandleError(w, r, err)
		return
	}
	h.resp.JSON(w, r, http.StatusOK, ack)
}
