package service

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/TooLazyToCreate/thing-service/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type createThingPayload struct {
	Properties model.Properties `json:"properties"`
	/* Legacy free-text field from the old todo shape, folded into the
	 * properties bag on create */
	Text string `json:"text"`
}

type patchThingPayload struct {
	/* Strict allow-list: properties is the only patchable field,
	 * completed only drives the completed_at stamp */
	Properties *model.Properties `json:"properties"`
	Completed  *bool             `json:"completed"`
}

func (service *Service) HandleCreateThing(w http.ResponseWriter, req *http.Request) {
	payload := createThingPayload{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Debug("Bad request", zap.Error(err), zap.String("ip", req.RemoteAddr))
		return
	}
	if len(payload.Properties) == 0 && payload.Text == "" {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Debug("Empty thing body", zap.String("ip", req.RemoteAddr))
		return
	}

	props := payload.Properties
	if payload.Text != "" {
		if props == nil {
			props = model.Properties{}
		}
		props["text"] = payload.Text
	}

	thing := &model.Thing{
		CreatorID:  requestUser(req).ID,
		Properties: props,
	}
	if err := service.things.Create(thing); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Error("Failed to create thing", zap.Error(err),
			zap.String("ip", req.RemoteAddr),
			zap.String("user_id", thing.CreatorID))
		return
	}
	service.writeJSON(w, thing)
}

func (service *Service) HandleListThings(w http.ResponseWriter, req *http.Request) {
	user := requestUser(req)
	things, err := service.things.ListByCreator(user.ID)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Error("Failed to list things", zap.Error(err),
			zap.String("user_id", user.ID))
		return
	}
	service.writeJSON(w, map[string]interface{}{"thing": things})
}

func (service *Service) HandleGetThing(w http.ResponseWriter, req *http.Request) {
	id, ok := thingID(w, req)
	if !ok {
		return
	}
	thing, err := service.things.GetByID(id, requestUser(req).ID)
	if err != nil {
		service.thingLookupError(w, req, err)
		return
	}
	service.writeJSON(w, map[string]interface{}{"thing": thing})
}

func (service *Service) HandleDeleteThing(w http.ResponseWriter, req *http.Request) {
	id, ok := thingID(w, req)
	if !ok {
		return
	}
	thing, err := service.things.DeleteByID(id, requestUser(req).ID)
	if err != nil {
		service.thingLookupError(w, req, err)
		return
	}
	service.writeJSON(w, map[string]interface{}{"thing": thing})
}

func (service *Service) HandlePatchThing(w http.ResponseWriter, req *http.Request) {
	id, ok := thingID(w, req)
	if !ok {
		return
	}
	payload := patchThingPayload{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		service.logger.Debug("Bad request", zap.Error(err), zap.String("ip", req.RemoteAddr))
		return
	}

	/* completed:true stamps the completion time in epoch millis, any
	 * other patch resets both fields */
	completed := false
	var completedAt *int64
	if payload.Completed != nil && *payload.Completed {
		completed = true
		now := time.Now().UnixMilli()
		completedAt = &now
	}

	var props model.Properties
	if payload.Properties != nil {
		props = *payload.Properties
	}
	thing, err := service.things.Update(id, requestUser(req).ID, props, completed, completedAt)
	if err != nil {
		service.thingLookupError(w, req, err)
		return
	}
	service.writeJSON(w, map[string]interface{}{"thing": thing})
}

/* A malformed id is reported exactly like an absent record, so the
 * caller cannot tell invalid-format from not-found. */
func thingID(w http.ResponseWriter, req *http.Request) (string, bool) {
	id := chi.URLParam(req, "id")
	if _, err := uuid.Parse(id); err != nil {
		w.WriteHeader(http.StatusNotFound)
		return "", false
	}
	return id, true
}

/* Absent and owned-by-someone-else both surface as sql.ErrNoRows,
 * scoping happens in the query itself. */
func (service *Service) thingLookupError(w http.ResponseWriter, req *http.Request, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusBadRequest)
	service.logger.Error("Thing lookup failed", zap.Error(err), zap.String("ip", req.RemoteAddr))
}
