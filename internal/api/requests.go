// Affinity - Recommendation and Skill-Matching Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/teammatch"
	"github.com/tomtom215/affinity/internal/validation"
)

// ProfileRequest is the body of PUT /profiles/{actorID}.
type ProfileRequest struct {
	Skills    []string `json:"skills" validate:"max=512,dive,required,max=256"`
	Interests []string `json:"interests" validate:"max=512,dive,required,max=256"`
}

// ItemRequest is the body of PUT /items/{itemID}.
type ItemRequest struct {
	Tags     []string `json:"tags" validate:"max=512,dive,required,max=256"`
	Category string   `json:"category" validate:"max=256"`
}

// InteractionRequest is one interaction submitted for ingestion.
type InteractionRequest struct {
	EventID    string     `json:"event_id,omitempty" validate:"omitempty,entity_id"`
	ActorID    string     `json:"actor_id" validate:"entity_id"`
	TargetID   string     `json:"target_id" validate:"entity_id"`
	Kind       string     `json:"kind" validate:"interaction_kind"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

// ToInteraction converts a validated request.
func (req *InteractionRequest) ToInteraction() (recommend.Interaction, error) {
	kind, err := recommend.ParseInteractionKind(req.Kind)
	if err != nil {
		return recommend.Interaction{}, err
	}
	in := recommend.Interaction{
		EventID:  req.EventID,
		ActorID:  req.ActorID,
		TargetID: req.TargetID,
		Kind:     kind,
	}
	if req.OccurredAt != nil {
		in.OccurredAt = req.OccurredAt.UTC()
	}
	return in, nil
}

// InteractionBatchRequest is the body of POST /interactions/batch.
type InteractionBatchRequest struct {
	Interactions []InteractionRequest `json:"interactions" validate:"required,min=1,dive"`
}

// TeamMatchRequest is the body of POST /teams/match. N defaults to the
// number of candidates.
type TeamMatchRequest struct {
	Required   []string              `json:"required" validate:"max=512,dive,required,max=256"`
	Candidates []teammatch.Candidate `json:"candidates" validate:"required,min=1,dive"`
	N          int                   `json:"n" validate:"gte=0"`
}

// decodeJSON reads at most maxBytes of JSON into v and validates it.
// Unknown fields are rejected. Validation failures are returned as
// *validation.RequestValidationError.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), strings.Contains(err.Error(), "request body too large"):
			return ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr
	}
	return nil
}

// bindJSON decodes the body and writes the failure response. It reports
// whether the handler should continue.
func bindJSON(rw *ResponseWriter, w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) bool {
	err := decodeJSON(w, r, maxBytes, v)
	if err == nil {
		return true
	}

	var verr *validation.RequestValidationError
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, err.Error())
	case errors.As(err, &verr):
		rw.ValidationError(verr)
	default:
		rw.BadRequest(err.Error())
	}
	return false
}

// pathID is validated like every other entity id.
type pathID struct {
	ID string `json:"id" validate:"entity_id"`
}

func validID(rw *ResponseWriter, name, id string) bool {
	if verr := validation.ValidateStruct(&pathID{ID: id}); verr != nil {
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed,
			name+" must be a non-blank id of at most 256 characters", map[string]interface{}{"field": name})
		return false
	}
	return true
}

// parseN reads the n query parameter. Missing means def; negative or
// non-integer values are rejected.
func parseN(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("n must be a non-negative integer, got %q", raw)
	}
	return n, nil
}

// parseCandidates reads the comma separated candidates parameter. An absent
// parameter yields nil (rank the collaborative shortlist); a present but
// empty one yields an empty, non-nil set.
func parseCandidates(r *http.Request) []string {
	values, ok := r.URL.Query()["candidates"]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
