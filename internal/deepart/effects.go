package deepart

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

// Effect is a conversion style offered by the service.
type Effect struct {
	ID        uuid.UUID
	Name      string
	MediaType string
}

// UnmarshalJSON tolerates a null or malformed id, leaving ID as uuid.Nil.
func (e *Effect) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        *string `json:"id"`
		Name      string  `json:"name"`
		MediaType *string `json:"mediaType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Effect{Name: strings.TrimSpace(raw.Name)}
	if raw.ID != nil {
		if id, err := uuid.Parse(*raw.ID); err == nil {
			e.ID = id
		}
	}
	if raw.MediaType != nil {
		e.MediaType = strings.TrimSpace(*raw.MediaType)
	}
	return nil
}

// MarshalJSON writes the wire shape used by the API.
func (e Effect) MarshalJSON() ([]byte, error) {
	raw := struct {
		ID        *string `json:"id"`
		Name      string  `json:"name"`
		MediaType string  `json:"mediaType,omitempty"`
	}{Name: e.Name, MediaType: e.MediaType}
	if e.ID != uuid.Nil {
		id := e.ID.String()
		raw.ID = &id
	}
	return json.Marshal(raw)
}

// Effect selection errors.
var (
	ErrEffectNotFound  = errors.New("effect not found")
	ErrEffectNotUnique = errors.New("effect is not unique")
)

func sameFold(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}

// FilterByMediaType keeps the effects for mediaType. An empty mediaType keeps all.
func FilterByMediaType(effects []Effect, mediaType string) []Effect {
	if strings.TrimSpace(mediaType) == "" {
		return effects
	}
	return lo.Filter(effects, func(e Effect, _ int) bool {
		return sameFold(e.MediaType, mediaType)
	})
}

// FindEffect returns the single effect whose name or id matches nameOrID,
// ignoring case.
func FindEffect(effects []Effect, nameOrID string) (Effect, error) {
	matches := lo.Filter(effects, func(e Effect, _ int) bool {
		if sameFold(e.Name, nameOrID) {
			return true
		}
		return e.ID != uuid.Nil && sameFold(e.ID.String(), nameOrID)
	})
	switch len(matches) {
	case 0:
		return Effect{}, fmt.Errorf("%w: no effect with name or id %q is available", ErrEffectNotFound, nameOrID)
	case 1:
		return matches[0], nil
	default:
		return Effect{}, fmt.Errorf("%w: %d effects match %q", ErrEffectNotUnique, len(matches), nameOrID)
	}
}

// EffectGroup is one media type's effects in display order.
type EffectGroup struct {
	MediaType string
	Effects   []Effect
}

// GroupByMediaType groups effects by media type, sorted by media type with
// the service's order kept inside each group.
func GroupByMediaType(effects []Effect) []EffectGroup {
	grouped := lo.GroupBy(effects, func(e Effect) string { return e.MediaType })
	keys := lo.Keys(grouped)
	sort.Strings(keys)
	return lo.Map(keys, func(key string, _ int) EffectGroup {
		return EffectGroup{MediaType: key, Effects: grouped[key]}
	})
}

// Numbered flattens groups in display order, so the n-th printed effect is
// at index n-1.
func Numbered(groups []EffectGroup) []Effect {
	return lo.FlatMap(groups, func(g EffectGroup, _ int) []Effect { return g.Effects })
}
