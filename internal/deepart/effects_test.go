package deepart_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"deepart/internal/deepart"
)

var (
	penID   = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	waterID = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	clipID  = uuid.MustParse("33333333-3333-4333-8333-333333333333")
)

var sampleEffects = []deepart.Effect{
	{ID: waterID, Name: "Watercolor", MediaType: "IMAGE"},
	{ID: clipID, Name: "Pen", MediaType: "VIDEO"},
	{ID: penID, Name: "Pen", MediaType: "IMAGE"},
}

func TestFindEffect(t *testing.T) {
	effect, err := deepart.FindEffect(sampleEffects, "watercolor")
	require.NoError(t, err)
	require.Equal(t, waterID, effect.ID)

	effect, err = deepart.FindEffect(sampleEffects, "33333333-3333-4333-8333-333333333333")
	require.NoError(t, err)
	require.Equal(t, clipID, effect.ID)

	_, err = deepart.FindEffect(sampleEffects, "pen")
	require.True(t, errors.Is(err, deepart.ErrEffectNotUnique))

	_, err = deepart.FindEffect(sampleEffects, "charcoal")
	require.True(t, errors.Is(err, deepart.ErrEffectNotFound))

	images := deepart.FilterByMediaType(sampleEffects, "image")
	effect, err = deepart.FindEffect(images, "PEN")
	require.NoError(t, err)
	require.Equal(t, penID, effect.ID)
}

func TestGroupByMediaTypeNumbering(t *testing.T) {
	groups := deepart.GroupByMediaType(sampleEffects)
	require.Len(t, groups, 2)
	require.Equal(t, "IMAGE", groups[0].MediaType)
	require.Equal(t, "VIDEO", groups[1].MediaType)

	numbered := deepart.Numbered(groups)
	require.Equal(t, []uuid.UUID{waterID, penID, clipID}, []uuid.UUID{numbered[0].ID, numbered[1].ID, numbered[2].ID})
}

func TestEffectJSONToleratesNullID(t *testing.T) {
	var effects []deepart.Effect
	payload := `[{"id":null,"name":"Legacy","mediaType":null},{"id":"` + penID.String() + `","name":"Pen","mediaType":"IMAGE"}]`
	require.NoError(t, json.Unmarshal([]byte(payload), &effects))
	require.Equal(t, uuid.Nil, effects[0].ID)
	require.Equal(t, "", effects[0].MediaType)
	require.Equal(t, penID, effects[1].ID)
}
