package deepart_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"deepart/internal/deepart"
	"deepart/internal/deepart/deeparttest"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestClientFullRoundTrip(t *testing.T) {
	effect := deepart.Effect{ID: uuid.New(), Name: "Watercolor", MediaType: "IMAGE"}
	fake := deeparttest.NewServer(t, effect)
	fake.PendingPolls = 2
	fake.Transform = func(b []byte) []byte { return append([]byte("converted:"), b...) }

	client := deepart.NewClient(deepart.Config{BaseURL: fake.BaseURL()})
	ctx := context.Background()

	effects, err := client.ListEffects(ctx)
	require.NoError(t, err)
	require.Equal(t, []deepart.Effect{effect}, effects)

	mediaID, err := client.AddMedia(ctx, []byte("source"), "cat.png", "image/png")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, mediaID)
	require.Equal(t, []string{"cat.png"}, fake.Uploads())

	opID, err := client.StartOperation(ctx, mediaID, effect.ID)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, opID)
	require.Equal(t, []uuid.UUID{effect.ID}, fake.Submissions())

	for i := 0; i < 2; i++ {
		result, err := client.OperationResult(ctx, opID)
		require.NoError(t, err)
		require.Nil(t, result, "pending operations report no bytes")
	}
	result, err := client.OperationResult(ctx, opID)
	require.NoError(t, err)
	require.Equal(t, []byte("converted:source"), result)
}

func TestClientMissingLocationYieldsNilID(t *testing.T) {
	fake := deeparttest.NewServer(t)
	fake.OmitLocation = true
	client := deepart.NewClient(deepart.Config{BaseURL: fake.BaseURL()})

	id, err := client.AddMedia(context.Background(), pngBytes(t), "a.png", "")
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, id)
}

func TestClientStatusErrors(t *testing.T) {
	fake := deeparttest.NewServer(t)
	fake.UploadStatus = func(string) int { return http.StatusBadRequest }
	fake.FailPolls(http.StatusServiceUnavailable, 1)
	client := deepart.NewClient(deepart.Config{BaseURL: fake.BaseURL()})
	ctx := context.Background()

	_, err := client.AddMedia(ctx, []byte("x"), "a.png", "image/png")
	var statusErr *deepart.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	require.False(t, deepart.IsTransient(err))

	_, err = client.OperationResult(ctx, uuid.New())
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	require.True(t, deepart.IsTransient(err))

	_, err = client.OperationResult(ctx, uuid.New())
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.False(t, deepart.IsTransient(err))
}

func TestIsTransientClassification(t *testing.T) {
	for _, code := range []int{500, 503, 408, 504} {
		require.True(t, deepart.IsTransient(&deepart.StatusError{StatusCode: code}), "status %d", code)
	}
	for _, code := range []int{400, 401, 404, 409, 502} {
		require.False(t, deepart.IsTransient(&deepart.StatusError{StatusCode: code}), "status %d", code)
	}
	require.False(t, deepart.IsTransient(nil))
	require.False(t, deepart.IsTransient(errors.New("boom")))
}

func TestClientTimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := deepart.NewClient(deepart.Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond})
	_, err := client.OperationResult(context.Background(), uuid.New())
	require.Error(t, err)
	require.True(t, deepart.IsTransient(err))
}

func TestIDFromLocation(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		location string
		want     uuid.UUID
	}{
		{"", uuid.Nil},
		{"https://host/api/v1/media/" + id.String(), id},
		{"/api/v1/operations/" + id.String() + "/", id},
		{id.String(), id},
		{"https://host/api/v1/media/not-a-guid", uuid.Nil},
		{"https://host/api/v1/media/" + id.String() + "?x=1", id},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, deepart.IDFromLocation(tt.location), "location %q", tt.location)
	}
}

func TestDetectMIME(t *testing.T) {
	require.Equal(t, "image/png", deepart.DetectMIME(pngBytes(t), "whatever.bin"))
	require.Equal(t, "image/jpeg", deepart.DetectMIME(nil, "photo.JPG"))
	require.Equal(t, "application/octet-stream", deepart.DetectMIME(nil, "noext"))
}
