package marker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func existingMarkers(t *testing.T, target string) []string {
	t.Helper()
	var found []string
	for _, path := range candidatePaths(target) {
		if _, err := os.Stat(path); err == nil {
			found = append(found, filepath.Ext(path))
		}
	}
	return found
}

func TestFileStoreKeepsExactlyOneRecord(t *testing.T) {
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "out", "photo.png")
	store := NewFileStore()

	m := New(target, store, ReportsAll)
	m.MediaID = uuid.New()
	m.EffectID = uuid.New()
	require.NoError(t, m.Persist(ctx))
	require.Equal(t, []string{ExtInProgress}, existingMarkers(t, target))

	m.OperationID = uuid.New()
	m.SetSuccess()
	require.NoError(t, m.Persist(ctx))
	require.Equal(t, []string{ExtSuccess}, existingMarkers(t, target))

	m.SetFailure("alpha\nreapply failed")
	require.NoError(t, m.Persist(ctx))
	require.Equal(t, []string{ExtFailure}, existingMarkers(t, target))

	restored := New(target, store, ReportsAll)
	require.NoError(t, restored.Restore(ctx))
	require.Equal(t, m.Record, restored.Record)
	require.True(t, restored.IsFailure())
	require.True(t, restored.IsCompleted())
	require.False(t, restored.IsSuccess())
}

func TestFileStoreWritesPositionalFormat(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a.png")
	media := uuid.MustParse("3f2c1b9e-1111-4222-8333-444455556666")
	op := uuid.MustParse("9a8b7c6d-aaaa-4bbb-8ccc-dddddddddddd")

	rec := Record{MediaID: media, OperationID: op, State: Failure, Message: "boom"}
	require.NoError(t, NewFileStore().Save(context.Background(), target, rec))
	data, err := os.ReadFile(target + ExtFailure)
	require.NoError(t, err)
	require.Equal(t, media.String()+"\n\n"+op.String()+"\nFAILURE: boom\n", string(data))
}

func TestDecodeRecordToleratesShortAndForeignInput(t *testing.T) {
	media := uuid.New()
	tests := []struct {
		name string
		in   string
		want Record
	}{
		{"empty", "", Record{}},
		{"media only", media.String() + "\n", Record{MediaID: media}},
		{"garbage ids", "nope\n{}\n", Record{}},
		{"blank outcome", media.String() + "\n\n\n\n", Record{MediaID: media}},
		{"success", "\n\n\nSUCCESS\n", Record{State: Success}},
		{"crlf failure", "\r\n\r\n\r\nFAILURE: line one\r\nline two\r\n", Record{State: Failure, Message: "line one\nline two"}},
		{"unprefixed failure", "\n\n\nsomething odd\n", Record{State: Failure, Message: "something odd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, decodeRecord([]byte(tt.in)))
		})
	}
}

func TestReportsFailuresOnlyKeepsFailures(t *testing.T) {
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "b.png")
	m := New(target, NewFileStore(), ReportsFailures)

	m.SetFailure("")
	require.NoError(t, m.Persist(ctx))
	data, err := os.ReadFile(target + ExtFailure)
	require.NoError(t, err)
	require.Contains(t, string(data), DefaultFailureMessage)

	m.SetSuccess()
	require.NoError(t, m.Persist(ctx))
	require.Empty(t, existingMarkers(t, target), "failures mode keeps nothing after a success")
}

func TestReportsNoneDoesNoIO(t *testing.T) {
	ctx := context.Background()
	target := filepath.Join(t.TempDir(), "c.png")
	require.NoError(t, os.WriteFile(target+ExtSuccess, []byte("\n\n\nSUCCESS\n"), 0o644))

	m := New(target, NewFileStore(), ReportsNone)
	require.NoError(t, m.Restore(ctx))
	require.False(t, m.IsCompleted(), "restore must be a no-op when reports are disabled")
	m.SetFailure("x")
	require.NoError(t, m.Persist(ctx))
	require.Equal(t, []string{ExtSuccess}, existingMarkers(t, target))
}

func TestParseReports(t *testing.T) {
	cases := map[string]Reports{"": ReportsNone, "none": ReportsNone, "Failures": ReportsFailures, "ALL": ReportsAll}
	for in, want := range cases {
		got, err := ParseReports(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseReports("sometimes")
	require.Error(t, err)
}
