// Package deeparttest runs an in-process fake of the Deep Art API for tests.
package deeparttest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"deepart/internal/deepart"
)

const maxUpload = 64 << 20

type operation struct {
	mediaID  uuid.UUID
	effectID uuid.UUID
	pending  int
}

// Server is a scriptable fake. Its exported fields may be changed between
// requests; they are read under the server lock.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	// Effects returned by GET /v1/effects.
	Effects []deepart.Effect
	// PendingPolls is how many status checks answer "still running" before
	// the result is served.
	PendingPolls int
	// Transform turns uploaded bytes into the result. Identity by default.
	Transform func(media []byte) []byte
	// UploadStatus, when set, decides a failure status for an upload by
	// filename. Returning 0 accepts the upload.
	UploadStatus func(filename string) int
	// OmitLocation drops the Location header from creating responses.
	OmitLocation bool

	pollFailures []int
	media        map[uuid.UUID][]byte
	operations   map[uuid.UUID]*operation

	uploads     []string
	submissions []uuid.UUID
	polls       int
}

// NewServer starts a fake and closes it when the test ends.
func NewServer(t testing.TB, effects ...deepart.Effect) *Server {
	t.Helper()
	s := &Server{
		Effects:    effects,
		media:      make(map[uuid.UUID][]byte),
		operations: make(map[uuid.UUID]*operation),
	}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/effects", s.handleEffects)
		r.Post("/media", s.handleUpload)
		r.Post("/operations", s.handleSubmit)
		r.Get("/operations/{id}", s.handleCheck)
	})
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to deepart.NewClient.
func (s *Server) BaseURL() string { return s.URL + "/api" }

// FailPolls makes the next n status checks fail with status.
func (s *Server) FailPolls(status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.pollFailures = append(s.pollFailures, status)
	}
}

// Uploads lists uploaded filenames in arrival order.
func (s *Server) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

// Submissions lists the effect id of every submitted operation.
func (s *Server) Submissions() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.submissions...)
}

// Polls counts status checks, including failed ones.
func (s *Server) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// AddMedia registers media as if it had been uploaded earlier.
func (s *Server) AddMedia(data []byte) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.media[id] = data
	return id
}

func (s *Server) handleEffects(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	payload := map[string]any{"data": s.Effects}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, header.Filename)
	if s.UploadStatus != nil {
		if status := s.UploadStatus(header.Filename); status != 0 {
			http.Error(w, "upload rejected", status)
			return
		}
	}
	id := uuid.New()
	s.media[id] = data
	s.created(w, "/api/v1/media/"+id.String())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Data struct {
			Media struct {
				ID uuid.UUID `json:"id"`
			} `json:"media"`
			Effect struct {
				ID uuid.UUID `json:"id"`
			} `json:"effect"`
		} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.media[body.Data.Media.ID]; !ok {
		http.Error(w, "unknown media", http.StatusNotFound)
		return
	}
	id := uuid.New()
	s.operations[id] = &operation{
		mediaID:  body.Data.Media.ID,
		effectID: body.Data.Effect.ID,
		pending:  s.PendingPolls,
	}
	s.submissions = append(s.submissions, body.Data.Effect.ID)
	s.created(w, "/api/v1/operations/"+id.String())
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad operation id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.polls++
	if len(s.pollFailures) > 0 {
		status := s.pollFailures[0]
		s.pollFailures = s.pollFailures[1:]
		s.mu.Unlock()
		http.Error(w, http.StatusText(status), status)
		return
	}
	op, ok := s.operations[id]
	if !ok {
		s.mu.Unlock()
		http.Error(w, "unknown operation", http.StatusNotFound)
		return
	}
	if op.pending > 0 {
		op.pending--
		s.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
		return
	}
	result := s.media[op.mediaID]
	if s.Transform != nil {
		result = s.Transform(result)
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result)
}

func (s *Server) created(w http.ResponseWriter, location string) {
	if !s.OmitLocation {
		w.Header().Set("Location", s.URL+location)
	}
	w.WriteHeader(http.StatusCreated)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
