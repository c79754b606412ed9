package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/pawelsloboda5/draft-spark-compose/internal/auth"
	"github.com/pawelsloboda5/draft-spark-compose/internal/database"
	"github.com/pawelsloboda5/draft-spark-compose/internal/generate"
	"github.com/pawelsloboda5/draft-spark-compose/internal/logging"
	"github.com/pawelsloboda5/draft-spark-compose/internal/profile"
)

const maxBodyBytes = 64 << 10

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// errorResponse maps an error to a status code and a short client message.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, generate.ErrNoProfile):
		return http.StatusBadRequest, "Profile not set"
	case errors.Is(err, profile.ErrInvalid), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, generate.ErrGeneration):
		return http.StatusInternalServerError, "Failed to generate post"
	case errors.Is(err, generate.ErrPersist):
		return http.StatusInternalServerError, "Failed to save generated post"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := errorResponse(err)
	if status == http.StatusInternalServerError {
		logging.Named("server").Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON body", errBadRequest)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", errBadRequest)
	}
	return id, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		SampleText string `json:"sampleText"`
		Headline   string `json:"headline"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	post, err := s.generator.Generate(r.Context(), generate.Request{
		UserID:     userID,
		SampleText: body.SampleText,
		Headline:   body.Headline,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": post.Content})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request, userID string) {
	p, err := s.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeError(w, generate.ErrNoProfile)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"trends": s.trends.Resolve(r.Context(), p.Niche)})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, userID string) {
	p, err := s.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Profile not set"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Niche string `json:"niche"`
		Tone  string `json:"tone"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.profiles.Upsert(r.Context(), userID, body.Niche, body.Tone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProfileExists(w http.ResponseWriter, r *http.Request, userID string) {
	has, err := s.profiles.HasProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasProfile": has})
}

func (s *Server) handleListSamples(w http.ResponseWriter, r *http.Request, userID string) {
	samples, err := s.profiles.ListSamples(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if samples == nil {
		samples = []database.Sample{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"samples": samples})
}

func (s *Server) handleAddSample(w http.ResponseWriter, r *http.Request, userID string) {
	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	sample, err := s.profiles.AddSample(r.Context(), userID, body.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sample)
}

func (s *Server) handleDeleteSample(w http.ResponseWriter, r *http.Request, userID string) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.profiles.DeleteSample(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request, userID string) {
	posts, err := s.db.ListPosts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if posts == nil {
		posts = []database.GeneratedPost{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, userID string) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.db.DeletePost(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFavoritePost(w http.ResponseWriter, r *http.Request, userID string) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Favorited *bool `json:"favorited"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Favorited == nil {
		writeError(w, fmt.Errorf("%w: favorited is required", errBadRequest))
		return
	}
	if err := s.db.SetFavorited(r.Context(), userID, id, *body.Favorited); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
