package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ppiankov/newslens/internal/pipeline"
)

const errNoJSON = "No JSON data provided"

type summarizeRequest struct {
	OriginalText *string `json:"originalText"`
}

type summarizeVideoRequest struct {
	VideoURL *string `json:"videoUrl"`
}

type answerRequest struct {
	Summary  *string `json:"summary"`
	Question *string `json:"question"`
}

type textRequest struct {
	Text *string `json:"text"`
}

// decode reads a JSON object body. It writes the error response itself
// and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, errNoJSON)
		return false
	}
	return true
}

// fail maps an operation error to a status code: input errors are 400,
// everything else is 500 with the error message
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if pipeline.IsInputError(err) {
		status = http.StatusBadRequest
	}

	event := zerolog.Ctx(r.Context()).Warn()
	if status == http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	writeError(w, status, err.Error())
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.OriginalText == nil {
		writeError(w, http.StatusBadRequest, "Missing 'originalText' field")
		return
	}

	res, err := s.analyzer.Summarize(r.Context(), *req.OriginalText)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summarizedText": res.HTML,
		"status":         "success",
	})
}

func (s *Server) handleSummarizeVideo(w http.ResponseWriter, r *http.Request) {
	var req summarizeVideoRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.VideoURL == nil {
		writeError(w, http.StatusBadRequest, "Missing 'videoUrl' field")
		return
	}

	res, err := s.analyzer.SummarizeVideo(r.Context(), *req.VideoURL)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summarizedText": res.HTML,
		"status":         "success",
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Summary == nil || req.Question == nil {
		writeError(w, http.StatusBadRequest, "Missing 'summary' or 'question' field")
		return
	}

	answer, err := s.analyzer.Answer(r.Context(), *req.Summary, *req.Question)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer": answer,
		"status": "success",
	})
}

func (s *Server) handleDetectFakeNews(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "Missing 'text' field")
		return
	}

	verdict, err := s.analyzer.DetectFakeNews(r.Context(), *req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analysis": verdict,
		"status":   "success",
	})
}

func (s *Server) handleEnsembleCheck(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "Missing 'text' field")
		return
	}

	res, err := s.analyzer.EnsembleCheck(r.Context(), *req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	body := map[string]any{
		"result": res.Label,
		"status": "success",
	}
	if len(res.Votes) > 0 {
		body["votes"] = res.Votes
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
