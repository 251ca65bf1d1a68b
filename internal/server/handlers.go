package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devbydaniel/voicerec/internal/api"
	"github.com/devbydaniel/voicerec/internal/domain/recording"
	"github.com/devbydaniel/voicerec/internal/domain/recording/usecases"
)

func (s *Server) StartRecording(c *gin.Context) {
	var opts recording.Options
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			s.fail(c, &recording.OptionsError{Err: err})
			return
		}
	}

	snap, err := s.uc.Start.Execute(c.Request.Context(), opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.StartResponse{
		Value:     true,
		SessionID: snap.SessionID,
		Path:      snap.Path,
		Config:    snap.Config.String(),
	})
}

func (s *Server) PauseRecording(c *gin.Context) {
	ok, err := s.uc.Pause.Execute()
	s.value(c, ok, err)
}

func (s *Server) ResumeRecording(c *gin.Context) {
	ok, err := s.uc.Resume.Execute()
	s.value(c, ok, err)
}

// value answers pause/resume. A call from the wrong state is a plain false,
// not an HTTP error.
func (s *Server) value(c *gin.Context, ok bool, err error) {
	if err != nil && recording.KindOf(err) != recording.KindInvalidState {
		s.fail(c, err)
		return
	}
	resp := api.ValueResponse{Value: ok}
	if err != nil {
		resp.Reason = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) StopRecording(c *gin.Context) {
	res, err := s.uc.Stop.Execute(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.StopResponse{
		SessionID:     res.SessionID,
		Path:          res.Path,
		MsDuration:    res.DurationMs(),
		MimeType:      res.MimeType,
		Segments:      len(res.Segments),
		Interruptions: res.Interruptions,
	})
}

func (s *Server) GetStatus(c *gin.Context) {
	snap := s.uc.Status.Execute()
	resp := api.StatusResponse{
		Status:        snap.Status.String(),
		SessionID:     snap.SessionID,
		Path:          snap.Path,
		Segments:      len(snap.Segments),
		Interruptions: snap.Interruptions,
	}
	if !snap.StartedAt.IsZero() {
		resp.StartedAt = &snap.StartedAt
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ReportInterruption(c *gin.Context) {
	var req api.InterruptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: "INVALID_INTERRUPTION"})
		return
	}
	if err := s.uc.Interrupt.Execute(c.Request.Context(), req.Type); err != nil {
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: err.Error(), Code: "INTERRUPTIONS_CLOSED"})
		return
	}
	c.JSON(http.StatusAccepted, api.InterruptionResponse{Type: req.Type})
}

func (s *Server) ListRecordings(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "limit must be a non-negative integer", Code: "INVALID_QUERY"})
		return
	}
	recs, err := s.uc.List.Execute(c.Request.Context(), usecases.ListOptions{
		Outcome: c.Query("outcome"),
		Limit:   limit,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.RecordingsResponse{Recordings: recs})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, api.ErrorResponse{Error: err.Error(), Code: recording.Code(err)})
}

// StatusFor maps an error onto the HTTP status the API reports.
func StatusFor(err error) int {
	switch recording.KindOf(err) {
	case recording.KindInvalidState:
		return http.StatusConflict
	case recording.KindDeviceUnavailable:
		return http.StatusServiceUnavailable
	case recording.KindStitchFailure:
		return http.StatusInternalServerError
	case recording.KindEmptyOutput:
		return http.StatusUnprocessableEntity
	case recording.KindInvalidOptions:
		return http.StatusBadRequest
	case recording.KindPermissionDenied:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
