package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meetscribe/backend/pkg/json"
	"github.com/meetscribe/backend/services/meeting/consts"
	"github.com/meetscribe/backend/services/meeting/entity"
	"github.com/meetscribe/backend/services/meeting/usecase"
)

type Handler struct {
	usecase   usecase.Usecase
	uploadDir string
	log       *slog.Logger
}

func New(usecase usecase.Usecase, uploadDir string, log *slog.Logger) *Handler {
	log.Debug("creating new handler")
	return &Handler{
		usecase:   usecase,
		uploadDir: uploadDir,
		log:       log,
	}
}

type CreateMeetingRequest struct {
	HostName string `json:"hostName"`
}

type CreateMeetingResponse struct {
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
}

type EndMeetingRequest struct {
	RoomID string `json:"roomId"`
}

type EndMeetingResponse struct {
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
}

type MeetingExistsResponse struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
}

type MeetingSummaryResponse struct {
	Transcript string           `json:"transcript"`
	Summary    any              `json:"summary"`
	Status     entity.JobStatus `json:"status,omitempty"`
}

type MeetingTranscriptResponse struct {
	Transcripts  []entity.ClipTranscript `json:"transcripts"`
	Summary      any                     `json:"summary"`
	Conversation string                  `json:"conversation"`
	Status       entity.JobStatus        `json:"status,omitempty"`
}

type UploadAudioResponse struct {
	Message string            `json:"message"`
	Data    *entity.AudioClip `json:"data"`
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	h.log.Debug("registering HTTP routes")
	router.Post("/create-meeting", h.CreateMeeting)
	router.Post("/end-meeting", h.EndMeeting)
	router.Get("/meeting-exists/{id}", h.MeetingExists)
	router.Get("/meeting-summary/{id}", h.MeetingSummary)
	router.Get("/meeting-transcript/{id}", h.MeetingTranscript)
	router.Post("/upload-audio", h.UploadAudio)
	router.Handle("/uploads/*", http.StripPrefix(consts.UploadURLPrefix+"/",
		http.FileServer(http.Dir(h.uploadDir))))
	h.log.Info("all routes registered successfully")
}

func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	h.log.Info("create meeting request received", slog.String("remote_addr", r.RemoteAddr))

	var req CreateMeetingRequest
	if err := json.ParseJSON(r, &req); err != nil {
		h.log.Warn("invalid request body", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	res, err := h.usecase.CreateMeeting(r.Context(), &entity.CreateMeetingRequest{
		HostName: req.HostName,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info("meeting created", slog.String("room_id", res.MeetingID))

	json.WriteJSON(w, http.StatusCreated, CreateMeetingResponse{
		Message: "Meeting created successfully",
		RoomID:  res.MeetingID,
	})
}

func (h *Handler) EndMeeting(w http.ResponseWriter, r *http.Request) {
	h.log.Info("end meeting request received", slog.String("remote_addr", r.RemoteAddr))

	var req EndMeetingRequest
	if err := json.ParseJSON(r, &req); err != nil {
		h.log.Warn("invalid request body", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.RoomID == "" {
		json.WriteError(w, http.StatusBadRequest, errors.New("Room ID is required"))
		return
	}

	res, err := h.usecase.EndMeeting(r.Context(), req.RoomID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info("meeting ended", slog.String("room_id", res.MeetingID))

	json.WriteJSON(w, http.StatusOK, EndMeetingResponse{
		Message: "Meeting ended successfully",
		RoomID:  res.MeetingID,
	})
}

func (h *Handler) MeetingExists(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "id")
	h.log.Debug("meeting exists check", slog.String("meeting_id", meetingID))

	res, err := h.usecase.MeetingExists(r.Context(), meetingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if !res.Exists {
		json.WriteJSON(w, http.StatusNotFound, MeetingExistsResponse{
			Exists:  false,
			Message: res.Reason,
		})
		return
	}
	json.WriteJSON(w, http.StatusOK, MeetingExistsResponse{Exists: true})
}

func (h *Handler) MeetingSummary(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "id")
	h.log.Info("meeting summary requested", slog.String("meeting_id", meetingID))

	res, err := h.usecase.GetSummary(r.Context(), meetingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	transcript := res.Transcript
	if transcript == "" {
		transcript = consts.NoTranscriptFallback
	}

	var summary any = consts.NoSummaryFallback
	if len(res.Summaries) > 0 {
		summary = res.Summaries
	}

	json.WriteJSON(w, http.StatusOK, MeetingSummaryResponse{
		Transcript: transcript,
		Summary:    summary,
		Status:     res.Status,
	})
}

func (h *Handler) MeetingTranscript(w http.ResponseWriter, r *http.Request) {
	meetingID := chi.URLParam(r, "id")
	h.log.Info("meeting transcript requested", slog.String("meeting_id", meetingID))

	res, err := h.usecase.GetTranscript(r.Context(), meetingID)
	if err != nil {
		// Everything on this route degrades to a server error.
		h.log.Error("failed to get transcript",
			slog.String("meeting_id", meetingID),
			slog.String("error", err.Error()))
		json.WriteError(w, http.StatusInternalServerError, errors.New("Server Error"))
		return
	}

	var summary any = consts.NoSummaryFallback
	if len(res.Summaries) > 0 {
		summary = res.Summaries
	}

	json.WriteJSON(w, http.StatusOK, MeetingTranscriptResponse{
		Transcripts:  res.Transcripts,
		Summary:      summary,
		Conversation: res.Conversation,
		Status:       res.Status,
	})
}

func (h *Handler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	h.log.Info("upload audio request received", slog.String("remote_addr", r.RemoteAddr))

	if err := r.ParseMultipartForm(consts.MaxAudioSize); err != nil {
		h.log.Warn("failed to parse multipart form", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusBadRequest, errors.New("No audio file uploaded"))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		json.WriteError(w, http.StatusBadRequest, errors.New("No audio file uploaded"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error("failed to read uploaded file", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusInternalServerError, errors.New("failed to read audio file"))
		return
	}

	res, err := h.usecase.UploadAudio(r.Context(), &entity.UploadAudioRequest{
		UserID:    r.FormValue("userId"),
		MeetingID: r.FormValue("meetingId"),
		Role:      r.FormValue("role"),
		Filename:  header.Filename,
		Data:      data,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.Info("audio uploaded",
		slog.String("clip_id", res.Clip.ID),
		slog.String("meeting_id", res.Clip.MeetingID))

	json.WriteJSON(w, http.StatusCreated, UploadAudioResponse{
		Message: "Audio uploaded and saved successfully",
		Data:    res.Clip,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		json.WriteError(w, http.StatusBadRequest, err)
	case errors.Is(err, entity.ErrNotFound):
		json.WriteError(w, http.StatusNotFound, err)
	default:
		h.log.Error("internal error", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusInternalServerError, errors.New("Internal Server Error"))
	}
}
