package handlers

import (
	"errors"
	"fmt"
	"io"
	"medchat/internal/domain"
	transcriptionService "medchat/internal/service/transcription"
	"net/http"
)

// multipartOverhead leaves room for form fields around the audio part
const multipartOverhead = 1 << 20

// TranscribeHandler accepts a multipart upload (field "audio", optional
// "language") and returns the transcript
func (h *Handlers) TranscribeHandler(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.config.MaxAudioBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(maxBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendError(w, r, domain.NewValidationError(fmt.Sprintf("audio file exceeds %d bytes", maxBytes)))
			return
		}
		h.sendError(w, r, domain.NewValidationError("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.sendError(w, r, domain.NewValidationError("audio file is required"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, r, domain.NewValidationError("could not read audio file"))
		return
	}

	result, err := h.transcriptionService.Transcribe(r.Context(), transcriptionService.TranscribeRequest{
		Audio:       audio,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Language:    r.FormValue("language"),
	})
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
