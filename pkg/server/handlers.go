package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/user/ainspire/pkg/collection"
	"github.com/user/ainspire/pkg/config"
	"github.com/user/ainspire/pkg/locale"
	"github.com/user/ainspire/pkg/pipeline"
)

type errorResponse struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	Accepted int      `json:"accepted"`
	Rejected []string `json:"rejected,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

type statusResponse struct {
	Busy           bool                 `json:"busy"`
	Message        string               `json:"message"`
	Video          videoStatus          `json:"video"`
	Classification classificationStatus `json:"classification"`
	Images         int                  `json:"images"`
	LastError      string               `json:"lastError,omitempty"`
	Alert          string               `json:"alert,omitempty"`
}

type videoStatus struct {
	Busy      bool    `json:"busy"`
	Current   string  `json:"current,omitempty"`
	Pending   int     `json:"pending"`
	Interval  float64 `json:"intervalSeconds"`
	Emitted   int     `json:"framesExtracted"`
	Processed int     `json:"videosProcessed"`
}

type classificationStatus struct {
	Busy    bool   `json:"busy"`
	Current string `json:"current,omitempty"`
	Pending int    `json:"pending"`
	Settled int    `json:"settled"`
}

type importResponse struct {
	Imported int    `json:"imported"`
	Message  string `json:"message"`
}

type credentialRequest struct {
	Key string `json:"key"`
}

type languageRequest struct {
	Language string `json:"language"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	if v := r.FormValue("interval"); v != "" {
		seconds, err := strconv.ParseFloat(v, 64)
		if err != nil || !(seconds > 0) {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid interval %q", v))
			return
		}
		if err := s.orch.SetInterval(config.ClampInterval(seconds)); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	headers := r.MultipartForm.File["video"]
	if len(headers) == 0 {
		s.writeError(w, http.StatusBadRequest, "no video files in request")
		return
	}

	loc := s.orch.Localizer()
	var sources []*pipeline.VideoSource
	var resp uploadResponse
	for _, header := range headers {
		contentType := header.Header.Get("Content-Type")
		if !pipeline.IsVideo(header.Filename, contentType) {
			resp.Rejected = append(resp.Rejected, header.Filename)
			resp.Messages = append(resp.Messages, loc.F(locale.MsgNotAVideo, header.Filename))
			continue
		}

		path, err := s.saveUpload(header)
		if err != nil {
			s.logger.Error("Saving upload %s failed: %v", header.Filename, err)
			for _, src := range sources {
				src.Release()
			}
			s.writeError(w, http.StatusInternalServerError, "failed to store upload")
			return
		}
		sources = append(sources, pipeline.NewVideoSource(header.Filename, path, contentType, func() {
			if err := s.fs.Remove(path); err != nil {
				s.logger.Debug("Removing %s failed: %v", path, err)
			}
		}))
	}

	accepted, rejected := s.orch.Enqueue(sources...)
	resp.Accepted = accepted
	for _, name := range rejected {
		resp.Rejected = append(resp.Rejected, name)
		resp.Messages = append(resp.Messages, loc.F(locale.MsgNotAVideo, name))
	}

	status := http.StatusAccepted
	if accepted == 0 {
		status = http.StatusUnsupportedMediaType
	}
	s.writeJSON(w, status, resp)
}

// saveUpload copies an uploaded file to a temporary file that lives until
// the video queue releases its source.
func (s *Server) saveUpload(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.fs.CreateTemp(strings.ToLower(filepath.Ext(header.Filename)), f)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.orch.CancelVideos()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.orch.Status()
	resp := statusResponse{
		Busy:    st.Video.Busy || st.Classification.Busy,
		Message: st.Message,
		Video: videoStatus{
			Busy:      st.Video.Busy,
			Current:   st.Video.Current,
			Pending:   st.Video.Pending,
			Interval:  st.Video.Interval,
			Emitted:   st.Video.Emitted,
			Processed: st.Video.Processed,
		},
		Classification: classificationStatus{
			Busy:    st.Classification.Busy,
			Current: st.Classification.CurrentSource,
			Pending: st.Classification.Pending,
			Settled: st.Classification.Settled,
		},
		Images: st.Images,
	}
	if st.Classification.LastError != nil {
		resp.LastError = st.Classification.LastError.Error()
	}
	select {
	case alert := <-s.orch.Alerts():
		resp.Alert = alert
	default:
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.orch.SetLanguage(req.Language); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	q := collection.Query{
		Filters: make(map[pipeline.Category]string),
		Search:  r.URL.Query().Get("q"),
	}
	for _, cat := range pipeline.Categories {
		if v := r.URL.Query().Get(string(cat)); v != "" {
			q.Filters[cat] = v
		}
	}
	s.writeJSON(w, http.StatusOK, s.orch.Store().Filter(q))
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.orch.Store().Remove(id) {
		s.writeError(w, http.StatusNotFound, "image not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.orch.Store().FilterOptions())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.orch.Store().Export(&buf); err != nil {
		s.logger.Error("Export failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", collection.ExportFileName))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	loc := s.orch.Localizer()
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)

	n, err := s.orch.Store().Import(r.Body)
	switch {
	case errors.Is(err, collection.ErrInvalidImport):
		s.writeError(w, http.StatusBadRequest, loc.T(locale.MsgInvalidJSON))
		return
	case err != nil:
		s.writeError(w, http.StatusBadRequest, loc.T(locale.MsgJSONParseError))
		return
	}

	s.logger.Info("Imported %d image(s)", n)
	s.writeJSON(w, http.StatusOK, importResponse{Imported: n, Message: loc.F(locale.MsgImported, n)})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	loc := s.orch.Localizer()

	var buf bytes.Buffer
	err := s.orch.Store().WriteZip(&buf)
	switch {
	case errors.Is(err, collection.ErrEmptyCollection):
		s.writeError(w, http.StatusNotFound, loc.T(locale.MsgNoImagesToZip))
		return
	case err != nil:
		s.logger.Error("Building archive failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, loc.T(locale.MsgZipError))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="ainspire-images.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, &buf)
}

func (s *Server) handleSaveCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Key) == "" {
		s.writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	if err := s.credentials.Save(r.Context(), strings.TrimSpace(req.Key)); err != nil {
		s.logger.Error("Saving credential failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save credential")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": s.orch.Localizer().T(locale.MsgCredentialSaved)})
}

func (s *Server) handleClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.credentials.Clear(r.Context()); err != nil {
		s.logger.Error("Clearing credential failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to clear credential")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": s.orch.Localizer().T(locale.MsgCredentialCleared)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("Writing response failed: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
