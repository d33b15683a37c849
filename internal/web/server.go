package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tazhate/noxd/internal/alarms"
	"github.com/tazhate/noxd/internal/audio"
	"github.com/tazhate/noxd/internal/domain"
	"github.com/tazhate/noxd/internal/ical"
	"github.com/tazhate/noxd/internal/settings"
	"github.com/tazhate/noxd/internal/speech"
	"github.com/tazhate/noxd/internal/tones"
	"github.com/tazhate/noxd/internal/wake"
)

// How long a server-side tone audition runs before auto-stopping.
const tonePreviewDuration = 4 * time.Second

// Server exposes the daemon's JSON API and the calendar feed.
type Server struct {
	alarms   *alarms.Store
	settings *settings.Service
	gateway  *speech.Gateway
	tones    *tones.Cache
	wake     *wake.Orchestrator
	router   *http.ServeMux
	clock    func() time.Time
}

func NewServer(store *alarms.Store, svc *settings.Service, gw *speech.Gateway, cache *tones.Cache, orch *wake.Orchestrator) *Server {
	s := &Server{
		alarms:   store,
		settings: svc,
		gateway:  gw,
		tones:    cache,
		wake:     orch,
		router:   http.NewServeMux(),
		clock:    time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /api/alarms", s.handleListAlarms)
	s.router.HandleFunc("POST /api/alarms", s.handleCreateAlarm)
	s.router.HandleFunc("PATCH /api/alarms/{id}", s.handleUpdateAlarm)
	s.router.HandleFunc("DELETE /api/alarms/{id}", s.handleDeleteAlarm)
	s.router.HandleFunc("POST /api/alarms/{id}/toggle", s.handleToggleAlarm)
	s.router.HandleFunc("POST /api/alarms/{id}/dismiss", s.handleDismissAlarm)

	s.router.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.router.HandleFunc("PUT /api/settings", s.handlePutSettings)
	s.router.HandleFunc("POST /api/settings/cloud-key", s.handleCloudKey)

	s.router.HandleFunc("POST /api/speak/preview", s.handleSpeakPreview)
	s.router.HandleFunc("POST /api/speak/stop", s.handleSpeakStop)

	s.router.HandleFunc("GET /api/tones", s.handleListTones)
	s.router.HandleFunc("GET /api/tones/{theme}", s.handleToneFile)
	s.router.HandleFunc("POST /api/tones/{theme}/preview", s.handleTonePreview)

	s.router.HandleFunc("GET /calendar.ics", s.handleCalendar)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Writing response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Alarms

func (s *Server) handleListAlarms(w http.ResponseWriter, r *http.Request) {
	list, err := s.alarms.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []domain.Alarm{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateAlarm(w http.ResponseWriter, r *http.Request) {
	var in alarms.NewAlarmInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	alarm, err := s.alarms.Add(r.Context(), in)
	if err != nil {
		if alarm != nil {
			// Persisted but disabled: registration failed.
			writeJSON(w, http.StatusAccepted, alarm)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, alarm)
}

func (s *Server) handleUpdateAlarm(w http.ResponseWriter, r *http.Request) {
	var patch domain.AlarmPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	alarm, err := s.alarms.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		if alarm != nil {
			writeJSON(w, http.StatusAccepted, alarm)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, alarm)
}

func (s *Server) handleDeleteAlarm(w http.ResponseWriter, r *http.Request) {
	if err := s.alarms.Remove(r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleAlarm(w http.ResponseWriter, r *http.Request) {
	if err := s.alarms.Toggle(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDismissAlarm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.wake.Dismiss(id)
	if err := s.alarms.DismissOneShot(id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Settings

type settingsView struct {
	WakeMessagesEnabled bool                 `json:"wakeMessagesEnabled"`
	SassLevel           domain.SassLevel     `json:"sassLevel"`
	TTSEnabled          bool                 `json:"ttsEnabled"`
	TTS                 domain.TTSOptions    `json:"tts"`
	CloudKeySet         bool                 `json:"cloudKeySet"`
	Languages           []domain.TTSLanguage `json:"languages"`
}

type settingsUpdate struct {
	WakeMessagesEnabled *bool              `json:"wakeMessagesEnabled"`
	SassLevel           *domain.SassLevel  `json:"sassLevel"`
	TTSEnabled          *bool              `json:"ttsEnabled"`
	TTS                 *domain.TTSOptions `json:"tts"`
}

func (s *Server) settingsView() settingsView {
	wakeSettings := s.settings.Wake()
	return settingsView{
		WakeMessagesEnabled: wakeSettings.MessagesEnabled,
		SassLevel:           wakeSettings.Sass,
		TTSEnabled:          s.settings.TTSEnabled(),
		TTS:                 s.settings.TTSOptions(),
		CloudKeySet:         s.settings.CloudAPIKey() != "",
		Languages:           domain.TTSLanguages,
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settingsView())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var in settingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if in.WakeMessagesEnabled != nil {
		if err := s.settings.SetWakeMessagesEnabled(*in.WakeMessagesEnabled); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	if in.SassLevel != nil {
		if err := s.settings.SetSassLevel(*in.SassLevel); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if in.TTSEnabled != nil {
		if err := s.settings.SetTTSEnabled(*in.TTSEnabled); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	if in.TTS != nil {
		if err := s.settings.SetTTSOptions(*in.TTS); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.settingsView())
}

func (s *Server) handleCloudKey(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	valid := true
	if in.Key != "" {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		valid = s.gateway.ValidateAPIKey(ctx, in.Key)
	}
	if valid {
		if err := s.settings.SetCloudAPIKey(in.Key); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// Speech preview

func (s *Server) handleSpeakPreview(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if in.Message == "" {
		in.Message = "This is how your wake-up message will sound."
	}
	// Detached from the request context so the utterance survives the
	// response being written.
	go s.gateway.Speak(context.Background(), in.Message, s.settings.TTSOptions(), s.settings.CloudAPIKey())
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSpeakStop(w http.ResponseWriter, r *http.Request) {
	s.gateway.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// Tones

func (s *Server) handleListTones(w http.ResponseWriter, r *http.Request) {
	type toneView struct {
		Theme domain.Theme `json:"theme"`
		Label string       `json:"label"`
	}
	out := make([]toneView, 0, len(domain.Themes))
	for _, theme := range domain.Themes {
		out = append(out, toneView{Theme: theme, Label: domain.ThemeLabels[theme]})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleTonePreview plays the theme through the daemon's own speakers for a
// few seconds. The picker UI uses it to audition themes.
func (s *Server) handleTonePreview(w http.ResponseWriter, r *http.Request) {
	theme := domain.Theme(r.PathValue("theme"))
	if !theme.Valid() {
		http.NotFound(w, r)
		return
	}
	playback := audio.PlayLoop(tones.Generate(theme))
	if playback == nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("no audio device available"))
		return
	}
	time.AfterFunc(tonePreviewDuration, playback.Stop)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleToneFile(w http.ResponseWriter, r *http.Request) {
	theme := domain.Theme(r.PathValue("theme"))
	if !theme.Valid() {
		http.NotFound(w, r)
		return
	}
	path, err := s.tones.ToneURI(theme)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeContent(w, r, string(theme)+".wav", time.Time{}, f)
}

// Calendar feed

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	list, err := s.alarms.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	data, err := ical.Export(list, s.clock())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
