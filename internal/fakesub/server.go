// Package fakesub runs an in-process fake of the publishing platform's two
// hosts, backed by httptest. It implements just enough of the draft, image,
// note and profile endpoints to exercise the real HTTP transport end to end.
package fakesub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// DraftState is the fake's record of one draft.
type DraftState struct {
	ID            int64
	Title         string
	Subtitle      string
	Body          string
	SectionID     int64
	SectionChosen bool
	CoverImage    string
	Audience      string
	Tags          []string
	Published     bool
}

// NoteRecord is one note posted to the fake feed.
type NoteRecord struct {
	ID            int64
	Body          string
	AttachmentIDs []string
}

// Server is the fake platform. Publication and global hosts are separate
// listeners, mirroring the real endpoint split.
type Server struct {
	ProfileID int64

	mu          sync.Mutex
	nextID      int64
	drafts      map[int64]*DraftState
	notes       []NoteRecord
	attachments map[string]string
	uploads     int

	pub    *httptest.Server
	global *httptest.Server
}

// New starts both hosts. Callers must Close the server.
func New() *Server {
	s := &Server{
		ProfileID:   777,
		nextID:      100,
		drafts:      make(map[int64]*DraftState),
		attachments: make(map[string]string),
	}

	pubMux := http.NewServeMux()
	pubMux.HandleFunc("POST /api/v1/drafts", s.auth(s.createDraft))
	pubMux.HandleFunc("GET /api/v1/drafts", s.auth(s.listDrafts))
	pubMux.HandleFunc("GET /api/v1/drafts/{id}", s.auth(s.getDraft))
	pubMux.HandleFunc("PUT /api/v1/drafts/{id}", s.auth(s.updateDraft))
	pubMux.HandleFunc("POST /api/v1/drafts/{id}/publish", s.auth(s.publishDraft))
	pubMux.HandleFunc("DELETE /api/v1/drafts/{id}", s.auth(s.deleteDraft))
	s.pub = httptest.NewServer(pubMux)

	globalMux := http.NewServeMux()
	globalMux.HandleFunc("POST /api/v1/image", s.auth(s.uploadImage))
	globalMux.HandleFunc("POST /api/v1/comment/attachment", s.auth(s.createAttachment))
	globalMux.HandleFunc("POST /api/v1/comment/feed", s.auth(s.createNote))
	globalMux.HandleFunc("GET /api/v1/user/profile/self", s.auth(s.profile))
	s.global = httptest.NewServer(globalMux)

	return s
}

func (s *Server) Close() {
	s.pub.Close()
	s.global.Close()
}

// PublicationURL is the fake publication host's base URL.
func (s *Server) PublicationURL() string { return s.pub.URL }

// GlobalURL is the fake global host's base URL.
func (s *Server) GlobalURL() string { return s.global.URL }

// Draft returns a copy of the stored draft, or nil.
func (s *Server) Draft(id int64) *DraftState {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil
	}
	cp := *d
	return &cp
}

// Notes returns the notes posted so far.
func (s *Server) Notes() []NoteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NoteRecord, len(s.notes))
	copy(out, s.notes)
	return out
}

// Uploads returns how many image uploads the fake has accepted.
func (s *Server) Uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("substack.sid"); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
			return
		}
		next(w, r)
	}
}

func (s *Server) allocID() int64 {
	s.nextID++
	return s.nextID
}

type draftBody struct {
	DraftTitle    string   `json:"draft_title"`
	DraftSubtitle string   `json:"draft_subtitle"`
	DraftBody     string   `json:"draft_body"`
	SectionID     int64    `json:"draft_section_id"`
	SectionChosen bool     `json:"section_chosen"`
	CoverImage    string   `json:"cover_image"`
	Audience      string   `json:"audience"`
	Tags          []string `json:"post_tags"`
}

func (s *Server) createDraft(w http.ResponseWriter, r *http.Request) {
	var body draftBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad body"})
		return
	}

	s.mu.Lock()
	d := &DraftState{
		ID:       s.allocID(),
		Title:    body.DraftTitle,
		Subtitle: body.DraftSubtitle,
		Body:     body.DraftBody,
	}
	s.drafts[d.ID] = d
	p := d.payload()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}
	var body draftBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad body"})
		return
	}

	s.mu.Lock()
	d, found := s.drafts[id]
	if found {
		d.Title = body.DraftTitle
		d.Subtitle = body.DraftSubtitle
		d.Body = body.DraftBody
		d.SectionID = body.SectionID
		d.SectionChosen = body.SectionChosen
		d.CoverImage = body.CoverImage
		d.Audience = body.Audience
		d.Tags = body.Tags
	}
	var p map[string]any
	if found {
		p = d.payload()
	}
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such draft"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) publishDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	s.mu.Lock()
	d, found := s.drafts[id]
	switch {
	case !found:
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such draft"})
		return
	case d.SectionID == 0:
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "section required"})
		return
	}
	d.Published = true
	p := d.payload()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	s.mu.Lock()
	d, found := s.drafts[id]
	if found && d.Published {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "already published"})
		return
	}
	delete(s.drafts, id)
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such draft"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad id"})
		return
	}

	s.mu.Lock()
	d, found := s.drafts[id]
	var p map[string]any
	if found {
		p = d.payload()
	}
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such draft"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listDrafts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]map[string]any, 0, len(s.drafts))
	for _, d := range s.drafts {
		out = append(out, d.payload())
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Image  string `json:"image"`
		PostID int64  `json:"postId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !strings.HasPrefix(body.Image, "data:image/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad image"})
		return
	}

	s.mu.Lock()
	s.uploads++
	n := s.uploads
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"url": "https://cdn.fakesub.test/images/" + strconv.Itoa(n) + ".png",
	})
}

func (s *Server) createAttachment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Type != "link" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad attachment"})
		return
	}

	s.mu.Lock()
	id := "att-" + strconv.FormatInt(s.allocID(), 10)
	s.attachments[id] = body.URL
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BodyJSON      json.RawMessage `json:"bodyJson"`
		AttachmentIDs []string        `json:"attachmentIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad note"})
		return
	}

	s.mu.Lock()
	n := NoteRecord{
		ID:            s.allocID(),
		Body:          string(body.BodyJSON),
		AttachmentIDs: body.AttachmentIDs,
	}
	s.notes = append(s.notes, n)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int64{"id": n.ID})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     s.ProfileID,
		"name":   "Fake Author",
		"handle": "fakeauthor",
	})
}

// AttachmentURL returns the URL stored for an attachment id.
func (s *Server) AttachmentURL(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachments[id]
}

func (d *DraftState) payload() map[string]any {
	p := map[string]any{
		"id":             d.ID,
		"draft_title":    d.Title,
		"draft_subtitle": d.Subtitle,
		"slug":           slugify(d.Title),
		"cover_image":    d.CoverImage,
		"is_published":   d.Published,
	}
	if d.SectionID != 0 {
		p["draft_section_id"] = d.SectionID
	}
	return p
}

func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-':
			return '-'
		}
		return -1
	}, slug)
	return strings.Trim(slug, "-")
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
