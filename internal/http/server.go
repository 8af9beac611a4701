package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studyhub/server/internal/auth"
	"studyhub/server/internal/config"
	"studyhub/server/internal/crypto"
	"studyhub/server/internal/model"
	"studyhub/server/internal/repository"
)

type Server struct {
	cfg    config.Config
	store  *repository.Store
	logger *slog.Logger
}

func NewServer(cfg config.Config, store *repository.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, store: store, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/flashcards", s.handleListFlashcards)
			r.Post("/flashcards", s.handleCreateFlashcard)
			r.Put("/flashcards/{flashcardID}", s.handleUpdateFlashcard)
			r.Delete("/flashcards/{flashcardID}", s.handleDeleteFlashcard)
			r.Get("/notes", s.handleListNotes)
			r.Post("/notes", s.handleCreateNote)
			r.Delete("/notes/{noteID}", s.handleDeleteNote)
			r.Get("/progress", s.handleProgress)
		})
	})

	return r
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateSignup(req.Name, req.Email, req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	user := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.TokenTTL, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  userSummary{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Same outcome as a wrong password so emails cannot be
			// enumerated.
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if err := crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.TokenTTL, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  userSummary{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

type flashcardResponse struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Front     string `json:"front"`
	Back      string `json:"back"`
	Mastered  bool   `json:"mastered"`
	CreatedAt string `json:"createdAt"`
}

type createFlashcardRequest struct {
	Subject string `json:"subject"`
	Front   string `json:"front"`
	Back    string `json:"back"`
}

type updateFlashcardRequest struct {
	Subject  *string `json:"subject,omitempty"`
	Front    *string `json:"front,omitempty"`
	Back     *string `json:"back,omitempty"`
	Mastered *bool   `json:"mastered,omitempty"`
}

func (s *Server) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	cards, err := s.store.ListFlashcards(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	resp := make([]flashcardResponse, 0, len(cards))
	for _, card := range cards {
		resp = append(resp, mapFlashcardResponse(card))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	var req createFlashcardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateFlashcardInput(req.Subject, req.Front, req.Back); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	card := model.Flashcard{
		ID:        uuid.NewString(),
		OwnerID:   claims.UserID,
		Subject:   req.Subject,
		Front:     req.Front,
		Back:      req.Back,
		Mastered:  false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateFlashcard(r.Context(), card); err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, mapFlashcardResponse(card))
}

func (s *Server) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}
	cardID := chi.URLParam(r, "flashcardID")
	if uuid.Validate(cardID) != nil {
		// A malformed id is indistinguishable from a missing record.
		writeError(w, http.StatusNotFound, "Flashcard not found")
		return
	}

	var req updateFlashcardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := repository.FlashcardUpdate{Mastered: req.Mastered}
	if req.Subject != nil && strings.TrimSpace(*req.Subject) != "" {
		update.Subject = req.Subject
	}
	if req.Front != nil && strings.TrimSpace(*req.Front) != "" {
		update.Front = req.Front
	}
	if req.Back != nil && strings.TrimSpace(*req.Back) != "" {
		update.Back = req.Back
	}

	card, err := s.store.UpdateFlashcard(r.Context(), claims.UserID, cardID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Flashcard not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, mapFlashcardResponse(card))
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}
	cardID := chi.URLParam(r, "flashcardID")
	if uuid.Validate(cardID) != nil {
		writeError(w, http.StatusNotFound, "Flashcard not found")
		return
	}

	deleted, err := s.store.DeleteFlashcard(r.Context(), claims.UserID, cardID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Flashcard not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Flashcard deleted"})
}

type noteResponse struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

type createNoteRequest struct {
	Subject string `json:"subject"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	notes, err := s.store.ListNotes(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	resp := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		resp = append(resp, mapNoteResponse(note))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateNoteInput(req.Subject, req.Title, req.Content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	note := model.Note{
		ID:        uuid.NewString(),
		OwnerID:   claims.UserID,
		Subject:   req.Subject,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateNote(r.Context(), note); err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, mapNoteResponse(note))
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}
	noteID := chi.URLParam(r, "noteID")
	if uuid.Validate(noteID) != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	deleted, err := s.store.DeleteNote(r.Context(), claims.UserID, noteID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Note not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted"})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	cards, err := s.store.ListFlashcards(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, aggregateProgress(cards))
}

// aggregateProgress folds the owner's current flashcards into
// per-subject counts. Subjects match by exact string.
func aggregateProgress(cards []model.Flashcard) map[string]model.SubjectProgress {
	progress := make(map[string]model.SubjectProgress, len(cards))
	for _, card := range cards {
		entry := progress[card.Subject]
		entry.Total++
		if card.Mastered {
			entry.Mastered++
		}
		progress[card.Subject] = entry
	}
	return progress
}

func mapFlashcardResponse(card model.Flashcard) flashcardResponse {
	return flashcardResponse{
		ID:        card.ID,
		Subject:   card.Subject,
		Front:     card.Front,
		Back:      card.Back,
		Mastered:  card.Mastered,
		CreatedAt: card.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapNoteResponse(note model.Note) noteResponse {
	return noteResponse{
		ID:        note.ID,
		Subject:   note.Subject,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func validateSignup(name, email, password string) string {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return "Name, email and password are required"
	}
	return ""
}

func validateFlashcardInput(subject, front, back string) string {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(front) == "" || strings.TrimSpace(back) == "" {
		return "Subject, front and back are required"
	}
	return ""
}

func validateNoteInput(subject, title, content string) string {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return "Subject, title and content are required"
	}
	return ""
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}

type claimsKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	value := ctx.Value(claimsKey{})
	claims, _ := value.(*auth.Claims)
	return claims
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
