// Package devserver is a local stand-in for the task tracker backend. It
// serves the notifications API over SQLite so the client can be run and
// tested end to end.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/nhle/tasknotify/internal/model"
	"github.com/nhle/tasknotify/internal/store"
)

// Server serves the notifications API.
type Server struct {
	store  store.Store
	secret []byte
	log    zerolog.Logger
	now    func() time.Time
}

// New creates a server backed by st that accepts tokens signed with secret.
func New(st store.Store, secret string, log zerolog.Logger) *Server {
	return &Server{
		store:  st,
		secret: []byte(secret),
		log:    log.With().Str("component", "devserver").Logger(),
		now:    time.Now,
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/auth/me", s.me).Methods(http.MethodGet)
	api.HandleFunc("/auth/me", s.updateMe).Methods(http.MethodPut)

	n := api.PathPrefix("/notifications").Subrouter()
	n.HandleFunc("/", s.listNotifications).Methods(http.MethodGet)
	n.HandleFunc("/", s.createNotification).Methods(http.MethodPost)
	n.HandleFunc("/types", s.notificationTypes).Methods(http.MethodGet)
	n.HandleFunc("/unread-count", s.unreadCount).Methods(http.MethodGet)
	n.HandleFunc("/read-all", s.markAllRead).Methods(http.MethodPost)
	n.HandleFunc("/delete-all", s.deleteAll).Methods(http.MethodDelete)
	n.HandleFunc("/{id:[0-9]+}/read", s.markRead).Methods(http.MethodPost)
	n.HandleFunc("/{id:[0-9]+}", s.deleteNotification).Methods(http.MethodDelete)

	r.Use(s.logRequests)
	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var upd model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := currentUser(r)
	if upd.TelegramNotifyTypes != nil {
		for _, t := range upd.TelegramNotifyTypes {
			if !t.Known() {
				writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown notification type %q", t))
				return
			}
		}
		if err := s.store.SetTelegramNotifyTypes(r.Context(), user.ID, upd.TelegramNotifyTypes); err != nil {
			s.internalError(w, err)
			return
		}
	}

	updated, err := s.store.GetUserByUsername(r.Context(), user.Username)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	filter := store.NotificationFilter{Limit: 50}

	q := r.URL.Query()
	if v := q.Get("unread_only"); v != "" {
		unread, err := strconv.ParseBool(v)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "unread_only must be a boolean")
			return
		}
		filter.UnreadOnly = unread
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeDetail(w, http.StatusUnprocessableEntity, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	notifications, err := s.store.ListNotifications(r.Context(), currentUser(r).ID, filter)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

type createRequest struct {
	UserID    int64                  `json:"user_id"`
	TaskID    *int64                 `json:"task_id"`
	ProjectID *int64                 `json:"project_id"`
	TaskTitle string                 `json:"task_title"`
	Type      model.NotificationType `json:"notification_type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
}

func (s *Server) createNotification(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Type == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "notification_type and title are required")
		return
	}
	if req.UserID == 0 {
		req.UserID = currentUser(r).ID
	}

	if req.TaskID != nil && req.ProjectID != nil && req.TaskTitle != "" {
		err := s.store.UpsertTask(r.Context(), store.TaskRef{
			ID:        *req.TaskID,
			ProjectID: *req.ProjectID,
			Title:     req.TaskTitle,
		})
		if err != nil {
			s.internalError(w, err)
			return
		}
	}

	created, err := s.store.CreateNotification(r.Context(), model.Notification{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   req.Title,
		Message: composeMessage(req.TaskID, req.Message),
		TaskID:  req.TaskID,
	})
	if err != nil {
		s.internalError(w, err)
		return
	}
	if me := currentUser(r); me.ID == created.UserID && me.ForwardsToTelegram(created.Type) {
		s.log.Info().
			Int64("notification", created.ID).
			Str("type", string(created.Type)).
			Msg("would forward to telegram")
	}
	writeJSON(w, http.StatusCreated, created)
}

// composeMessage prefixes the message with the task reference.
func composeMessage(taskID *int64, message string) string {
	if taskID == nil {
		return message
	}
	ref := fmt.Sprintf("Task #%d", *taskID)
	if message == "" {
		return ref
	}
	return ref + ".\n" + message
}

func (s *Server) notificationTypes(w http.ResponseWriter, _ *http.Request) {
	types := make([]model.TypeLabel, 0, len(model.NotificationTypes))
	for _, t := range model.NotificationTypes {
		types = append(types, model.TypeLabel{Type: t, Label: t.Label()})
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.UnreadCount(r.Context(), currentUser(r).ID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.UnreadCount{Count: count})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	err := s.store.MarkNotificationRead(r.Context(), currentUser(r).ID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "Notification not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Marked as read"})
}

func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.MarkAllNotificationsRead(r.Context(), currentUser(r).ID); err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

func (s *Server) deleteAll(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.DeleteAllNotifications(r.Context(), currentUser(r).ID); err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All notifications deleted"})
}

func (s *Server) deleteNotification(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	err := s.store.DeleteNotification(r.Context(), currentUser(r).ID, id)
	if errors.Is(err, store.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "Notification not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error().Err(err).Msg("request failed")
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
