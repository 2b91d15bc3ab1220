package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"roomchat/auth"
	"roomchat/domain"
	"roomchat/errors"
	"roomchat/repositories"
	"roomchat/services"
)

const maxUploadSize = 32 << 20

type contextKey string

const userIDKey contextKey = "userID"

// API carries the HTTP handlers over the service layer. Handlers do
// decoding, auth extraction and status mapping only; every rule lives
// in services.
type API struct {
	log           *slog.Logger
	tokens        *auth.TokenManager
	users         repositories.IUserRepository
	rooms         *services.RoomService
	messages      *services.MessageService
	notifications *services.NotificationService
	friendships   *services.FriendshipService
	historyLines  int
}

func NewAPI(log *slog.Logger, tokens *auth.TokenManager, users repositories.IUserRepository,
	rooms *services.RoomService, messages *services.MessageService,
	notifications *services.NotificationService, friendships *services.FriendshipService,
	historyLines int) *API {
	return &API{
		log:           log,
		tokens:        tokens,
		users:         users,
		rooms:         rooms,
		messages:      messages,
		notifications: notifications,
		friendships:   friendships,
		historyLines:  historyLines,
	}
}

func (a *API) Routes(router *mux.Router) {
	router.HandleFunc("/api/auth/register", a.register).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", a.login).Methods(http.MethodPost)

	authed := router.NewRoute().Subrouter()
	authed.Use(a.authenticate)
	authed.HandleFunc("/api/rooms", a.listRooms).Methods(http.MethodGet)
	authed.HandleFunc("/api/rooms", a.createRoom).Methods(http.MethodPost)
	authed.HandleFunc("/api/rooms/mine", a.myRooms).Methods(http.MethodGet)
	authed.HandleFunc("/api/rooms/{roomId}", a.deleteRoom).Methods(http.MethodDelete)
	authed.HandleFunc("/api/rooms/{roomId}/enter", a.enterRoom).Methods(http.MethodPost)
	authed.HandleFunc("/api/rooms/{roomId}/exit", a.exitRoom).Methods(http.MethodPost)
	authed.HandleFunc("/api/rooms/{roomId}/kick", a.kickUser).Methods(http.MethodPost)
	authed.HandleFunc("/api/rooms/{roomId}/invite", a.inviteUser).Methods(http.MethodPost)
	authed.HandleFunc("/api/rooms/{roomId}/nickname", a.changeNickname).Methods(http.MethodPut)
	authed.HandleFunc("/api/rooms/{roomId}/init", a.initRoom).Methods(http.MethodGet)
	authed.HandleFunc("/api/rooms/{roomId}/messages", a.sendMessage).Methods(http.MethodPost)
	authed.HandleFunc("/api/rooms/{roomId}/messages", a.messageHistory).Methods(http.MethodGet)
	authed.HandleFunc("/api/rooms/{roomId}/files", a.uploadFile).Methods(http.MethodPost)
	authed.HandleFunc("/api/messages/{messageId}", a.editMessage).Methods(http.MethodPut)
	authed.HandleFunc("/api/messages/{messageId}", a.deleteMessage).Methods(http.MethodDelete)
	authed.HandleFunc("/api/notifications", a.listNotifications).Methods(http.MethodGet)
	authed.HandleFunc("/api/notifications/{id}/read", a.markNotificationRead).Methods(http.MethodPost)
	authed.HandleFunc("/api/friends", a.listFriends).Methods(http.MethodGet)
	authed.HandleFunc("/api/friends/requests", a.requestFriendship).Methods(http.MethodPost)
	authed.HandleFunc("/api/friends/requests/{userId}/accept", a.acceptFriendship).Methods(http.MethodPost)
}

// authenticate validates the bearer token and stashes the user id on the
// request context.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		userID, err := a.tokens.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func callerID(r *http.Request) domain.UserID {
	userID, _ := r.Context().Value(userIDKey).(domain.UserID)
	return userID
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Nickname string `json:"nickname"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Nickname == "" {
		writeError(w, http.StatusBadRequest, "username and nickname are required")
		return
	}
	if _, err := a.users.FindByUsername(r.Context(), req.Username); err == nil {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	userID, err := a.users.Create(r.Context(), domain.UserProfile{Username: req.Username, Nickname: req.Nickname})
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	a.issueToken(w, userID)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if !decode(w, r, &req) {
		return
	}
	profile, err := a.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	a.issueToken(w, profile.ID)
}

func (a *API) issueToken(w http.ResponseWriter, userID domain.UserID) {
	token, err := a.tokens.Generate(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "token": token})
}

func (a *API) createRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Visibility string `json:"visibility"`
		Password   string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	roomID, err := a.rooms.CreateRoom(r.Context(), services.CreateRoomCommand{
		Name:       req.Name,
		Visibility: domain.Visibility(req.Visibility),
		OwnerID:    callerID(r),
		Password:   req.Password,
	})
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"roomId": roomID})
}

func (a *API) listRooms(w http.ResponseWriter, r *http.Request) {
	listings, err := a.rooms.GetRoomList(r.Context(), callerID(r))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (a *API) myRooms(w http.ResponseWriter, r *http.Request) {
	listings, err := a.rooms.FindRoomsByUser(r.Context(), callerID(r))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (a *API) enterRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomId")
	if !ok {
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if _, err := a.rooms.EnterRoom(r.Context(), domain.RoomID(roomID), callerID(r), req.Password); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) exitRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomId")
	if !ok {
		return
	}
	if err := a.rooms.ExitRoom(r.Context(), domain.RoomID(roomID), callerID(r)); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) deleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomId")
	if !ok {
		return
	}
	if err := a.rooms.DeleteRoom(r.Context(), domain.RoomID(roomID), callerID(r)); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) kickUser(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomId")
	if !ok {
		return
	}
	var req struct {
		UserID domain.UserID `json:"userId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.rooms.KickUser(r.Context(), domain.RoomID(roomID), callerID(r), req.UserID); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) inviteUser(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomId")
	if !ok {
		return
	}
	var req struct {
		UserID domain.UserID `json:"userId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.rooms.InviteUser(r.Context(), domain.RoomID(roomID), callerID(r), req.UserID); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) changeNickname(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomId")
	if !ok {
		return
	}
	var req struct {
		Nickname string `json:"nickname"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := a.rooms.ChangeNickname(r.Context(), services.ChangeNicknameCommand{
		RoomID:      domain.RoomID(roomID),
		UserID:      callerID(r),
		NewNickname: req.Nickname,
	})
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) initRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomId")
	if !ok {
		return
	}
	lines := a.historyLines
	if raw := r.URL.Query().Get("lines"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			lines = parsed
		}
	}
	data, err := a.rooms.InitRoom(r.Context(), domain.RoomID(roomID), callerID(r), lines)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (a *API) sendMessage(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomId")
	if !ok {
		return
	}
	var req struct {
		Content      string            `json:"content"`
		Kind         string            `json:"msgType"`
		ParentID     *domain.MessageID `json:"parentId"`
		MentionedIDs []domain.UserID   `json:"mentionedUserIds"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Kind == "" {
		req.Kind = string(domain.KindText)
	}
	msg, err := a.messages.SendMessage(r.Context(), services.SendMessageCommand{
		RoomID:       domain.RoomID(roomID),
		AuthorID:     callerID(r),
		Content:      req.Content,
		Kind:         domain.MessageKind(req.Kind),
		ParentID:     req.ParentID,
		MentionedIDs: req.MentionedIDs,
	})
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"messageId": msg.ID})
}

func (a *API) messageHistory(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomId")
	if !ok {
		return
	}
	query := services.HistoryQuery{RoomID: domain.RoomID(roomID), RowCount: a.historyLines}
	if raw := r.URL.Query().Get("beginId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "beginId must be an integer")
			return
		}
		beginID := domain.MessageID(parsed)
		query.BeginID = &beginID
	}
	if raw := r.URL.Query().Get("count"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			query.RowCount = parsed
		}
	}
	payloads, err := a.messages.GetMessageHistory(r.Context(), query)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (a *API) uploadFile(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomId")
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload failed")
		return
	}
	msg, err := a.messages.UploadChatFile(r.Context(), domain.RoomID(roomID), callerID(r), header.Filename, content)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"messageId": msg.ID, "content": msg.Content, "msgType": msg.Kind})
}

func (a *API) editMessage(w http.ResponseWriter, r *http.Request) {
	messageID, ok := pathID(w, r, "messageId")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.messages.EditMessage(r.Context(), domain.MessageID(messageID), callerID(r), req.Content); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) deleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID, ok := pathID(w, r, "messageId")
	if !ok {
		return
	}
	if err := a.messages.DeleteMessage(r.Context(), domain.MessageID(messageID), callerID(r)); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	notifications, err := a.notifications.Recent(r.Context(), callerID(r), limit)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (a *API) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.notifications.MarkRead(r.Context(), callerID(r), uint64(id)); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := a.friendships.Friends(r.Context(), callerID(r))
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

func (a *API) requestFriendship(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID domain.UserID `json:"userId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := a.friendships.RequestFriendship(r.Context(), callerID(r), req.UserID); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) acceptFriendship(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	if err := a.friendships.AcceptFriendship(r.Context(), callerID(r), domain.UserID(requesterID)); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.IsForbidden(err):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	case errors.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.log.Error(fmt.Sprintf("Request failed: %v", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
