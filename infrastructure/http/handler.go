package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/repositories"
	"github.com/daviderandino/ruggine/services"
)

type Handler struct {
	log        *slog.Logger
	authSvc    services.IAuthService
	groupSvc   services.IGroupService
	inviteSvc  services.IInvitationService
	chatSvc    services.IChatService
	users      repositories.IUserRepository
	historyMax int
}

func NewHandler(log *slog.Logger, authSvc services.IAuthService, groupSvc services.IGroupService,
	inviteSvc services.IInvitationService, chatSvc services.IChatService,
	users repositories.IUserRepository, historyMax int) *Handler {
	return &Handler{
		log:        log,
		authSvc:    authSvc,
		groupSvc:   groupSvc,
		inviteSvc:  inviteSvc,
		chatSvc:    chatSvc,
		users:      users,
		historyMax: historyMax,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusCode(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "error", err)
		writeJSON(w, status, ErrorResponse{Error: "an internal server error occurred"})
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// POST /users/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	token, user, err := h.authSvc.Register(req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Token: string(token), User: toUserItem(user)})
}

// POST /users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	token, user, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: string(token), User: toUserItem(user)})
}

// GET /users/by_username/{username}
func (h *Handler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByUsername(chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserItem(user))
}

// POST /groups
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	group, err := h.groupSvc.Create(r.Context(), req.Name, userIDFromCtx(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupItem(group))
}

// GET /groups/by_name/{name}
func (h *Handler) GetGroupByName(w http.ResponseWriter, r *http.Request) {
	group, err := h.groupSvc.GetByName(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupItem(group))
}

// GET /groups/{id}/members
func (h *Handler) GetGroupMembers(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	members, err := h.groupSvc.Members(userIDFromCtx(r.Context()), groupID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MembersResponse{
		Items: lo.Map(members, func(u domain.User, _ int) UserItem { return toUserItem(u) }),
	})
}

// GET /groups/{id}/messages
func (h *Handler) GetGroupMessages(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	messages, err := h.chatSvc.History(userIDFromCtx(r.Context()), groupID, h.historyMax)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessagesResponse{
		Items: lo.Map(messages, func(m domain.Message, _ int) MessageItem { return toMessageItem(m) }),
	})
}

// DELETE /groups/{id}/leave
func (h *Handler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	if err := h.groupSvc.Leave(r.Context(), userIDFromCtx(r.Context()), groupID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /groups/{id}/invite
func (h *Handler) InviteToGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}
	inv, err := h.inviteSvc.Invite(r.Context(), groupID, userIDFromCtx(r.Context()), req.UserToInviteID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvitationItem(inv))
}

// GET /invitations
func (h *Handler) GetPendingInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.inviteSvc.ListPending(userIDFromCtx(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InvitationsResponse{
		Items: lo.Map(invitations, func(i domain.Invitation, _ int) InvitationItem { return toInvitationItem(i) }),
	})
}

// POST /invitations/{id}/accept
func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid invitation id"})
		return
	}
	group, err := h.inviteSvc.Accept(r.Context(), invitationID, userIDFromCtx(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupItem(group))
}

// POST /invitations/{id}/decline
func (h *Handler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid invitation id"})
		return
	}
	if err := h.inviteSvc.Decline(r.Context(), invitationID, userIDFromCtx(r.Context())); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func groupIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid group id"})
		return uuid.Nil, false
	}
	return groupID, true
}

func toUserItem(u domain.User) UserItem {
	return UserItem{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

func toGroupItem(g domain.Group) GroupItem {
	return GroupItem{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt}
}

func toInvitationItem(i domain.Invitation) InvitationItem {
	return InvitationItem{
		ID:            i.ID,
		GroupID:       i.GroupID,
		InviterID:     i.InviterID,
		InvitedUserID: i.InvitedUserID,
		CreatedAt:     i.CreatedAt,
	}
}

func toMessageItem(m domain.Message) MessageItem {
	return MessageItem{
		ID:        m.ID,
		GroupID:   m.GroupID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
