package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kharcha/kharcha/internal/middleware"
)

type createGroupRequest struct {
	Name string `json:"name"`
}

// CreateGroup creates a group with the caller as its first admin.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groups.Create(r.Context(), middleware.GetUserID(r.Context()), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

// ListGroups returns the groups the caller belongs to.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponses(groups))
}

// GetGroup returns one group. The caller must be a member.
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "groupId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

type addMemberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// AddGroupMember adds a user to a group. Admin only.
func (h *Handler) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groups.AddMember(r.Context(),
		middleware.GetUserID(r.Context()), chi.URLParam(r, "groupId"), req.UserID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}
