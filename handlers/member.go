package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/famoney/famoney-api/models"
	"github.com/famoney/famoney-api/services"
)

type MemberHandler struct {
	Members *services.MemberService
	WS      *WSHandler
}

func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.Members.List(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *MemberHandler) Invite(c *gin.Context) {
	var req models.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitation, err := h.Members.Invite(c.Request.Context(), userID(c), c.Param("id"), req.Email, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invitation)
}

func (h *MemberHandler) ListInvitations(c *gin.Context) {
	invitations, err := h.Members.ListInvitations(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invitations)
}

func (h *MemberHandler) CancelInvitation(c *gin.Context) {
	err := h.Members.CancelInvitation(c.Request.Context(), userID(c), c.Param("id"), c.Param("invitationId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invitation cancelled"})
}

func (h *MemberHandler) AcceptInvitation(c *gin.Context) {
	var req models.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.Members.AcceptInvitation(c.Request.Context(), userID(c), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(member.LedgerID, "member_joined", userID(c))
	c.JSON(http.StatusCreated, member)
}

func (h *MemberHandler) ChangeRole(c *gin.Context) {
	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.Members.ChangeRole(c.Request.Context(), userID(c), c.Param("id"), c.Param("memberId"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(c.Param("id"), "member_updated", userID(c))
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) Remove(c *gin.Context) {
	if err := h.Members.Remove(c.Request.Context(), userID(c), c.Param("id"), c.Param("memberId")); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(c.Param("id"), "member_removed", userID(c))
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}
