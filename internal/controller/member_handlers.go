package controller

import (
	"net/http"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/model"
)

func (c *Controller) handleListMembers(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	members, err := c.members.List(r.Context(), identity)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondData(w, http.StatusOK, members)
}

func (c *Controller) handleGetMember(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	member, err := c.members.GetByID(r.Context(), identity, id)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondData(w, http.StatusOK, member)
}

type updateMemberRequest struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	PhoneNumber      string `json:"phone_number"`
	Address          string `json:"address"`
	MembershipStatus string `json:"membership_status"`
}

func (c *Controller) handleUpdateMember(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	var req updateMemberRequest
	if !c.decodeBody(w, r, &req) {
		return
	}

	patch := &model.Member{
		ID:               id,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		PhoneNumber:      req.PhoneNumber,
		Address:          req.Address,
		MembershipStatus: model.MembershipStatus(req.MembershipStatus),
	}

	member, err := c.members.Update(r.Context(), identity, patch)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusOK, "member updated", member)
}

func (c *Controller) handleDeleteMember(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	if err := c.members.Delete(r.Context(), identity, id); err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusOK, "member deleted", nil)
}

func (c *Controller) handleMemberStats(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	stats, err := c.stats.MemberStats(r.Context(), identity, id)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondData(w, http.StatusOK, stats)
}

func (c *Controller) handleMemberPayments(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	payments, err := c.bookings.ListPayments(r.Context(), identity, id)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondData(w, http.StatusOK, payments)
}
