package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/model"
)

func (c *Controller) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		c.writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "invalid id"})
		return 0, false
	}
	return id, true
}

type createBorrowRequest struct {
	BookID int64 `json:"book_id"`
}

func (c *Controller) handleCreateRequest(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	var req createBorrowRequest
	if !c.decodeBody(w, r, &req) {
		return
	}

	request, err := c.lending.CreateRequest(r.Context(), identity, req.BookID)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusCreated, "borrow request created", request)
}

type pagedRequestsResponse struct {
	Requests   []*model.BorrowRequest `json:"requests"`
	Page       int                    `json:"page"`
	TotalPages int                    `json:"total_pages"`
}

func (c *Controller) handleListRequests(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	requests, totalPages, err := c.lending.ListRequests(r.Context(), identity, page, pageSize)
	if err != nil {
		c.respondError(w, err)
		return
	}

	if page < 1 {
		page = 1
	}
	c.respondData(w, http.StatusOK, pagedRequestsResponse{
		Requests:   requests,
		Page:       page,
		TotalPages: totalPages,
	})
}

func (c *Controller) handleMyRequests(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	requests, err := c.lending.ListMemberRequests(r.Context(), identity, identity.MemberID, r.URL.Query().Get("status"))
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondData(w, http.StatusOK, requests)
}

func (c *Controller) handleApproveRequest(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	request, err := c.lending.Approve(r.Context(), identity, id)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusOK, "request approved", request)
}

func (c *Controller) handleRejectRequest(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	request, err := c.lending.Reject(r.Context(), identity, id)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusOK, "request rejected", request)
}

func (c *Controller) handleReturnBook(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	request, err := c.lending.Return(r.Context(), identity, id)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusOK, "book returned", request)
}

func (c *Controller) handleCancelRequest(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	if err := c.lending.Cancel(r.Context(), identity, id); err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusOK, "request canceled", nil)
}

func (c *Controller) handleDueRequests(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	due, err := c.stats.DueOn(r.Context(), identity, r.URL.Query().Get("date"))
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondData(w, http.StatusOK, due)
}

func (c *Controller) handleNotifyDue(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	if c.notifier == nil {
		c.writeJSON(w, http.StatusServiceUnavailable, Response{Success: false, Message: "notifier is not configured"})
		return
	}

	date := r.URL.Query().Get("date")
	due, err := c.stats.DueOn(r.Context(), identity, date)
	if err != nil {
		c.respondError(w, err)
		return
	}

	day := model.UTCDate(time.Now())
	if parsed, perr := time.ParseInLocation("2006-01-02", date, time.UTC); perr == nil {
		day = parsed
	}

	if err := c.notifier.SendDueDigest(r.Context(), day, due); err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusOK, "due digest sent", nil)
}
