package controller

import (
	"net/http"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/model"
)

func (c *Controller) handleListProfessors(w http.ResponseWriter, r *http.Request) {
	professors, err := c.bookings.ListProfessors(r.Context())
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondData(w, http.StatusOK, professors)
}

type createProfessorRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	ShortBio     string `json:"short_bio"`
	CalendlyLink string `json:"calendly_link"`
}

func (c *Controller) handleCreateProfessor(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	var req createProfessorRequest
	if !c.decodeBody(w, r, &req) {
		return
	}

	professor := &model.Professor{
		Name:         req.Name,
		Email:        req.Email,
		Department:   req.Department,
		ShortBio:     req.ShortBio,
		CalendlyLink: req.CalendlyLink,
	}

	created, err := c.bookings.CreateProfessor(r.Context(), identity, professor)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusCreated, "professor created", created)
}

func (c *Controller) handleDeleteProfessor(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	if err := c.bookings.DeleteProfessor(r.Context(), identity, id); err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusOK, "professor deleted", nil)
}

func (c *Controller) handleBookConsultation(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	access, err := c.bookings.BookConsultation(r.Context(), identity, id)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusOK, "consultation booked", access)
}
