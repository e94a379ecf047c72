package controller

import (
	"net/http"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/model"
)

type registerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

func (c *Controller) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !c.decodeBody(w, r, &req) {
		return
	}

	member := &model.Member{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}

	created, err := c.members.Register(r.Context(), member, req.Password)
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusCreated, "member registered", created)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string        `json:"token"`
	Member *model.Member `json:"member"`
}

func (c *Controller) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !c.decodeBody(w, r, &req) {
		return
	}

	member, err := c.members.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		c.writeJSON(w, http.StatusUnauthorized, Response{Success: false, Message: "invalid email or password"})
		return
	}

	token := c.tokens.Issue(auth.Identity{MemberID: member.ID, Role: member.Role})

	c.respondData(w, http.StatusOK, loginResponse{Token: token, Member: member})
}
