package controller

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/library_service/internal/auth"
	"github.com/Freeeeeet/library_service/internal/model"
	"github.com/shopspring/decimal"
)

type createBookRequest struct {
	ISBN        string          `json:"isbn_no"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Publisher   string          `json:"publisher"`
	Genre       string          `json:"genre"`
	Pages       int             `json:"pages"`
	TotalCopies int             `json:"total_copies"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

func (c *Controller) handleCreateBook(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	var req createBookRequest
	if !c.decodeBody(w, r, &req) {
		return
	}

	book := &model.Book{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Genre:       req.Genre,
		Pages:       req.Pages,
		TotalCopies: req.TotalCopies,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}

	result, created, err := c.catalog.CreateOrRestock(r.Context(), identity, book)
	if err != nil {
		c.respondError(w, err)
		return
	}

	if created {
		c.respondMessage(w, http.StatusCreated, "book created", result)
		return
	}
	c.respondMessage(w, http.StatusOK, "book restocked", result)
}

func (c *Controller) handleDeleteBook(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	isbn := r.PathValue("isbn")

	if err := c.catalog.DeleteByISBN(r.Context(), identity, isbn); err != nil {
		c.respondError(w, err)
		return
	}

	c.respondMessage(w, http.StatusOK, "book deleted", nil)
}

func (c *Controller) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := c.catalog.GetByISBN(r.Context(), r.PathValue("isbn"))
	if err != nil {
		c.respondError(w, err)
		return
	}

	c.respondData(w, http.StatusOK, book)
}

type pagedBooksResponse struct {
	Books      []*model.Book `json:"books"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

func (c *Controller) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	books, totalPages, err := c.catalog.Search(r.Context(), q.Get("q"), page, pageSize)
	if err != nil {
		c.respondError(w, err)
		return
	}

	if page < 1 {
		page = 1
	}
	c.respondData(w, http.StatusOK, pagedBooksResponse{
		Books:      books,
		Page:       page,
		TotalPages: totalPages,
	})
}
