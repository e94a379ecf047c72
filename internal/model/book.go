package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book книга каталога. ISBN — натуральный ключ, id — суррогатный.
type Book struct {
	ID              int64           `json:"id"`
	ISBN            string          `json:"isbn_no"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Publisher       string          `json:"publisher"`
	Genre           string          `json:"genre"`
	Pages           int             `json:"pages"`
	TotalCopies     int             `json:"total_copies"`
	AvailableCopies int             `json:"available_copies"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        string          `json:"image_url,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Restock добавляет полученные экземпляры к общему и доступному количеству
func (b *Book) Restock(extra int) {
	b.TotalCopies += extra
	b.AvailableCopies += extra
}

// HasAvailableCopy проверяет что есть хотя бы один свободный экземпляр
func (b *Book) HasAvailableCopy() bool {
	return b.AvailableCopies > 0
}

// ValidISBN проверяет что ISBN состоит ровно из 13 цифр
func ValidISBN(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}
	for _, c := range isbn {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
