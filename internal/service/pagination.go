package service

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NormalizePage приводит номер страницы и её размер к допустимым значениям
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// TotalPages считает количество страниц: ceil(count / pageSize)
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}
