package service

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// offsetLimit 把 page/page_size 规范化为 offset/limit
func offsetLimit(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return (page - 1) * pageSize, pageSize
}
