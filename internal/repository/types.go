package repository

// SubmissionListFilter 查询下单流水的过滤条件
type SubmissionListFilter struct {
	Page            int
	PageSize        int
	SessionID       string
	RestaurantScope string
	Status          string
}
