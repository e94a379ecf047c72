package model

// MemberStats счётчики заявок читателя для дашборда
type MemberStats struct {
	MemberID int64 `json:"member_id"`
	Total    int   `json:"total"`
	Approved int   `json:"approved"`
	Pending  int   `json:"pending"`
}
