package domain

// Department is owned by user/department management. The ledger only reads it.
type Department struct {
	DepartmentID string `json:"departmentID"`
	Name         string `json:"name"`
	Code         string `json:"code"` // e.g. ISTMO, FIN, HR
}
