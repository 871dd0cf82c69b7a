package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent            UserRole = "STUDENT"
	RolePersonalSupervisor UserRole = "PERSONAL_SUPERVISOR"
	RoleSeniorTutor        UserRole = "SENIOR_TUTOR"
)

// SystemSenderID is the sender recorded on engine-generated alerts.
const SystemSenderID = "SYSTEM"

// User is reference data: students link to their personal supervisor.
// The JSON tags describe the persisted snapshot document, not an API
// payload; HTTP responses expose UserInfo instead, which has no hash.
type User struct {
	ID           string   `db:"id" json:"id"`
	Name         string   `db:"name" json:"name"`
	PasswordHash string   `db:"password_hash" json:"password_hash"`
	Role         UserRole `db:"role" json:"role"`
	SupervisorID string   `db:"supervisor_id" json:"supervisor_id,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
