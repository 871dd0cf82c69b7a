package service

import "github.com/whitfield-edu/engagement-api/internal/models"

// canViewStudent applies the shared read rule: students see themselves,
// personal supervisors see their own students, senior tutors see everyone.
func canViewStudent(claims models.JWTClaims, student models.User) bool {
	switch claims.Role {
	case models.RoleSeniorTutor:
		return true
	case models.RolePersonalSupervisor:
		return student.SupervisorID == claims.UserID
	case models.RoleStudent:
		return student.ID == claims.UserID
	default:
		return false
	}
}
