package store

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/whitfield-edu/engagement-api/internal/models"
)

type seedUser struct {
	id           string
	name         string
	password     string
	role         models.UserRole
	supervisorID string
}

// Demo accounts created on first start when no document exists yet.
var seedUsers = []seedUser{
	{id: "S1", name: "Student A", password: "pass1", role: models.RoleStudent, supervisorID: "PS1"},
	{id: "S2", name: "Student B", password: "pass2", role: models.RoleStudent, supervisorID: "PS1"},
	{id: "PS1", name: "Supervisor 1", password: "pass3", role: models.RolePersonalSupervisor},
	{id: "ST1", name: "Senior Tutor", password: "pass4", role: models.RoleSeniorTutor},
}

// SeedSnapshot builds the initial document with the fixed demo users and
// otherwise empty collections.
func SeedSnapshot() (*Snapshot, error) {
	snapshot := NewSnapshot()
	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		snapshot.Users = append(snapshot.Users, models.User{
			ID:           su.id,
			Name:         su.name,
			PasswordHash: string(hash),
			Role:         su.role,
			SupervisorID: su.supervisorID,
		})
	}
	return snapshot, nil
}
