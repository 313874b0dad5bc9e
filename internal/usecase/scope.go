package usecase

import "hospicloud/internal/domain/entity"

// isAdminOf reports whether current is an admin of hospitalID.
func isAdminOf(current *entity.CurrentUser, hospitalID uint) bool {
	return current != nil && current.Role == entity.RoleAdmin && current.SameHospital(&hospitalID)
}

func actorOf(current *entity.CurrentUser) *uint {
	if current == nil {
		return nil
	}
	return &current.ID
}

// canRead reports whether current may read the records of the user userID.
// Doctors and admins read anyone; patients only themselves.
func canRead(current *entity.CurrentUser, userID uint) bool {
	if current == nil {
		return false
	}
	return current.Role != entity.RolePatient || current.ID == userID
}
