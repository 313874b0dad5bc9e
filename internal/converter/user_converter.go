package converter

import (
	"hospicloud/internal/delivery/dto"
	"hospicloud/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
// Includes the role sub-record when it is loaded
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:             user.ID,
		UserRole:       string(user.UserRole),
		DocumentType:   string(user.DocumentType),
		Name:           user.Name,
		LastName:       user.LastName,
		Email:          user.Email,
		DocumentNumber: user.DocumentNumber,
		DateOfBirth:    user.DateOfBirth.Format("2006-01-02"),
		UID:            user.ExternalID,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}

	switch profile := user.Profile().(type) {
	case *entity.Patient:
		response.Patient = PatientToResponse(profile)
	case *entity.Doctor:
		response.Doctor = DoctorToResponse(profile)
	case *entity.Admin:
		response.Admin = AdminToResponse(profile)
	}

	return response
}

// UsersToResponses converts a slice of User entities to slice of UserResponse DTOs
func UsersToResponses(users []entity.User) []dto.UserResponse {
	responses := make([]dto.UserResponse, len(users))
	for i := range users {
		responses[i] = *UserToResponse(&users[i])
	}
	return responses
}
