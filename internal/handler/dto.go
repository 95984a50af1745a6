package handler

import (
	"time"

	"github.com/msomdec/user-desk/internal/domain"
)

// UserDTO is the JSON representation of a user row as the table shows it.
type UserDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Username   string `json:"username,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Website    string `json:"website,omitempty"`
}

func toUserDTO(u domain.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Name:       u.Name,
		FirstName:  u.FirstName(),
		LastName:   u.LastName(),
		Email:      u.Email,
		Department: u.Department(),
		Username:   u.Username,
		Phone:      u.Phone,
		Website:    u.Website,
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	return dtos
}

// DraftDTO is the JSON representation of form state.
type DraftDTO struct {
	ID         int64  `json:"id,omitempty"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func (d DraftDTO) toDraft() domain.Draft {
	return domain.Draft{
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		Department: d.Department,
	}
}

func toDraftDTO(id int64, d domain.Draft) DraftDTO {
	return DraftDTO{
		ID:         id,
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		Email:      d.Email,
		Department: d.Department,
	}
}

// WorkspaceDTO is the JSON representation of the whole view-model.
type WorkspaceDTO struct {
	Users     []UserDTO `json:"users"`
	NewUser   DraftDTO  `json:"newUser"`
	Editing   *DraftDTO `json:"editing"`
	Error     string    `json:"error"`
	Notice    string    `json:"notice"`
	UpdatedAt string    `json:"updatedAt"`
}

func toWorkspaceDTO(ws *domain.Workspace) WorkspaceDTO {
	dto := WorkspaceDTO{
		Users:     toUserDTOs(ws.Users),
		NewUser:   toDraftDTO(0, ws.NewUser),
		Error:     ws.Error,
		Notice:    ws.Notice,
		UpdatedAt: ws.UpdatedAt.Format(time.RFC3339),
	}
	if ws.Editing != nil {
		e := toDraftDTO(ws.Editing.ID, ws.Editing.Draft)
		dto.Editing = &e
	}
	return dto
}
