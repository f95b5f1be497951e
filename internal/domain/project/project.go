package project

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("project not found")
	ErrInvalidName = errors.New("project name must be at least 2 characters")
)

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ManagerID string    `json:"managerId"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required,min=2,max=200"`
}

// ValidateName checks the trimmed name length in characters.
func ValidateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < 2 {
		return ErrInvalidName
	}
	return nil
}

func New(managerID string, req CreateProjectRequest) Project {
	return Project{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		ManagerID: managerID,
		CreatedAt: time.Now().UTC(),
	}
}
