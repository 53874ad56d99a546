package dto

import (
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/models"
)

type CreateDivisionRequest struct {
	Code string `json:"code" binding:"required,max=20"`
	Name string `json:"name" binding:"required"`
}

type CreateForemanRequest struct {
	Code       string `json:"code" binding:"required,max=20"`
	Name       string `json:"name" binding:"required"`
	DivisionID string `json:"divisionId" binding:"required"`
}

type DivisionResponse struct {
	Success  bool                 `json:"success"`
	Division groundcheck.Division `json:"division"`
}

type DivisionListResponse struct {
	Success   bool                   `json:"success"`
	Divisions []groundcheck.Division `json:"divisions"`
}

type ForemanResponse struct {
	Success bool                `json:"success"`
	Foreman groundcheck.Foreman `json:"foreman"`
}

type ForemanListResponse struct {
	Success bool                  `json:"success"`
	Foremen []groundcheck.Foreman `json:"foremen"`
}

func ToDivisionDTO(d models.Division) groundcheck.Division {
	return groundcheck.Division{ID: d.ID, Code: d.Code, Name: d.Name}
}

func ToDivisionDTOs(divisions []models.Division) []groundcheck.Division {
	out := make([]groundcheck.Division, len(divisions))
	for i, d := range divisions {
		out[i] = ToDivisionDTO(d)
	}
	return out
}

func ToForemanDTO(f models.Foreman) groundcheck.Foreman {
	return groundcheck.Foreman{ID: f.ID, Code: f.Code, Name: f.Name, DivisionID: f.DivisionID}
}

func ToForemanDTOs(foremen []models.Foreman) []groundcheck.Foreman {
	out := make([]groundcheck.Foreman, len(foremen))
	for i, f := range foremen {
		out[i] = ToForemanDTO(f)
	}
	return out
}
