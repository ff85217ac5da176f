package handler

import (
	"encoding/json"
	"net/http"

	"petconnect/internal/api/v1/dto"
	"petconnect/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func toUserDTO(u *model.User) dto.UserResponseDTO {
	return dto.UserResponseDTO{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Plan:       string(u.Plan),
		PlanEnd:    u.PlanEnd,
		Role:       string(u.Role),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

func toPetDTO(p *model.PetProfile) dto.PetResponseDTO {
	resp := dto.PetResponseDTO{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Breed:     p.Breed,
		Skills:    p.Skills,
		City:      p.City,
		Bio:       p.Bio,
		ImageURL:  p.ImageURL,
		Likes:     p.Likes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if p.Owner != nil {
		resp.Owner = &dto.PetOwnerDTO{
			ID:    p.Owner.ID,
			Name:  p.Owner.Name,
			Email: p.Owner.Email,
		}
	}
	return resp
}

func toPetDTOs(pets []model.PetProfile) []dto.PetResponseDTO {
	out := make([]dto.PetResponseDTO, 0, len(pets))
	for i := range pets {
		out = append(out, toPetDTO(&pets[i]))
	}
	return out
}
