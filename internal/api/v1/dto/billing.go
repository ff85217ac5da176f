package dto

// OrderCreateDTO requests a payment order for a paid plan.
type OrderCreateDTO struct {
	Plan string `json:"plan" validate:"required"`
}
