package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"petconnect/internal/api/v1/dto"
	"petconnect/internal/middleware"
	"petconnect/internal/model"
	"petconnect/internal/policy"
	"petconnect/internal/service"
)

// maxImageSize caps uploaded profile images at 5 MB.
const maxImageSize = 5 << 20

type PetHandler struct {
	petService service.PetService
	validate   *validator.Validate
	auth       func(http.Handler) http.Handler
}

func NewPetHandler(petService service.PetService, v *validator.Validate) *PetHandler {
	return &PetHandler{petService: petService, validate: v}
}

// RegisterRoutes mounts the pet routes. Reading a single profile is open;
// everything else requires a session.
func (h *PetHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	h.auth = authMw
	mux.Handle("/api/pets", authMw(http.HandlerFunc(h.handlePets)))
	mux.Handle("/api/pets/search", authMw(http.HandlerFunc(h.search)))
	mux.Handle("/api/pets/analytics", authMw(http.HandlerFunc(h.premiumStub("pet analytics are coming soon"))))
	mux.Handle("/api/pets/messages", authMw(http.HandlerFunc(h.premiumStub("pet messaging is coming soon"))))
	mux.Handle("/api/pets/themes", authMw(http.HandlerFunc(h.premiumStub("profile themes are coming soon"))))
	mux.Handle("/api/pets/user/", authMw(http.HandlerFunc(h.listByOwner)))
	mux.Handle("/api/pets/", http.HandlerFunc(h.handlePet))
}

func (h *PetHandler) handlePets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createPet(w, r)
	case http.MethodGet:
		h.feed(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handlePet serves /api/pets/{id} and /api/pets/{id}/like. GET is public;
// mutations pass through the auth middleware before dispatch.
func (h *PetHandler) handlePet(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.getPet(w, r)
		return
	}
	h.auth(http.HandlerFunc(h.mutatePet)).ServeHTTP(w, r)
}

func (h *PetHandler) mutatePet(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/pets/")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/like"):
		h.likePet(w, r, strings.TrimSuffix(path, "/like"))
	case r.Method == http.MethodPut:
		h.updatePet(w, r, path)
	case r.Method == http.MethodDelete:
		h.deletePet(w, r, path)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// formImage pulls the optional image file out of a multipart request and
// enforces the size cap. A nil ImageInput means no image was supplied.
func formImage(r *http.Request) (*service.ImageInput, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	if header.Size > maxImageSize {
		file.Close()
		return nil, errors.New("image exceeds the 5 MB limit")
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &service.ImageInput{Reader: file, ContentType: contentType}, nil
}

// formSkills accepts either repeated skills fields or one comma-separated
// value.
func formSkills(values []string) []string {
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}
	out := []string{}
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (h *PetHandler) createPet(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := dto.PetCreateDTO{
		Name:   r.FormValue("name"),
		Breed:  r.FormValue("breed"),
		City:   r.FormValue("city"),
		Bio:    r.FormValue("bio"),
		Skills: formSkills(r.MultipartForm.Value["skills"]),
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	image, err := formImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pet, err := h.petService.Create(r.Context(), claims.UserID(), service.PetCreateInput{
		Name:   req.Name,
		Breed:  req.Breed,
		City:   req.City,
		Bio:    req.Bio,
		Skills: req.Skills,
		Image:  image,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrBioTooLong):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrLimitReached):
			writeError(w, http.StatusForbidden, "profile limit reached for your plan, upgrade to add more pets")
		case errors.Is(err, service.ErrOwnerNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create pet profile")
		}
		return
	}
	writeJSON(w, http.StatusCreated, toPetDTO(pet))
}

func (h *PetHandler) feed(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	pets, err := h.petService.Feed(r.Context(), claims.UserID(), page, limit)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrPlanForbidden):
			writeError(w, http.StatusForbidden, "upgrade your plan to access the feed")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, "unknown account")
		default:
			writeError(w, http.StatusInternalServerError, "failed to load feed")
		}
		return
	}
	writeJSON(w, http.StatusOK, toPetDTOs(pets))
}

func (h *PetHandler) getPet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/pets/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "pet profile not found")
		return
	}

	pet, err := h.petService.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPetNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to load pet profile")
		}
		return
	}
	writeJSON(w, http.StatusOK, toPetDTO(pet))
}

func (h *PetHandler) updatePet(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	// Only non-empty supplied fields are applied; an empty form value is
	// treated the same as an absent one and never blanks a stored field.
	var req dto.PetUpdateDTO
	form := r.MultipartForm.Value
	if v, ok := form["name"]; ok && v[0] != "" {
		req.Name = &v[0]
	}
	if v, ok := form["breed"]; ok && v[0] != "" {
		req.Breed = &v[0]
	}
	if v, ok := form["city"]; ok && v[0] != "" {
		req.City = &v[0]
	}
	if v, ok := form["bio"]; ok && v[0] != "" {
		req.Bio = &v[0]
	}
	if v, ok := form["skills"]; ok {
		if skills := formSkills(v); len(skills) > 0 {
			req.Skills = skills
		}
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	image, err := formImage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pet, err := h.petService.Update(r.Context(), id, claims.UserID(), model.PetUpdate{
		Name:   req.Name,
		Breed:  req.Breed,
		City:   req.City,
		Bio:    req.Bio,
		Skills: req.Skills,
	}, image)
	if err != nil {
		h.writePetError(w, err, "failed to update pet profile")
		return
	}
	writeJSON(w, http.StatusOK, toPetDTO(pet))
}

func (h *PetHandler) deletePet(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	if err := h.petService.Delete(r.Context(), id, claims.UserID()); err != nil {
		h.writePetError(w, err, "failed to delete pet profile")
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: "pet profile deleted"})
}

func (h *PetHandler) likePet(w http.ResponseWriter, r *http.Request, id string) {
	pet, err := h.petService.Like(r.Context(), id)
	if err != nil {
		h.writePetError(w, err, "failed to like pet profile")
		return
	}
	writeJSON(w, http.StatusOK, toPetDTO(pet))
}

func (h *PetHandler) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	pets, err := h.petService.Search(r.Context(), q.Get("breed"), q.Get("skill"), q.Get("city"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search pet profiles")
		return
	}
	writeJSON(w, http.StatusOK, toPetDTOs(pets))
}

func (h *PetHandler) listByOwner(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ownerID := strings.TrimPrefix(r.URL.Path, "/api/pets/user/")
	if ownerID == "" || strings.Contains(ownerID, "/") {
		writeError(w, http.StatusNotFound, "owner not found")
		return
	}

	pets, err := h.petService.ListByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list pet profiles")
		return
	}
	writeJSON(w, http.StatusOK, toPetDTOs(pets))
}

// premiumStub gates a placeholder feature on the plan snapshot carried in
// the session token.
func (h *PetHandler) premiumStub(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing session")
			return
		}
		if err := policy.PremiumGate(claims.Plan); err != nil {
			writeError(w, http.StatusForbidden, "this feature requires a premium plan")
			return
		}
		writeJSON(w, http.StatusOK, dto.MessageResponseDTO{Message: msg})
	}
}

func (h *PetHandler) writePetError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrPetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrBioTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
