package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staylist/internal/app"
	"staylist/internal/domain"
	"staylist/internal/sitemap"
)

type Handlers struct {
	L         *app.ListingService
	Q         *app.QueryService
	S         *app.SignupService
	Users     domain.UserRepository
	Locations domain.LocationRepository
	Images    domain.ImageRepository
	Languages []string
	WriteRPS  int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/accommodations", h.listAccommodations)
	s.mux.Get("/v1/accommodations/{feed}/{id}", h.getAccommodation)
	s.mux.Get("/v1/accommodations/{feed}/{id}/localizations/{lang}", h.getLocalization)
	s.mux.Get("/v1/accommodations/{feed}/{id}/images", h.listImages)
	s.mux.Get("/v1/locations/{id}/children", h.listChildren)
	s.mux.Get("/v1/sitemap.json", h.getSitemap)

	s.mux.Group(func(r chi.Router) {
		r.Use(WriteLimit(h.WriteRPS))
		r.Post("/v1/signup", h.signup)
		r.Post("/v1/accommodations", h.createAccommodation)
		r.Patch("/v1/accommodations/{feed}/{id}", h.updateAccommodation)
		r.Delete("/v1/accommodations/{feed}/{id}", h.deleteAccommodation)
		r.Post("/v1/accommodations/{feed}/{id}/localizations", h.createLocalization)
		r.Post("/v1/accommodations/{feed}/{id}/images", h.attachImage)
		r.Post("/v1/locations", h.createLocation)
	})
}

// selectLang maps an Accept-Language header onto a configured language,
// falling back to en.
func (h *Handlers) selectLang(al string) string {
	s := strings.ToLower(al)
	for _, lang := range h.Languages {
		if strings.HasPrefix(s, lang) {
			return lang
		}
	}
	return "en"
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeFieldProblem(w, status, title, detail, "")
}

func writeFieldProblem(w http.ResponseWriter, status int, title, detail, field string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Field: field}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the domain error taxonomy onto problem+json responses.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var ie *domain.IntegrityError
	var upe *domain.UnsupportedPartitionError
	switch {
	case errors.As(err, &ve):
		writeFieldProblem(w, http.StatusUnprocessableEntity, "Validation Failed", ve.Reason, ve.Field)
	case errors.As(err, &upe):
		writeFieldProblem(w, http.StatusUnprocessableEntity, "Unsupported Partition Key", err.Error(), "language")
	case errors.As(err, &ie):
		writeProblem(w, http.StatusConflict, "Conflict", "constraint violated: "+ie.Constraint)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func accommodationKey(r *http.Request) (domain.AccommodationKey, bool) {
	feed, err := strconv.Atoi(chi.URLParam(r, "feed"))
	if err != nil {
		return domain.AccommodationKey{}, false
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		return domain.AccommodationKey{}, false
	}
	return domain.AccommodationKey{ID: id, Feed: feed}, true
}

func actingUser(r *http.Request) (int64, bool) {
	v := r.Header.Get("X-User-ID")
	if v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ---- accommodations ----

type accommodationRequest struct {
	ID           string          `json:"id"`
	Feed         int             `json:"feed"`
	Title        string          `json:"title"`
	CountryCode  string          `json:"country_code"`
	BedroomCount int             `json:"bedroom_count"`
	ReviewScore  float64         `json:"review_score"`
	USDRate      float64         `json:"usd_rate"`
	Lat          float64         `json:"lat"`
	Lon          float64         `json:"lon"`
	Amenities    json.RawMessage `json:"amenities"`
	LocationID   string          `json:"location_id"`
	Published    bool            `json:"published"`
}

type accommodationResponse struct {
	ID           string   `json:"id"`
	Feed         int      `json:"feed"`
	Title        string   `json:"title"`
	CountryCode  string   `json:"country_code"`
	BedroomCount int      `json:"bedroom_count"`
	ReviewScore  float64  `json:"review_score"`
	USDRate      float64  `json:"usd_rate"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	Amenities    []string `json:"amenities,omitempty"`
	LocationID   string   `json:"location_id"`
	UserID       int64    `json:"user_id"`
	Published    bool     `json:"published"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func toAccommodationResponse(a domain.Accommodation) accommodationResponse {
	return accommodationResponse{
		ID: a.ID, Feed: a.Feed, Title: a.Title, CountryCode: a.CountryCode,
		BedroomCount: a.BedroomCount, ReviewScore: a.ReviewScore, USDRate: a.USDRate,
		Lat: a.Lat, Lon: a.Lon, Amenities: a.Amenities, LocationID: a.LocationID,
		UserID: a.UserID, Published: a.Published,
		CreatedAt: a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: a.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

type accommodationViewResponse struct {
	accommodationResponse
	Language    string            `json:"language"`
	Description *string           `json:"description,omitempty"`
	Policy      map[string]string `json:"policy,omitempty"`
}

func (h *Handlers) createAccommodation(w http.ResponseWriter, r *http.Request) {
	var req accommodationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	amenities, err := domain.ValidateAmenities(req.Amenities)
	if err != nil {
		writeError(w, err)
		return
	}
	userID, ok := actingUser(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Missing User", "X-User-ID header is required")
		return
	}
	a := domain.Accommodation{
		ID: req.ID, Feed: req.Feed, Title: req.Title, CountryCode: req.CountryCode,
		BedroomCount: req.BedroomCount, ReviewScore: req.ReviewScore, USDRate: req.USDRate,
		Lat: req.Lat, Lon: req.Lon, Amenities: amenities,
		LocationID: req.LocationID, UserID: userID, Published: req.Published,
	}
	if err := h.L.CreateAccommodation(r.Context(), a); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toAccommodationResponse(a))
}

func (h *Handlers) getAccommodation(w http.ResponseWriter, r *http.Request) {
	key, ok := accommodationKey(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Key", "feed must be an integer and id non-empty")
		return
	}
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = h.selectLang(r.Header.Get("Accept-Language"))
	}
	view, err := h.Q.GetAccommodation(r.Context(), key, lang)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := accommodationViewResponse{
		accommodationResponse: toAccommodationResponse(view.Accommodation),
		Language:              view.Language,
		Description:           view.Description,
		Policy:                view.Policy,
	}
	w.Header().Set("Content-Language", view.Language)
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handlers) listAccommodations(w http.ResponseWriter, r *http.Request) {
	f := domain.AccommodationFilter{Limit: 50}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		f.Limit = n
	}
	if v := q.Get("feed"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid feed", "feed must be an integer")
			return
		}
		f.Feed = &n
	}
	if v := q.Get("published"); v != "" {
		b := v == "true" || v == "1"
		f.Published = &b
	}
	if v := q.Get("country"); v != "" {
		f.CountryCode = &v
	}
	if v := q.Get("location"); v != "" {
		f.LocationID = &v
	}

	// Property Owners only ever see their own listings; staff see everything.
	if userID, ok := actingUser(r); ok {
		u, err := h.Users.Get(r.Context(), userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			writeError(w, err)
			return
		}
		if err == nil && !u.Staff {
			owner, gerr := h.Users.InGroup(r.Context(), userID, domain.GroupPropertyOwners)
			if gerr != nil {
				writeError(w, gerr)
				return
			}
			if owner {
				f.UserID = &userID
			}
		}
	}

	items, err := h.Q.ListAccommodations(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]accommodationResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAccommodationResponse(a))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": out})
}

type accommodationPatch struct {
	Title        *string          `json:"title"`
	CountryCode  *string          `json:"country_code"`
	BedroomCount *int             `json:"bedroom_count"`
	ReviewScore  *float64         `json:"review_score"`
	USDRate      *float64         `json:"usd_rate"`
	Lat          *float64         `json:"lat"`
	Lon          *float64         `json:"lon"`
	Amenities    *json.RawMessage `json:"amenities"`
	LocationID   *string          `json:"location_id"`
	Published    *bool            `json:"published"`
}

func (h *Handlers) updateAccommodation(w http.ResponseWriter, r *http.Request) {
	key, ok := accommodationKey(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Key", "feed must be an integer and id non-empty")
		return
	}
	var p accommodationPatch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	a, err := h.Q.GetAccommodation(r.Context(), key, "en")
	if err != nil {
		writeError(w, err)
		return
	}
	cur := a.Accommodation
	if p.Title != nil {
		cur.Title = *p.Title
	}
	if p.CountryCode != nil {
		cur.CountryCode = *p.CountryCode
	}
	if p.BedroomCount != nil {
		cur.BedroomCount = *p.BedroomCount
	}
	if p.ReviewScore != nil {
		cur.ReviewScore = *p.ReviewScore
	}
	if p.USDRate != nil {
		cur.USDRate = *p.USDRate
	}
	if p.Lat != nil {
		cur.Lat = *p.Lat
	}
	if p.Lon != nil {
		cur.Lon = *p.Lon
	}
	if p.Amenities != nil {
		amenities, verr := domain.ValidateAmenities(*p.Amenities)
		if verr != nil {
			writeError(w, verr)
			return
		}
		cur.Amenities = amenities
	}
	if p.LocationID != nil {
		cur.LocationID = *p.LocationID
	}
	if p.Published != nil {
		cur.Published = *p.Published
	}
	if err := h.L.UpdateAccommodation(r.Context(), cur); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toAccommodationResponse(cur))
}

func (h *Handlers) deleteAccommodation(w http.ResponseWriter, r *http.Request) {
	key, ok := accommodationKey(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Key", "feed must be an integer and id non-empty")
		return
	}
	if err := h.L.DeleteAccommodation(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- localizations ----

type localizationRequest struct {
	Language    string            `json:"language"`
	Description string            `json:"description"`
	Policy      map[string]string `json:"policy"`
}

type localizationResponse struct {
	ID              int64             `json:"id"`
	AccommodationID string            `json:"accommodation_id"`
	Language        string            `json:"language"`
	Description     string            `json:"description"`
	Policy          map[string]string `json:"policy,omitempty"`
}

func toLocalizationResponse(l domain.LocalizeAccommodation) localizationResponse {
	return localizationResponse{
		ID: l.ID, AccommodationID: l.AccommodationID, Language: l.Language,
		Description: l.Description, Policy: l.Policy,
	}
}

func (h *Handlers) createLocalization(w http.ResponseWriter, r *http.Request) {
	key, ok := accommodationKey(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Key", "feed must be an integer and id non-empty")
		return
	}
	var req localizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	l := domain.LocalizeAccommodation{
		Language:    req.Language,
		Description: req.Description,
		Policy:      req.Policy,
	}
	if err := h.L.CreateLocalization(r.Context(), key, &l); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toLocalizationResponse(l))
}

func (h *Handlers) getLocalization(w http.ResponseWriter, r *http.Request) {
	key, ok := accommodationKey(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Key", "feed must be an integer and id non-empty")
		return
	}
	lang := chi.URLParam(r, "lang")
	l, err := h.Q.GetLocalization(r.Context(), key.ID, lang)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Language", lang)
	writeJSON(w, r, http.StatusOK, toLocalizationResponse(l))
}

// ---- images ----

type imageRequest struct {
	FileName string `json:"file_name"`
}

type imageResponse struct {
	ID              int64  `json:"id"`
	AccommodationID string `json:"accommodation_id"`
	Feed            int    `json:"feed"`
	FileName        string `json:"file_name"`
	UploadedAt      string `json:"uploaded_at"`
}

func toImageResponse(img domain.AccommodationImage) imageResponse {
	return imageResponse{
		ID: img.ID, AccommodationID: img.AccommodationID, Feed: img.Feed,
		FileName:   img.FileName,
		UploadedAt: img.UploadedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (h *Handlers) attachImage(w http.ResponseWriter, r *http.Request) {
	key, ok := accommodationKey(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Key", "feed must be an integer and id non-empty")
		return
	}
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if req.FileName == "" {
		writeFieldProblem(w, http.StatusUnprocessableEntity, "Validation Failed", "required", "file_name")
		return
	}
	img, err := h.L.AttachImage(r.Context(), key, req.FileName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toImageResponse(img))
}

func (h *Handlers) listImages(w http.ResponseWriter, r *http.Request) {
	key, ok := accommodationKey(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Key", "feed must be an integer and id non-empty")
		return
	}
	images, err := h.Images.ListFor(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]imageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, toImageResponse(img))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": out})
}

// ---- locations ----

type locationRequest struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Type        string  `json:"location_type"`
	CountryCode string  `json:"country_code"`
	StateAbbr   *string `json:"state_abbr"`
	City        *string `json:"city"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	ParentID    *string `json:"parent_id"`
}

type locationResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Type        string  `json:"location_type"`
	CountryCode string  `json:"country_code"`
	StateAbbr   *string `json:"state_abbr,omitempty"`
	City        *string `json:"city,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	ParentID    *string `json:"parent_id,omitempty"`
}

func toLocationResponse(l domain.Location) locationResponse {
	return locationResponse{
		ID: l.ID, Title: l.Title, Type: string(l.Type), CountryCode: l.CountryCode,
		StateAbbr: l.StateAbbr, City: l.City, Lat: l.Lat, Lon: l.Lon, ParentID: l.ParentID,
	}
}

func (h *Handlers) createLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	l := domain.Location{
		ID: req.ID, Title: req.Title, Type: domain.LocationType(req.Type),
		CountryCode: req.CountryCode, StateAbbr: req.StateAbbr, City: req.City,
		Lat: req.Lat, Lon: req.Lon, ParentID: req.ParentID,
	}
	if err := h.L.CreateLocation(r.Context(), l); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toLocationResponse(l))
}

func (h *Handlers) listChildren(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	children, err := h.Locations.ChildrenOf(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]locationResponse, 0, len(children))
	for _, c := range children {
		out = append(out, toLocationResponse(c))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": out})
}

// ---- signup ----

func (h *Handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req app.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	u, err := h.S.Signup(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"active":   u.Active,
		"message":  "Your account has been created. Wait for admin activation.",
	})
}

// ---- sitemap ----

func (h *Handlers) getSitemap(w http.ResponseWriter, r *http.Request) {
	doc, err := sitemap.Build(r.Context(), h.Locations)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, doc)
}
