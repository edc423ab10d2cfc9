package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"merocare/internal/service"
)

// DiagnosisHandler serves the symptom checker
type DiagnosisHandler struct {
	diagnosisService *service.DiagnosisService
}

// NewDiagnosisHandler creates a new diagnosis handler
func NewDiagnosisHandler(diagnosisService *service.DiagnosisService) *DiagnosisHandler {
	return &DiagnosisHandler{diagnosisService: diagnosisService}
}

// symptomList accepts either a JSON array of strings or a single
// comma-separated string
type symptomList []string

func (s *symptomList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*s = strings.Split(joined, ",")
	return nil
}

type checkRequest struct {
	Symptoms symptomList `json:"symptoms"`
	Age      *int        `json:"age"`
	Gender   string      `json:"gender"`
}

type checkResponse struct {
	ID               int64    `json:"id"`
	PossibleDiseases []string `json:"possible_diseases"`
	FirstAid         []string `json:"first_aid"`
	Urgency          string   `json:"urgency"`
	FullResponse     string   `json:"full_response"`
	Visibility       string   `json:"visibility"`
}

// Check runs the symptom checker for the caller
func (h *DiagnosisHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := GetUserFromContext(r.Context())
	d, answer, err := h.diagnosisService.Check(r.Context(), user.ID, service.CheckInput{
		Symptoms: req.Symptoms,
		Age:      req.Age,
		Gender:   req.Gender,
	})
	if err != nil {
		respondWithServiceError(w, "Symptom check failed", err)
		return
	}

	firstAid := answer.FirstAid
	if firstAid == nil {
		firstAid = []string{}
	}
	writeJSON(w, http.StatusOK, checkResponse{
		ID:               d.ID,
		PossibleDiseases: answer.PossibleDiseases,
		FirstAid:         firstAid,
		Urgency:          d.Urgency,
		FullResponse:     d.FullResponse,
		Visibility:       d.Visibility,
	})
}

// MyDiagnoses lists the caller's diagnoses
func (h *DiagnosisHandler) MyDiagnoses(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	list, err := h.diagnosisService.MyDiagnoses(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to list diagnoses", err)
		return
	}
	writeJSON(w, http.StatusOK, newDiagnosisList(list))
}

// UpdateVisibility shares or hides one of the caller's diagnoses
func (h *DiagnosisHandler) UpdateVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user := GetUserFromContext(r.Context())
	d, err := h.diagnosisService.UpdateVisibility(r.Context(), user.ID, id, r.URL.Query().Get("visibility"))
	if err != nil {
		respondWithServiceError(w, "Failed to update visibility", err)
		return
	}
	writeJSON(w, http.StatusOK, newDiagnosisResponse(d))
}
