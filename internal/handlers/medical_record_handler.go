package handlers

import (
	"net/http"

	"merocare/internal/service"
)

// MedicalRecordHandler serves the caller's medical history entries
type MedicalRecordHandler struct {
	recordService *service.MedicalRecordService
}

// NewMedicalRecordHandler creates a new medical record handler
func NewMedicalRecordHandler(recordService *service.MedicalRecordService) *MedicalRecordHandler {
	return &MedicalRecordHandler{recordService: recordService}
}

type recordRequest struct {
	Illness         string `json:"illness"`
	DoctorName      string `json:"doctor_name"`
	HospitalName    string `json:"hospital_name"`
	AppointmentDate string `json:"appointment_date"`
}

// Create adds a medical record
func (h *MedicalRecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := GetUserFromContext(r.Context())
	rec, err := h.recordService.Create(r.Context(), user.ID, service.RecordInput{
		Illness:         req.Illness,
		DoctorName:      req.DoctorName,
		HospitalName:    req.HospitalName,
		AppointmentDate: req.AppointmentDate,
	})
	if err != nil {
		respondWithServiceError(w, "Failed to create medical record", err)
		return
	}
	writeJSON(w, http.StatusCreated, newMedicalRecordResponse(rec))
}

// List returns the caller's medical records
func (h *MedicalRecordHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	records, err := h.recordService.List(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to list medical records", err)
		return
	}

	out := make([]medicalRecordResponse, len(records))
	for i := range records {
		out[i] = newMedicalRecordResponse(&records[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete removes one of the caller's records
func (h *MedicalRecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user := GetUserFromContext(r.Context())
	if err := h.recordService.Delete(r.Context(), user.ID, id); err != nil {
		respondWithServiceError(w, "Failed to delete medical record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
