package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/antoniamayaobrador/lisbon-agent/db"
	"github.com/antoniamayaobrador/lisbon-agent/models"
	"github.com/antoniamayaobrador/lisbon-agent/observability"
	"github.com/antoniamayaobrador/lisbon-agent/services/agent"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AgentHandler struct {
	service *agent.Service
	ratings db.RatingRepository
	sink    observability.Sink
}

func NewAgentHandler(service *agent.Service, ratings db.RatingRepository, sink observability.Sink) *AgentHandler {
	if sink == nil {
		sink = observability.NopSink{}
	}
	return &AgentHandler{service: service, ratings: ratings, sink: sink}
}

func (h *AgentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/query", h.Query).Methods("POST")
	router.HandleFunc("/rate", h.Rate).Methods("POST")
}

func (h *AgentHandler) Query(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received agent query request")

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode query request JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}

	if req.Question == "" {
		log.Printf("[ERROR] No question provided in query request")
		h.writeErrorResponse(w, http.StatusBadRequest, "A question is required", "")
		return
	}

	runID := uuid.NewString()

	answer, err := h.service.Run(r.Context(), req.Question)
	if err != nil {
		var maxSteps *agent.MaxStepsExceededError
		if errors.As(err, &maxSteps) {
			log.Printf("[ERROR] Run %s exceeded the tool cycle cap: %v", runID, err)
			h.writeJSONResponse(w, http.StatusUnprocessableEntity, map[string]string{
				"error":          maxSteps.Error(),
				"partial_answer": maxSteps.PartialAnswer,
				"run_id":         runID,
			})
			return
		}
		log.Printf("[ERROR] Run %s failed: %v", runID, err)
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error(), runID)
		return
	}

	h.sink.Record("api_request",
		map[string]interface{}{"question": req.Question},
		map[string]interface{}{"answer": answer, "run_id": runID},
	)

	log.Printf("[INFO] Run %s completed successfully", runID)
	h.writeJSONResponse(w, http.StatusOK, models.QueryResponse{
		Answer: answer,
		RunID:  runID,
	})
}

// Rate appends one rating record. Ratings are accepted even for run
// identifiers the server does not recognize.
func (h *AgentHandler) Rate(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received rating request")

	var req models.RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode rating request JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}

	if req.RunID == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "A run_id is required", "")
		return
	}

	rating := &models.Rating{
		RunID:   req.RunID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.ratings.SaveRating(rating); err != nil {
		log.Printf("[ERROR] Failed to save rating for run %s: %v", req.RunID, err)
		h.writeErrorResponse(w, http.StatusInternalServerError, err.Error(), req.RunID)
		return
	}

	log.Printf("[INFO] Saved rating for run %s", req.RunID)
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *AgentHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *AgentHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, runID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	payload := map[string]string{"error": message}
	if runID != "" {
		payload["run_id"] = runID
	}
	json.NewEncoder(w).Encode(payload)
}
