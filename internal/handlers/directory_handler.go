package handlers

import (
	"net/http"
	"strings"

	"bpoc/internal/middleware"
	"bpoc/internal/repositories"
	"bpoc/internal/services"
	"bpoc/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type DirectoryHandler struct {
	service DirectoryService
	logger  *zap.Logger
}

func NewDirectoryHandler(service DirectoryService, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{service: service, logger: logger}
}

func (h *DirectoryHandler) ListAgenciesHandler(w http.ResponseWriter, r *http.Request) {
	agencies, err := h.service.ListAgencies(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, agencies)
}

func (h *DirectoryHandler) GetAgencyHandler(w http.ResponseWriter, r *http.Request) {
	agency, err := h.service.GetAgency(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, agency)
}

func (h *DirectoryHandler) SearchCandidatesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	candidates, err := h.service.SearchCandidates(r.Context(), repositories.CandidateFilter{
		Search: q.Get("search"),
		Skill:  q.Get("skill"),
		Limit:  intQuery(r, "limit", 0),
		Offset: intQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, candidates)
}

func (h *DirectoryHandler) GetCandidateHandler(w http.ResponseWriter, r *http.Request) {
	candidate, err := h.service.GetCandidate(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, candidate)
}

// ListJobsHandler is public; an authenticated caller widens what is visible.
func (h *DirectoryHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.ListJobs(r.Context(), callerFrom(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, jobs)
}

func (h *DirectoryHandler) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*CreateJobRequest](r)
	job, err := h.service.CreateJob(r.Context(), callerFrom(r), services.CreateJobInput{
		ClientName:  req.ClientName,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Skills:      req.Skills,
		Status:      req.Status,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Currency:    req.Currency,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusCreated, job)
}

func (h *DirectoryHandler) ApplyHandler(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.Apply(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusCreated, app)
}

func (h *DirectoryHandler) AssignHandler(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.AssignRecruiter(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, app)
}
