package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spikewise/spikewise/internal/app/tracker"
	"github.com/spikewise/spikewise/internal/domain"
)

// ─── Users ───────────────────────────────────────────────────────────────────

type registerRequest struct {
	DeviceID      string  `json:"deviceId"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	HeightCM      float64 `json:"height"`
	WeightKG      float64 `json:"weight"`
	ActivityLevel string  `json:"activityLevel"`
}

// handleRegister creates a user for the device, or returns the existing one.
// 201 on creation, 200 when the device is already registered.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, created, err := s.tracker.Register(tracker.RegisterRequest{
		DeviceID:      req.DeviceID,
		Age:           req.Age,
		Gender:        req.Gender,
		HeightCM:      req.HeightCM,
		WeightKG:      req.WeightKG,
		ActivityLevel: domain.ActivityLevel(req.ActivityLevel),
	}, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrMissingDeviceID) {
			writeError(w, http.StatusBadRequest, "deviceId is required")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.tracker.GetUser(chi.URLParam(r, "deviceID"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handlePointsHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := s.tracker.PointsHistory(chi.URLParam(r, "deviceID"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

// ─── Logs ────────────────────────────────────────────────────────────────────

type createLogRequest struct {
	DeviceID   string  `json:"deviceId"`
	Type       string  `json:"type"`
	Intensity  int     `json:"intensity"`
	Steps      int     `json:"steps"`
	SleepHours float64 `json:"sleepHours"`
	CustomText bool    `json:"customText"`
}

// handleCreateLog scores one consumption event. The response carries
// everything the client renders: the stored log, streak, balances, any badge
// just earned, and the insight/action pair.
func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	var req createLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := s.tracker.LogEvent(r.Context(), tracker.LogRequest{
		DeviceID:   req.DeviceID,
		Type:       req.Type,
		Intensity:  req.Intensity,
		Steps:      req.Steps,
		SleepHours: req.SleepHours,
		CustomText: req.CustomText,
	}, s.now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, domain.ErrMissingDeviceID),
			errors.Is(err, domain.ErrInvalidIntensity),
			errors.Is(err, domain.ErrInvalidSteps),
			errors.Is(err, domain.ErrInvalidSleep):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := s.tracker.ListLogs(chi.URLParam(r, "deviceID"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}

// handleCompleteAction marks a log's suggested action done and awards the
// flat bonus. 400 when the window has lapsed or the bonus was already taken.
func (s *Server) handleCompleteAction(w http.ResponseWriter, r *http.Request) {
	balance, err := s.tracker.CompleteAction(r.Context(), chi.URLParam(r, "id"), s.now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLogNotFound):
			writeError(w, http.StatusNotFound, "log not found")
		case errors.Is(err, domain.ErrAlreadyCompleted),
			errors.Is(err, domain.ErrCompletionExpired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Action completed! +7 points",
		"points":  balance,
	})
}

// ─── Health ──────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	report := s.checker.Check(r.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
