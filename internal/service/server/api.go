package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"sacred_computing/internal/model"
	"sacred_computing/internal/sacred"
	"sacred_computing/internal/utils/log"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type (
	createArchiveRequest struct {
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Intention   string         `json:"intention"`
		Frequency   string         `json:"frequency"`
		Boost       bool           `json:"boost"`
		Multiplier  int            `json:"multiplier"`
		PatternType string         `json:"pattern_type"`
		PatternData map[string]any `json:"pattern_data"`
	}

	createUserRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
)

func (s *HttpServer) HandleHealingCodes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		var (
			codes []*model.HealingCode
			err   error
		)
		switch {
		case query.Get("search") != "":
			codes, err = s.codeRepo.Search(ctx, query.Get("search"))
		case query.Get("category") != "":
			codes, err = s.codeRepo.GetByCategory(ctx, query.Get("category"))
		default:
			codes, err = s.codeRepo.GetAll(ctx)
		}

		if err != nil {
			log.Error("fetch healing codes failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if codes == nil {
			codes = []*model.HealingCode{}
		}
		writeJSON(w, http.StatusOK, codes)
	}
}

func (s *HttpServer) HandleListArchives() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		archives, err := s.archiveRepo.GetAll(r.Context())
		if err != nil {
			log.Error("fetch soul archives failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if archives == nil {
			archives = []*model.SoulArchive{}
		}
		writeJSON(w, http.StatusOK, archives)
	}
}

func (s *HttpServer) HandleGetArchive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		archive, err := s.archiveRepo.GetByID(r.Context(), id)
		if err != nil {
			log.Error("fetch soul archive failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if archive == nil {
			http.Error(w, "Soul archive not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, archive)
	}
}

func (s *HttpServer) HandleCreateArchive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createArchiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if req.Title == "" || req.PatternType == "" || req.PatternData == nil {
			http.Error(w, "Missing required field", http.StatusBadRequest)
			return
		}

		if req.Frequency == "" {
			req.Frequency = strconv.FormatFloat(sacred.SchumannResonance, 'f', -1, 64)
		}
		if req.Multiplier == 0 {
			req.Multiplier = 1
		}

		archive := &model.SoulArchive{
			Title:       req.Title,
			Description: req.Description,
			Intention:   req.Intention,
			Frequency:   req.Frequency,
			Boost:       req.Boost,
			Multiplier:  req.Multiplier,
			PatternType: req.PatternType,
			PatternData: req.PatternData,
			CreatedAt:   time.Now().UTC(),
		}

		if _, err := s.archiveRepo.Create(r.Context(), archive); err != nil {
			log.Error("create soul archive failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, archive)
	}
}

func (s *HttpServer) HandleDeleteArchive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}

		deleted, err := s.archiveRepo.Delete(r.Context(), id)
		if err != nil {
			log.Error("delete soul archive failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if !deleted {
			http.Error(w, "Soul archive not found", http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *HttpServer) HandleCreateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Username == "" || req.Password == "" {
			http.Error(w, "username and password are required", http.StatusBadRequest)
			return
		}

		existing, err := s.userRepo.GetByName(r.Context(), req.Username)
		if err != nil {
			log.Error("lookup user failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if existing != nil {
			http.Error(w, "username already taken", http.StatusConflict)
			return
		}

		user, err := s.userRepo.Create(r.Context(), req.Username, req.Password)
		if err != nil {
			log.Error("create user failed", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("write json response failed", zap.Error(err))
	}
}
