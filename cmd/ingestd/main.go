// cmd/ingestd/main.go
//
// ingestd is the batch-drop daemon: it listens for webhook notifications
// from the extraction side, pulls the referenced files from object storage,
// stages them and triggers a full refresh.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/jaysongor/ducklens-backend/internal/cache"
	"github.com/jaysongor/ducklens-backend/internal/config"
	"github.com/jaysongor/ducklens-backend/internal/ingest"
	"github.com/jaysongor/ducklens-backend/internal/pipeline"
	"github.com/jaysongor/ducklens-backend/internal/service"
	"github.com/jaysongor/ducklens-backend/internal/storage"
	"github.com/jaysongor/ducklens-backend/internal/warehouse"
	"github.com/jaysongor/ducklens-backend/pkg/logger"
)

type server struct {
	cfg     *config.Config
	wh      *warehouse.Warehouse
	store   storage.ObjectStorage
	refresh *service.RefreshService
}

type batchNotification struct {
	// Keys lists the dropped object keys; empty means scan the whole prefix.
	Keys []string `json:"keys"`
}

func main() {
	cfg := config.Load()
	logger.SetLevel(os.Getenv("LOG_LEVEL"))
	log := logger.Log

	db, err := warehouse.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	wh := warehouse.New(db)
	if err := wh.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	store, err := storage.NewMinio(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure object storage")
	}

	insights := service.NewInsights(wh, cache.NewNoop())
	runner := pipeline.NewRunner(wh, cfg.Analytics)
	s := &server{
		cfg:     cfg,
		wh:      wh,
		store:   store,
		refresh: service.NewRefresh(runner, insights),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/webhook/batch", s.handleBatch).Methods(http.MethodPost)

	srv := &http.Server{
		Addr:         ":" + envOr("INGESTD_PORT", "8090"),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // a batch drop triggers a full run
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("ingestd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	log := logger.Log

	var note batchNotification
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	ctx := r.Context()
	keys := note.Keys
	if len(keys) == 0 {
		var err error
		keys, err = s.store.List(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to list batch files")
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "storage unavailable"})
			return
		}
	}

	staged, err := s.stage(ctx, keys)
	if err != nil {
		log.Error().Err(err).Msg("failed to stage batch")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "staging failed"})
		return
	}
	if staged == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"staged_files": 0})
		return
	}

	result, err := s.refresh.Refresh(ctx)
	if errors.Is(err, service.ErrRefreshInProgress) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("refresh failed after staging")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "refresh failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"staged_files": staged,
		"raw_records":  result.RawRecords,
		"fact_records": result.FactRecords,
	})
}

// stage downloads each batch file and appends its records to staging. The
// first file of a notification replaces the staged batch; the rest append.
func (s *server) stage(ctx context.Context, keys []string) (int, error) {
	staged := 0
	for _, key := range keys {
		ext := strings.ToLower(filepath.Ext(key))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}
		local := filepath.Join(s.cfg.App.UploadDir, filepath.Base(key))
		if err := s.store.DownloadToFile(ctx, key, local); err != nil {
			return staged, err
		}
		raws, err := ingest.ReadFile(local)
		if err != nil {
			return staged, err
		}
		if staged == 0 {
			if err := s.wh.ReplaceStaging(ctx, raws); err != nil {
				return staged, err
			}
		} else {
			if err := s.wh.AppendStaging(ctx, raws); err != nil {
				return staged, err
			}
		}
		staged++
		logger.Log.Info().Str("key", key).Int("records", len(raws)).Msg("staged batch file")
	}
	return staged, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
