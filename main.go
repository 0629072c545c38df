package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"

	"kittenbomb/internal/config"
	"kittenbomb/internal/gateway"
	"kittenbomb/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	rooms := store.NewRoomStore()
	gw := gateway.New(rooms, log, cfg.LobbyDisconnectGrace)

	mux := http.NewServeMux()
	mux.Handle("/ws", gw)
	mux.HandleFunc("GET /healthz", handleHealth(rooms))
	mux.HandleFunc("GET /room/{code}", handleRoomInfo(rooms))
	mux.HandleFunc("GET /qr/{code}", handleRoomQR(rooms, cfg.PublicURL))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				dead := rooms.Cleanup(time.Now(), cfg.EndedGrace, cfg.IdleTimeout)
				if len(dead) > 0 {
					log.Info("cleaned up rooms", "count", len(dead), "codes", dead)
				}
			}
		}
	})

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		log.Error("server error", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func handleHealth(rooms *store.RoomStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"activeRooms": rooms.Count(),
		})
	}
}

func handleRoomInfo(rooms *store.RoomStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, ok := rooms.Get(r.PathValue("code"))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
			return
		}
		writeJSON(w, http.StatusOK, room.PublicInfo())
	}
}

// handleRoomQR serves a QR code with the join link for a room.
func handleRoomQR(rooms *store.RoomStore, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		if _, ok := rooms.Get(code); !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
			return
		}
		png, err := qrcode.Encode(publicURL+"/join/"+code, qrcode.Medium, 256)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "qr generation failed"})
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
