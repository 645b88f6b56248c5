package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paikkatieto/rakennus-cli/internal/registry"
)

var (
	servePort     int
	serveSrc      string
	serveSnapshot string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the registry over HTTP",
	Long:  "Builds a registry once from the chosen source and serves read-only record and address lookups as JSON.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		reg, _, err := buildRegistry(ctx, serveSrc, serveSnapshot)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(reg, cfg.Server.Origins),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("records", reg.Len()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the read surface over one built registry.
func newRouter(reg *registry.Database, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"records": reg.Len(),
			"streets": len(reg.Streets()),
		})
	})

	r.Get("/records/{id}", func(w http.ResponseWriter, req *http.Request) {
		rec, err := reg.GetRecord(chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recordJSON(rec))
	})

	r.Get("/records/{id}/address", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		street, number, err := reg.GetAddress(id)
		if err != nil {
			writeError(w, err)
			return
		}
		resp := map[string]any{"id": id}
		if street != registry.NoStreet {
			resp["street"] = street
		}
		if number != registry.NoNumber {
			resp["number"] = number
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/streets", func(w http.ResponseWriter, _ *http.Request) {
		streets := reg.Streets()
		out := make([]string, 0, len(streets))
		for _, s := range streets {
			if s != registry.NoStreet {
				out = append(out, s)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"streets": out})
	})

	r.Get("/streets/{street}", func(w http.ResponseWriter, req *http.Request) {
		street := chi.URLParam(req, "street")
		numbers, err := reg.Numbers(street)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"street":  street,
			"numbers": numbers,
		})
	})

	r.Get("/streets/{street}/{number}", func(w http.ResponseWriter, req *http.Request) {
		street := chi.URLParam(req, "street")
		number, err := strconv.Atoi(chi.URLParam(req, "number"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "number must be an integer"})
			return
		}

		recs, err := reg.RecordsAt(street, number)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]map[string]any, 0, len(recs))
		for _, rec := range recs {
			out = append(out, recordJSON(rec))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"street":  street,
			"number":  number,
			"records": out,
		})
	})

	return r
}

// recordJSON renders a record's fields, absent values as null.
func recordJSON(rec *registry.Record) map[string]any {
	out := make(map[string]any, rec.Len())
	for _, name := range rec.FieldNames() {
		v, _ := rec.Get(name)
		out[name] = v.Any()
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if eris.Is(err, registry.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveSrc, "src", "", "document source: file path or http/ftp URL (zipped or plain)")
	serveCmd.Flags().StringVar(&serveSnapshot, "snapshot", "", "build from this snapshot id")
	rootCmd.AddCommand(serveCmd)
}
