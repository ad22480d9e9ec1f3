package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/people-finder/internal/flow"
	"github.com/sells-group/people-finder/internal/model"
	"github.com/sells-group/people-finder/internal/service"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lookup HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(requestLogger)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/session", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Query string `json:"query"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.Query == "" {
				writeError(w, http.StatusBadRequest, "query is required")
				return
			}

			sess, out, err := env.Service.Start(req.Context(), body.Query)
			if err != nil {
				zap.L().Error("start session failed", zap.String("query", body.Query), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{
				"sessionId": sess.ID,
				"question":  outcomePayload(out),
			})
		})

		r.Post("/api/next", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				SessionID string `json:"sessionId"`
				Answer    struct {
					QuestionID model.FlowState `json:"questionId"`
					Selected   string          `json:"selected"`
				} `json:"answer"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.SessionID == "" {
				writeError(w, http.StatusBadRequest, "sessionId is required")
				return
			}

			out, err := env.Service.Advance(req.Context(), body.SessionID, body.Answer.QuestionID, body.Answer.Selected)
			if eris.Is(err, service.ErrSessionNotFound) {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			if err != nil {
				zap.L().Error("advance session failed", zap.String("session_id", body.SessionID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			writeJSON(w, http.StatusOK, outcomePayload(out))
		})

		r.Get("/api/session/{id}", func(w http.ResponseWriter, req *http.Request) {
			sess, err := env.Service.GetSession(req.Context(), chi.URLParam(req, "id"))
			if eris.Is(err, service.ErrSessionNotFound) {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			if err != nil {
				zap.L().Error("get session failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			writeJSON(w, http.StatusOK, sess)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// outcomePayload unwraps the single non-nil artifact of a funnel step.
func outcomePayload(out flow.Outcome) any {
	switch {
	case out.Question != nil:
		return out.Question
	case out.Results != nil:
		return out.Results
	case out.NoMatch != nil:
		return out.NoMatch
	default:
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
