package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tradeblock/internal/journal"
)

type journalLister interface {
	List(ctx context.Context, filter journal.Filter) ([]journal.Entry, error)
}

func newJournalHandler(svc journalLister, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/requests", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()
		filter := journal.Filter{Limit: 200}
		if qs := q.Get("limit"); qs != "" {
			if v, err := strconv.Atoi(qs); err == nil && v > 0 {
				if v > 1000 {
					v = 1000
				}
				filter.Limit = v
			}
		}
		filter.Method = strings.TrimSpace(q.Get("method"))
		filter.PathPrefix = strings.TrimSpace(q.Get("path"))
		filter.FailedOnly = q.Get("failed") == "true"

		entries, err := svc.List(r.Context(), filter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			logger.Warn("写入审计响应失败", zap.Error(err))
		}
	})
	return mux
}

func serveJournal(ctx context.Context, svc journalLister, port int, logger *zap.Logger) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newJournalHandler(svc, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("关闭审计服务失败", zap.Error(err))
		}
	}()

	logger.Info("审计接口已启动", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("审计服务异常: %w", err)
	}
	return nil
}
