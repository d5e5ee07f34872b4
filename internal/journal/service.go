package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tradeblock/internal/store"
	"tradeblock/internal/tradeblock"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

var _ tradeblock.Recorder = (*Service)(nil)

// Service 负责持久化请求审计记录。
type Service struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewService 初始化审计服务，创建所需表结构。
func NewService(store *store.Store, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("journal: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		db:     store.DB(),
		logger: logger,
	}

	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS request_journal (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	method TEXT NOT NULL,
	path TEXT NOT NULL,
	nonce INTEGER NOT NULL,
	status_code INTEGER NOT NULL DEFAULT 0,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_request_journal_path ON request_journal(path);
`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("journal: 初始化表失败: %w", err)
	}
	return nil
}

// Record 写入单条记录。
func (s *Service) Record(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_journal (id, method, path, nonce, status_code, latency_ms, error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Method, entry.Path, entry.Nonce, entry.StatusCode, entry.LatencyMS, entry.Error,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("journal: 写入记录失败: %w", err)
	}

	return nil
}

// RecordRequest 实现 tradeblock.Recorder，写入失败只记录日志。
func (s *Service) RecordRequest(ctx context.Context, record tradeblock.RequestRecord) {
	entry := Entry{
		ID:         record.ID,
		Method:     record.Method.String(),
		Path:       record.Path,
		Nonce:      record.Nonce,
		StatusCode: record.StatusCode,
		LatencyMS:  record.Latency.Milliseconds(),
		CreatedAt:  record.StartedAt,
	}
	if record.Err != nil {
		entry.Error = record.Err.Error()
	}

	// 请求上下文可能已被取消，写入不应随之失败。
	writeCtx := context.WithoutCancel(ctx)
	if err := s.Record(writeCtx, entry); err != nil {
		s.logger.Warn("记录请求审计失败",
			zap.String("request_id", record.ID),
			zap.Error(err),
		)
	}
}

// List 按条件检索最近记录，按写入顺序倒序返回。
func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	query := `SELECT id, method, path, nonce, status_code, latency_ms, error, created_at FROM request_journal`
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if filter.Method != "" {
		conds = append(conds, `method = ?`)
		args = append(args, strings.ToUpper(filter.Method))
	}
	if filter.PathPrefix != "" {
		conds = append(conds, `substr(path, 1, ?) = ?`)
		args = append(args, len(filter.PathPrefix), filter.PathPrefix)
	}
	if filter.FailedOnly {
		conds = append(conds, `error != ''`)
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY seq DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: 查询记录失败: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			entry   Entry
			created string
		)
		if scanErr := rows.Scan(&entry.ID, &entry.Method, &entry.Path, &entry.Nonce,
			&entry.StatusCode, &entry.LatencyMS, &entry.Error, &created); scanErr != nil {
			return nil, fmt.Errorf("journal: 解析记录失败: %w", scanErr)
		}

		ts, parseErr := time.Parse(time.RFC3339Nano, created)
		if parseErr != nil {
			s.logger.Debug("审计记录时间格式异常", zap.String("created_at", created))
		}
		entry.CreatedAt = ts

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: 读取记录失败: %w", err)
	}

	return entries, nil
}
