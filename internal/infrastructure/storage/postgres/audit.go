package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "atelier/internal/core/context"
	"atelier/internal/core/id"
)

// AuditAction represents the type of audited tenancy event.
type AuditAction string

const (
	AuditWorkspaceCreated    AuditAction = "workspace_created"
	AuditPlanChanged         AuditAction = "plan_changed"
	AuditMemberAdded         AuditAction = "member_added"
	AuditMemberRemoved       AuditAction = "member_removed"
	AuditWorkspaceSwitched   AuditAction = "workspace_switched"
	AuditInvitationSent      AuditAction = "invitation_sent"
	AuditSubscriptionUpdated AuditAction = "subscription_updated"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditEntry represents a single audit log entry, bound to a workspace.
type AuditEntry struct {
	ID                 id.ID           `db:"id"`
	WorkspaceID        string          `db:"workspace_id"`
	Action             AuditAction     `db:"action"`
	UserID             string          `db:"user_id"`
	Details            json.RawMessage `db:"details"`
	DetailsCompressed  []byte          `db:"details_compressed"`
	CompressionAlgo    CompressionAlgo `db:"compression_algo"`
	CreatedAt          time.Time       `db:"created_at"`
}

// AuditService records tenancy events. Payloads above the threshold are
// zstd-compressed before storage.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Log records an audit entry. The user id is taken from context when not set.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	if entry.UserID == "" {
		entry.UserID = appctx.GetUserID(ctx)
	}
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	entry.CompressionAlgo = CompressionNone
	if len(entry.Details) > s.compressThreshold {
		entry.DetailsCompressed = s.encoder.EncodeAll(entry.Details, nil)
		entry.Details = nil
		entry.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO workspace_audit (
			id, workspace_id, action, user_id,
			details, details_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		entry.ID, entry.WorkspaceID, entry.Action, entry.UserID,
		entry.Details, entry.DetailsCompressed, entry.CompressionAlgo,
		entry.CreatedAt,
	)

	return err
}

// LogEvent is a convenience method for recording a tenancy event.
func (s *AuditService) LogEvent(
	ctx context.Context,
	workspaceID string,
	action AuditAction,
	details map[string]any,
) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	return s.Log(ctx, AuditEntry{
		WorkspaceID: workspaceID,
		Action:      action,
		Details:     detailsJSON,
	})
}

// History retrieves audit history for a workspace, newest first.
func (s *AuditService) History(ctx context.Context, workspaceID string, limit int) ([]AuditEntry, error) {
	sql := `
		SELECT id, workspace_id, action, user_id,
		       details, details_compressed, compression_algo, created_at
		FROM workspace_audit
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		err := rows.Scan(
			&e.ID, &e.WorkspaceID, &e.Action, &e.UserID,
			&e.Details, &e.DetailsCompressed, &e.CompressionAlgo, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		if e.CompressionAlgo == CompressionZstd && len(e.DetailsCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(e.DetailsCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress details: %w", err)
			}
			e.Details = decompressed
			e.DetailsCompressed = nil
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
