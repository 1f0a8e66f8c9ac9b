package capacity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/entitlements/pkg/access"
	"github.com/dmitrymomot/entitlements/pkg/logger"
)

// Actions, quota keys and toggles the capacity checks are built from.
const (
	ActionSnapCreate = "memory.create"
	ActionAnalysis   = "analysis.run.single"
	ActionBackup     = "backup.create"
	ActionExportPref = "export."

	QuotaSnaps    = "snaps.capacity"
	QuotaStorage  = "storage.gb"
	QuotaAnalysis = "analysis.day"
	QuotaExport   = "export.month"
	QuotaBackup   = "backup.month"

	FlagAnalysisOff = "emergency.analysis.off"
	FlagExportOff   = "emergency.export.off"
	FlagBackup      = "backup.cloud"
)

// MBPerGB converts storage.gb limits to megabytes.
const MBPerGB = 1024

// Guard is a capacity facade over access.Guard.
type Guard struct {
	access *access.Guard
	logger *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard wraps an access guard.
func NewGuard(ag *access.Guard, opts ...Option) *Guard {
	g := &Guard{access: ag, logger: logger.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(logger.Component("capacity"))
	return g
}

// CanAddSnap checks the create scope and snap capacity.
func (g *Guard) CanAddSnap(ctx context.Context, userID string) (access.Result, error) {
	return g.access.CanPerformAction(ctx, userID, ActionSnapCreate, access.WithQuota(QuotaSnaps))
}

// RecordSnap consumes one unit of snap capacity.
func (g *Guard) RecordSnap(ctx context.Context, userID string) (access.Result, error) {
	return g.access.AllowAction(ctx, userID, ActionSnapCreate, access.WithQuota(QuotaSnaps))
}

// CanAddSnapWithSize checks snap capacity, storage quota and then the
// requested size against the storage limit.
func (g *Guard) CanAddSnapWithSize(ctx context.Context, userID string, sizeMB int64) (access.Result, error) {
	res, err := g.CanAddSnap(ctx, userID)
	if err != nil || !res.Allowed {
		return res, err
	}

	res, err = g.access.CanPerformAction(ctx, userID, ActionSnapCreate, access.WithQuota(QuotaStorage))
	if err != nil || !res.Allowed {
		return res, err
	}

	info, err := g.access.QuotaInfo(ctx, userID, QuotaStorage)
	if err != nil {
		return access.Result{}, err
	}
	if info == nil || info.Unlimited() {
		return res, nil
	}

	limitMB := info.Limit * MBPerGB
	if sizeMB > limitMB {
		g.logger.DebugContext(ctx, "snap exceeds storage limit",
			logger.UserID(userID),
			slog.Int64("size_mb", sizeMB),
			slog.Int64("limit_mb", limitMB),
		)
		return access.Result{
			Reason:      access.ReasonQuotaExceeded,
			Message:     fmt.Sprintf("snap of %d MB exceeds the %d MB storage limit", sizeMB, limitMB),
			Quota:       info,
			RequestedMB: sizeMB,
		}, nil
	}
	return res, nil
}

// CanRunAIAnalysis checks the analysis scope, daily quota and kill switch.
func (g *Guard) CanRunAIAnalysis(ctx context.Context, userID string) (access.Result, error) {
	return g.access.CanPerformAction(ctx, userID, ActionAnalysis, analysisOpts()...)
}

// ConsumeAIAnalysis consumes one analysis when allowed.
func (g *Guard) ConsumeAIAnalysis(ctx context.Context, userID string) (access.Result, error) {
	return g.access.AllowAction(ctx, userID, ActionAnalysis, analysisOpts()...)
}

// CanExport checks export in the given format, e.g. "pdf".
func (g *Guard) CanExport(ctx context.Context, userID, format string) (access.Result, error) {
	return g.access.CanPerformAction(ctx, userID, ActionExportPref+format, exportOpts()...)
}

// RecordExport consumes one export in the given format when allowed.
func (g *Guard) RecordExport(ctx context.Context, userID, format string) (access.Result, error) {
	return g.access.AllowAction(ctx, userID, ActionExportPref+format, exportOpts()...)
}

// CanBackup checks the backup scope, monthly quota and cloud toggle.
func (g *Guard) CanBackup(ctx context.Context, userID string) (access.Result, error) {
	return g.access.CanPerformAction(ctx, userID, ActionBackup, backupOpts()...)
}

// ConsumeBackup consumes one backup when allowed.
func (g *Guard) ConsumeBackup(ctx context.Context, userID string) (access.Result, error) {
	return g.access.AllowAction(ctx, userID, ActionBackup, backupOpts()...)
}

func analysisOpts() []access.CheckOption {
	return []access.CheckOption{access.WithQuota(QuotaAnalysis), access.WithFlag(FlagAnalysisOff)}
}

func exportOpts() []access.CheckOption {
	return []access.CheckOption{access.WithQuota(QuotaExport), access.WithFlag(FlagExportOff)}
}

func backupOpts() []access.CheckOption {
	return []access.CheckOption{access.WithQuota(QuotaBackup), access.WithFlag(FlagBackup)}
}
