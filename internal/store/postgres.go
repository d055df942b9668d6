package store

import (
	"context"
	"time"

	"github.com/chrissnell/aprsingest/internal/apperr"
	"github.com/chrissnell/aprsingest/internal/packet"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Filter narrows a Search call. Zero values mean "unconstrained" for
// Sender/Type, and a zero time.Time means "unbounded" for From/To.
type Filter struct {
	Sender   string
	Type     string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// Postgres is the primary Store backend, a thin gorm wrapper over a
// single `packets` table, grounded on the teacher's internal/database
// client.
type Postgres struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

// NewPostgres opens a connection to connectionString and returns a ready
// Postgres store. Callers should call AutoMigrate once at startup (or
// use pkg/migrate for versioned schema changes).
func NewPostgres(connectionString string, sugared *zap.SugaredLogger) (*Postgres, error) {
	gormLogger := logger.New(
		zap.NewStdLog(sugared.Desugar()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, apperr.Internal("failed to connect to postgres", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperr.Internal("failed to access underlying sql.DB", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Postgres{db: db, logger: sugared}, nil
}

// Ping verifies the underlying connection is reachable, for use by the
// read API's /health endpoint.
func (s *Postgres) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperr.Internal("failed to access underlying sql.DB", err)
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate creates/updates the packets table schema. Production
// deployments should prefer the versioned migrations in pkg/migrate;
// this is convenient for tests and local development.
func (s *Postgres) AutoMigrate() error {
	return s.db.AutoMigrate(&PacketRow{})
}

// Add assigns an integer identity to p, persists it, and returns the
// stored copy (with ID populated).
func (s *Postgres) Add(ctx context.Context, p packet.Packet) (packet.Packet, error) {
	row := toRow(p)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return packet.Packet{}, apperr.Internal("failed to persist packet", err)
	}
	stored, err := fromRow(row)
	if err != nil {
		return packet.Packet{}, apperr.Internal("failed to reconstruct persisted packet", err)
	}
	return stored, nil
}

// GetByID returns the packet with the given id, or a NotFound error.
func (s *Postgres) GetByID(ctx context.Context, id int64) (packet.Packet, error) {
	var row PacketRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return packet.Packet{}, apperr.NotFound("no packet with that id")
	}
	if err != nil {
		return packet.Packet{}, apperr.Internal("failed to read packet", err)
	}
	return fromRow(row)
}

// Search returns the filtered, paginated packet set described by f, plus
// the total count of matching rows (before paging). Ordering is
// received_at descending, ties broken by id descending; pagination is
// 1-indexed.
func (s *Postgres) Search(ctx context.Context, f Filter) ([]packet.Packet, int64, error) {
	q := s.db.WithContext(ctx).Model(&PacketRow{})

	if f.Sender != "" {
		q = q.Where("sender_callsign = ? OR sender_base = ?", f.Sender, f.Sender)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if !f.From.IsZero() {
		q = q.Where("received_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("received_at <= ?", f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("failed to count packets", err)
	}

	var rows []PacketRow
	offset := (f.Page - 1) * f.PageSize
	err := q.Order("received_at DESC, id DESC").
		Offset(offset).Limit(f.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, apperr.Internal("failed to search packets", err)
	}

	packets := make([]packet.Packet, 0, len(rows))
	for _, row := range rows {
		p, err := fromRow(row)
		if err != nil {
			s.logger.Warnf("skipping unreadable packet row %d: %v", row.ID, err)
			continue
		}
		packets = append(packets, p)
	}

	return packets, total, nil
}
