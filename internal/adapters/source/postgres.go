// Package source provides the record sources the load coordinator reads
// members, events and attendance from.
package source

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/chapterboard/internal/app/loader"
	"github.com/okian/chapterboard/internal/domain/model"
	"github.com/okian/chapterboard/pkg/logger"
)

// Pool sizing defaults.
const (
	defaultMaxConns        = 10
	defaultMinConns        = 2
	defaultMaxConnLifetime = time.Hour
	defaultMaxConnIdleTime = 30 * time.Minute
	connectTimeout         = 10 * time.Second
)

var _ loader.Source = (*Postgres)(nil)

var memberColumns = []string{
	"user_id",
	"first_name",
	"last_name",
	"email",
	"role",
	"COALESCE(pledge_class, '')",
	"COALESCE(gender, '')",
	"COALESCE(pronouns, '')",
	"COALESCE(race, '')",
	"COALESCE(sexual_orientation, '')",
	"COALESCE(majors, '')",
	"COALESCE(minors, '')",
	"COALESCE(expected_graduation, '')",
	"COALESCE(living_type, '')",
	"COALESCE(house_membership, '')",
}

var eventColumns = []string{
	"id",
	"title",
	"start_time",
	"end_time",
	"point_value",
	"COALESCE(point_type, '')",
	"COALESCE(creator_id, '')",
}

var attendanceColumns = []string{"user_id", "event_id", "rsvp", "attended"}

// querier is the subset of pgxpool.Pool used for reads.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres reads records from the members, events and attendance tables.
type Postgres struct {
	pool   *pgxpool.Pool
	db     querier
	schema string
	psql   sq.StatementBuilderType
	logger logger.Logger
}

// PostgresOption configures a Postgres source.
type PostgresOption func(*Postgres)

// WithSchema qualifies table names with schema.
func WithSchema(schema string) PostgresOption {
	return func(p *Postgres) {
		p.schema = schema
	}
}

// WithPostgresLogger sets a custom logger.
func WithPostgresLogger(l logger.Logger) PostgresOption {
	return func(p *Postgres) {
		if l != nil {
			p.logger = l
		}
	}
}

// Connect opens a connection pool for dsn and verifies it.
func Connect(ctx context.Context, dsn string, opts ...PostgresOption) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.MaxConns = defaultMaxConns
	cfg.MinConns = defaultMinConns
	cfg.MaxConnLifetime = defaultMaxConnLifetime
	cfg.MaxConnIdleTime = defaultMaxConnIdleTime

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	p := newPostgres(pool, opts...)
	p.pool = pool
	if err := p.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	p.logger.Info(ctx, "connected to postgres", logger.String("schema", p.schema))
	return p, nil
}

func newPostgres(db querier, opts ...PostgresOption) *Postgres {
	p := &Postgres{
		db:     db,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger: logger.Get().Named("postgres"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ping verifies the connection works.
func (p *Postgres) Ping(ctx context.Context) error {
	if p.db == nil {
		return ErrNotConnected
	}
	var one int
	if err := p.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// Close shuts down the pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) table(name string) string {
	if p.schema == "" {
		return name
	}
	return p.schema + "." + name
}

func pageBounds(page, pageSize int) (uint64, uint64, error) {
	if page < 0 || pageSize <= 0 {
		return 0, 0, fmt.Errorf("%w: page=%d size=%d", ErrInvalidPage, page, pageSize)
	}
	return uint64(pageSize), uint64(page * pageSize), nil
}

func (p *Postgres) membersQuery(page, pageSize int) (sq.SelectBuilder, sq.SelectBuilder, error) {
	limit, offset, err := pageBounds(page, pageSize)
	if err != nil {
		return sq.SelectBuilder{}, sq.SelectBuilder{}, err
	}
	rows := p.psql.Select(memberColumns...).
		From(p.table("members")).
		OrderBy("last_name", "first_name", "user_id").
		Limit(limit).
		Offset(offset)
	count := p.psql.Select("COUNT(*)").From(p.table("members"))
	return rows, count, nil
}

func (p *Postgres) eventsQuery(page, pageSize int, r model.DateRange) (sq.SelectBuilder, sq.SelectBuilder, error) {
	limit, offset, err := pageBounds(page, pageSize)
	if err != nil {
		return sq.SelectBuilder{}, sq.SelectBuilder{}, err
	}
	where := sq.And{}
	if !r.Start.IsZero() {
		where = append(where, sq.GtOrEq{"start_time": r.Start})
	}
	if !r.End.IsZero() {
		where = append(where, sq.LtOrEq{"start_time": r.End})
	}

	rows := p.psql.Select(eventColumns...).From(p.table("events"))
	count := p.psql.Select("COUNT(*)").From(p.table("events"))
	if len(where) > 0 {
		rows = rows.Where(where)
		count = count.Where(where)
	}
	rows = rows.OrderBy("start_time DESC", "id").Limit(limit).Offset(offset)
	return rows, count, nil
}

// attendanceQuery orders repeated rows of one (user, event) pair by ctid so
// the row deduplication keeps stays the same across reads of an unchanged
// table. The attendance table has no key of its own to order by.
func (p *Postgres) attendanceQuery(eventIDs []string) sq.SelectBuilder {
	return p.psql.Select(attendanceColumns...).
		From(p.table("attendance")).
		Where("event_id = ANY(?)", eventIDs).
		OrderBy("event_id", "user_id", "ctid")
}

// FetchMembers returns a page of members ordered by last name.
func (p *Postgres) FetchMembers(ctx context.Context, page, pageSize int) (model.Page[model.Member], error) {
	rowsQ, countQ, err := p.membersQuery(page, pageSize)
	if err != nil {
		return model.Page[model.Member]{}, err
	}
	total, err := p.count(ctx, countQ)
	if err != nil {
		return model.Page[model.Member]{}, err
	}
	rows, err := queryRows(ctx, p.db, rowsQ, func(row pgx.CollectableRow) (model.Member, error) {
		var m model.Member
		var role string
		err := row.Scan(
			&m.UserID, &m.FirstName, &m.LastName, &m.Email, &role,
			&m.PledgeClass, &m.Gender, &m.Pronouns, &m.Race, &m.SexualOrientation,
			&m.Majors, &m.Minors, &m.ExpectedGraduation, &m.LivingType, &m.HouseMembership,
		)
		m.Role = model.Role(role)
		return m, err
	})
	if err != nil {
		return model.Page[model.Member]{}, err
	}
	return model.Page[model.Member]{Rows: rows, Total: total}, nil
}

// FetchEvents returns a page of events starting within r, newest first.
func (p *Postgres) FetchEvents(ctx context.Context, page, pageSize int, r model.DateRange) (model.Page[model.Event], error) {
	rowsQ, countQ, err := p.eventsQuery(page, pageSize, r)
	if err != nil {
		return model.Page[model.Event]{}, err
	}
	total, err := p.count(ctx, countQ)
	if err != nil {
		return model.Page[model.Event]{}, err
	}
	rows, err := queryRows(ctx, p.db, rowsQ, func(row pgx.CollectableRow) (model.Event, error) {
		var e model.Event
		err := row.Scan(&e.ID, &e.Title, &e.StartTime, &e.EndTime, &e.PointValue, &e.PointType, &e.CreatorID)
		return e, err
	})
	if err != nil {
		return model.Page[model.Event]{}, err
	}
	return model.Page[model.Event]{Rows: rows, Total: total}, nil
}

// FetchAttendance returns attendance rows for the given events.
func (p *Postgres) FetchAttendance(ctx context.Context, eventIDs []string) ([]model.AttendanceRecord, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	return queryRows(ctx, p.db, p.attendanceQuery(eventIDs), func(row pgx.CollectableRow) (model.AttendanceRecord, error) {
		var a model.AttendanceRecord
		err := row.Scan(&a.UserID, &a.EventID, &a.RSVP, &a.Attended)
		return a, err
	})
}

func (p *Postgres) count(ctx context.Context, q sq.SelectBuilder) (int, error) {
	if p.db == nil {
		return 0, ErrNotConnected
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: building count: %w", ErrQuery, err)
	}
	var n int
	if err := p.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrQuery, err)
	}
	return n, nil
}

func queryRows[T any](ctx context.Context, db querier, q sq.SelectBuilder, scan pgx.RowToFunc[T]) ([]T, error) {
	if db == nil {
		return nil, ErrNotConnected
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: building select: %w", ErrQuery, err)
	}
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScan, err)
	}
	return out, nil
}
