package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wedding-site/pkg/models"
	"wedding-site/pkg/utils"
)

// sqlStore is the database/sql implementation shared by postgres and sqlite.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func newSQLStore(db *sql.DB, d dialect) *sqlStore {
	return &sqlStore{db: db, dialect: d, now: func() time.Time { return time.Now().UTC() }}
}

func (s *sqlStore) q(query string) string {
	return s.dialect.rebind(query)
}

const guestColumns = `g.id, g.token, g.name1, g.name2, g.gender, g.greeting, g.cover_message,
	g.rsvp_status, g.ask_partner_attendance, g.partner_attending,
	g.confirm_attending_solo_title, g.confirm_attending_solo_body,
	g.confirm_attending_with_partner_title, g.confirm_attending_with_partner_body,
	g.confirm_declining_title, g.confirm_declining_body,
	g.message, g.responded_at, g.wedding_id, g.created_at, g.updated_at`

const weddingJoinColumns = `, w.id, w.event_name, w.date, w.cover_message, w.created_at, w.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(row rowScanner, withWedding bool) (*models.Guest, error) {
	var (
		g           models.Guest
		status      string
		partner     sql.NullBool
		message     sql.NullString
		respondedAt sql.NullTime
		weddingID   sql.NullInt64
	)
	dest := []any{
		&g.ID, &g.Token, &g.Name1, &g.Name2, &g.Gender, &g.Greeting, &g.CoverMessage,
		&status, &g.AskPartnerAttendance, &partner,
		&g.ConfirmAttendingSoloTitle, &g.ConfirmAttendingSoloBody,
		&g.ConfirmAttendingWithPartnerTitle, &g.ConfirmAttendingWithPartnerBody,
		&g.ConfirmDecliningTitle, &g.ConfirmDecliningBody,
		&message, &respondedAt, &weddingID, &g.CreatedAt, &g.UpdatedAt,
	}

	var (
		wID                    sql.NullInt64
		wName, wDate, wCover   sql.NullString
		wCreatedAt, wUpdatedAt sql.NullTime
	)
	if withWedding {
		dest = append(dest, &wID, &wName, &wDate, &wCover, &wCreatedAt, &wUpdatedAt)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	g.RSVPStatus = models.NormalizeRSVPStatus(status)
	if partner.Valid {
		v := partner.Bool
		g.PartnerAttending = &v
	}
	if message.Valid {
		v := message.String
		g.Message = &v
	}
	if respondedAt.Valid {
		v := respondedAt.Time
		g.RespondedAt = &v
	}
	if weddingID.Valid {
		v := weddingID.Int64
		g.WeddingID = &v
	}
	if withWedding && wID.Valid {
		g.Wedding = &models.Wedding{
			ID:           wID.Int64,
			EventName:    wName.String,
			Date:         wDate.String,
			CoverMessage: wCover.String,
			CreatedAt:    wCreatedAt.Time,
			UpdatedAt:    wUpdatedAt.Time,
		}
	}
	return &g, nil
}

func guestSelect(withWedding bool) string {
	if withWedding {
		return `SELECT ` + guestColumns + weddingJoinColumns + ` FROM guests g LEFT JOIN weddings w ON w.id = g.wedding_id`
	}
	return `SELECT ` + guestColumns + ` FROM guests g`
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullBool(p *bool) sql.NullBool {
	if p == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *p, Valid: true}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// CreateGuest 创建宾客；token 总是由服务端生成
func (s *sqlStore) CreateGuest(ctx context.Context, g *models.Guest) error {
	g.Token = utils.NewGuestToken()
	g.RSVPStatus = models.NormalizeRSVPStatus(string(g.RSVPStatus))
	now := s.now()
	g.CreatedAt, g.UpdatedAt = now, now

	query := s.q(`
		INSERT INTO guests (token, name1, name2, gender, greeting, cover_message, rsvp_status,
			ask_partner_attendance, partner_attending,
			confirm_attending_solo_title, confirm_attending_solo_body,
			confirm_attending_with_partner_title, confirm_attending_with_partner_body,
			confirm_declining_title, confirm_declining_body,
			message, responded_at, wedding_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	var respondedAt sql.NullTime
	if g.RespondedAt != nil {
		respondedAt = sql.NullTime{Time: *g.RespondedAt, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		g.Token, g.Name1, g.Name2, g.Gender, g.Greeting, g.CoverMessage, string(g.RSVPStatus),
		g.AskPartnerAttendance, nullBool(g.PartnerAttending),
		g.ConfirmAttendingSoloTitle, g.ConfirmAttendingSoloBody,
		g.ConfirmAttendingWithPartnerTitle, g.ConfirmAttendingWithPartnerBody,
		g.ConfirmDecliningTitle, g.ConfirmDecliningBody,
		nullString(g.Message), respondedAt, nullInt(g.WeddingID), g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create guest: %w", ErrConflict)
		}
		return fmt.Errorf("failed to create guest: %w", err)
	}
	return nil
}

// GetGuest 根据ID获取宾客（含婚礼）
func (s *sqlStore) GetGuest(ctx context.Context, id int64) (*models.Guest, error) {
	row := s.db.QueryRowContext(ctx, s.q(guestSelect(true)+` WHERE g.id = ?`), id)
	g, err := scanGuest(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %w", err)
	}
	return g, nil
}

// GetGuestByToken 根据邀请 token 获取宾客
func (s *sqlStore) GetGuestByToken(ctx context.Context, token string, withWedding bool) (*models.Guest, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, s.q(guestSelect(withWedding)+` WHERE g.token = ?`), token)
	g, err := scanGuest(row, withWedding)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest by token: %w", err)
	}
	return g, nil
}

// ListGuests 列出宾客
func (s *sqlStore) ListGuests(ctx context.Context, filter GuestFilter) ([]models.Guest, error) {
	query := guestSelect(filter.WithWedding)
	var args []any
	if filter.WeddingID != nil {
		query += ` WHERE g.wedding_id = ?`
		args = append(args, *filter.WeddingID)
	}
	query += ` ORDER BY g.id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	defer rows.Close()

	guests := []models.Guest{}
	for rows.Next() {
		g, err := scanGuest(rows, filter.WithWedding)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, *g)
	}
	return guests, rows.Err()
}

// UpdateGuest 更新宾客资料（管理端）。token 与回复字段不在此更新。
func (s *sqlStore) UpdateGuest(ctx context.Context, g *models.Guest) error {
	g.RSVPStatus = models.NormalizeRSVPStatus(string(g.RSVPStatus))
	g.UpdatedAt = s.now()

	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE guests SET name1 = ?, name2 = ?, gender = ?, greeting = ?, cover_message = ?,
			rsvp_status = ?, ask_partner_attendance = ?,
			confirm_attending_solo_title = ?, confirm_attending_solo_body = ?,
			confirm_attending_with_partner_title = ?, confirm_attending_with_partner_body = ?,
			confirm_declining_title = ?, confirm_declining_body = ?,
			wedding_id = ?, updated_at = ?
		WHERE id = ?`),
		g.Name1, g.Name2, g.Gender, g.Greeting, g.CoverMessage,
		string(g.RSVPStatus), g.AskPartnerAttendance,
		g.ConfirmAttendingSoloTitle, g.ConfirmAttendingSoloBody,
		g.ConfirmAttendingWithPartnerTitle, g.ConfirmAttendingWithPartnerBody,
		g.ConfirmDecliningTitle, g.ConfirmDecliningBody,
		nullInt(g.WeddingID), g.UpdatedAt, g.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update guest: %w", err)
	}
	return expectOneRow(res, "guest")
}

// RecordRSVP 覆盖写入回复（不合并旧值）
func (s *sqlStore) RecordRSVP(ctx context.Context, guestID int64, resp RSVPUpdate) error {
	status := models.NormalizeRSVPStatus(string(resp.Status))
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE guests SET rsvp_status = ?, partner_attending = ?, message = ?, responded_at = ?, updated_at = ?
		WHERE id = ?`),
		string(status), nullBool(resp.PartnerAttending), nullString(resp.Message),
		resp.RespondedAt.UTC(), s.now(), guestID,
	)
	if err != nil {
		return fmt.Errorf("failed to record rsvp: %w", err)
	}
	return expectOneRow(res, "guest")
}

// DeleteGuest 删除宾客
func (s *sqlStore) DeleteGuest(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM guests WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete guest: %w", err)
	}
	return expectOneRow(res, "guest")
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", what, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateWedding 创建婚礼
func (s *sqlStore) CreateWedding(ctx context.Context, w *models.Wedding) error {
	now := s.now()
	w.CreatedAt, w.UpdatedAt = now, now
	err := s.db.QueryRowContext(ctx, s.q(`
		INSERT INTO weddings (event_name, date, cover_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`),
		w.EventName, w.Date, w.CoverMessage, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("failed to create wedding: %w", err)
	}
	return nil
}

// GetWedding 根据ID获取婚礼
func (s *sqlStore) GetWedding(ctx context.Context, id int64) (*models.Wedding, error) {
	var w models.Wedding
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, event_name, date, cover_message, created_at, updated_at FROM weddings WHERE id = ?`), id,
	).Scan(&w.ID, &w.EventName, &w.Date, &w.CoverMessage, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wedding: %w", err)
	}
	return &w, nil
}

// ListWeddings 列出婚礼
func (s *sqlStore) ListWeddings(ctx context.Context) ([]models.Wedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_name, date, cover_message, created_at, updated_at FROM weddings ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list weddings: %w", err)
	}
	defer rows.Close()

	weddings := []models.Wedding{}
	for rows.Next() {
		var w models.Wedding
		if err := rows.Scan(&w.ID, &w.EventName, &w.Date, &w.CoverMessage, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wedding: %w", err)
		}
		weddings = append(weddings, w)
	}
	return weddings, rows.Err()
}

// HealthCheck 健康检查
func (s *sqlStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭连接
func (s *sqlStore) Close() error {
	return s.db.Close()
}
