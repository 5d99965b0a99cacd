package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

type PGUserStore struct {
	pool *pgxpool.Pool
}

func (s *PGUserStore) Insert(ctx context.Context, u *User) error {
	u.CreatedAt = time.Now().UTC()
	q := `INSERT INTO users (id, username, name, bio, created_at)
	      VALUES ($1,$2,$3,$4,$5)`
	if _, err := s.pool.Exec(ctx, q, u.ID, u.Username, u.Name, u.Bio, u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (s *PGUserStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	q := `SELECT id, username, name, bio, created_at FROM users WHERE username=$1`
	return s.scanUser(s.pool.QueryRow(ctx, q, username))
}

func (s *PGUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	q := `SELECT id, username, name, bio, created_at FROM users WHERE id=$1`
	return s.scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *PGUserStore) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Bio, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PGUserStore) UpdateBio(ctx context.Context, id, bio string) error {
	res, err := s.pool.Exec(ctx, `UPDATE users SET bio=$1 WHERE id=$2`, bio, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

type PGIntervalStore struct {
	pool *pgxpool.Pool
}

func (s *PGIntervalStore) FindForWeekday(ctx context.Context, userID string, day Weekday) (*WeeklyInterval, error) {
	q := `SELECT user_id, week_day, time_start_in_minutes, time_end_in_minutes
	      FROM user_time_intervals WHERE user_id=$1 AND week_day=$2`
	var iv WeeklyInterval
	err := s.pool.QueryRow(ctx, q, userID, int(day)).
		Scan(&iv.UserID, &iv.WeekDay, &iv.TimeStartInMinutes, &iv.TimeEndInMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (s *PGIntervalStore) AvailableWeekdays(ctx context.Context, userID string) (map[Weekday]bool, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT week_day FROM user_time_intervals WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Weekday]bool)
	for rows.Next() {
		var day int
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		out[Weekday(day)] = true
	}
	return out, rows.Err()
}

func (s *PGIntervalStore) Replace(ctx context.Context, userID string, intervals []WeeklyInterval) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM user_time_intervals WHERE user_id=$1`, userID); err != nil {
		return err
	}
	q := `INSERT INTO user_time_intervals
	      (user_id, week_day, time_start_in_minutes, time_end_in_minutes)
	      VALUES ($1,$2,$3,$4)`
	for _, iv := range intervals {
		if _, err := tx.Exec(ctx, q,
			userID, int(iv.WeekDay), iv.TimeStartInMinutes, iv.TimeEndInMinutes); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

type PGBookingStore struct {
	pool *pgxpool.Pool
}

const bookingColumns = `id, user_id, name, email, observations, date, created_at`

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Email, &b.Observations, &b.Date, &b.CreatedAt)
	return b, err
}

func (s *PGBookingStore) FindInRange(ctx context.Context, userID string, from, to time.Time) ([]Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM schedulings
	      WHERE user_id=$1 AND date >= $2 AND date <= $3
	      ORDER BY date`
	return s.queryBookings(ctx, q, userID, from, to)
}

func (s *PGBookingStore) FindAtHour(ctx context.Context, userID string, date time.Time) (*Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM schedulings WHERE user_id=$1 AND date=$2`
	b, err := scanBooking(s.pool.QueryRow(ctx, q, userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Insert runs the conflict check and write in one transaction. A row
// lock covers the sequential race, and the unique index on
// (user_id, date) backstops anything the lock misses.
func (s *PGBookingStore) Insert(ctx context.Context, b *Booking) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var existingID string
	checkQ := `SELECT id FROM schedulings WHERE user_id=$1 AND date=$2 FOR UPDATE`
	err = tx.QueryRow(ctx, checkQ, b.UserID, b.Date).Scan(&existingID)
	if err == nil {
		return ErrSlotTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	insertQ := `INSERT INTO schedulings (` + bookingColumns + `)
	            VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := tx.Exec(ctx, insertQ,
		b.ID, b.UserID, b.Name, b.Email, b.Observations, b.Date, b.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGBookingStore) CountPerDay(ctx context.Context, userID string, year int, month time.Month) (map[int]int, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	q := `SELECT EXTRACT(DAY FROM date)::int, COUNT(*)::int
	      FROM schedulings
	      WHERE user_id=$1 AND date >= $2 AND date < $3
	      GROUP BY 1`
	rows, err := s.pool.Query(ctx, q, userID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var day, count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		out[day] = count
	}
	return out, rows.Err()
}

func (s *PGBookingStore) ListByUser(ctx context.Context, userID string, from, to time.Time, ranged bool) ([]Booking, error) {
	if ranged {
		q := `SELECT ` + bookingColumns + ` FROM schedulings
		      WHERE user_id=$1 AND date >= $2 AND date < $3
		      ORDER BY date`
		return s.queryBookings(ctx, q, userID, from, to)
	}
	q := `SELECT ` + bookingColumns + ` FROM schedulings
	      WHERE user_id=$1
	      ORDER BY date`
	return s.queryBookings(ctx, q, userID)
}

func (s *PGBookingStore) queryBookings(ctx context.Context, q string, args ...any) ([]Booking, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type PGCredentialStore struct {
	pool *pgxpool.Pool
}

func (s *PGCredentialStore) Save(ctx context.Context, userID string, token *oauth2.Token) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return err
	}
	q := `INSERT INTO calendar_credentials (user_id, token, updated_at)
	      VALUES ($1,$2,$3)
	      ON CONFLICT (user_id) DO UPDATE SET token=$2, updated_at=$3`
	_, err = s.pool.Exec(ctx, q, userID, raw, time.Now().UTC())
	return err
}

func (s *PGCredentialStore) Find(ctx context.Context, userID string) (*oauth2.Token, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT token FROM calendar_credentials WHERE user_id=$1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, err
	}
	return &token, nil
}
