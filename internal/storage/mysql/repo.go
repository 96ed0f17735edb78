package mysql

import (
	"context"
	"database/sql"
	"time"

	"vonage_relay/internal/domain"
)

var epoch = time.Date(1970, 1, 1, 0, 0, 1, 0, time.UTC)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valNonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) InsertMessage(ctx context.Context, m domain.OutboundMessage) error {
	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, insertMessageSQL,
		m.MessageUUID,
		m.To,
		m.From,
		m.Channel,
		m.MessageType,
		valNonEmpty(m.ClientRef),
		valJSON(m.RawJSON),
		created.UTC(),
	)
	return err
}

func (r *Repo) InsertEvent(ctx context.Context, e domain.MessageEvent) error {
	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.MessageUUID,
		string(e.Kind),
		deref(e.Status), // '' for inbound keeps the unique key usable
		valStr(e.From),
		valStr(e.To),
		valStr(e.Channel),
		valStr(e.ClientRef),
		valTime(e.Timestamp),
		valJSON(e.RawJSON),
	)
	return err
}

func (r *Repo) ListEvents(ctx context.Context, messageUUID string, limit int) (domain.EventsPage, error) {
	rows, err := r.db.QueryContext(ctx, listEventsSQL, messageUUID, limit)
	if err != nil {
		return domain.EventsPage{}, err
	}
	defer rows.Close()

	var out []domain.MessageEvent
	for rows.Next() {
		var ev domain.MessageEvent
		var (
			kind, status            string
			from, to, channel, cref sql.NullString
			ts                      sql.NullTime
			rawB                    sql.RawBytes
		)
		if err := rows.Scan(
			&ev.ID,
			&ev.MessageUUID,
			&kind,
			&status,
			&from,
			&to,
			&channel,
			&cref,
			&ts,
			&rawB,
		); err != nil {
			return domain.EventsPage{}, err
		}

		ev.Kind = domain.EventKind(kind)
		if status != "" {
			s := status
			ev.Status = &s
		}
		ev.From = nullStr(from)
		ev.To = nullStr(to)
		ev.Channel = nullStr(channel)
		ev.ClientRef = nullStr(cref)
		if ts.Valid && !ts.Time.Equal(epoch) {
			t := ts.Time.UTC()
			ev.Timestamp = &t
		}
		if len(rawB) > 0 {
			ev.RawJSON = append([]byte(nil), rawB...)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return domain.EventsPage{}, err
	}
	return domain.EventsPage{Items: out}, nil
}

func nullStr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
