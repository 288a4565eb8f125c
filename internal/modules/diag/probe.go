package diag

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"runtime"
	"time"
)

// Report is a read-only snapshot of environment facts. The orchestrator uses
// it to pick retry parameters; the UI renders it as troubleshooting guidance.
type Report struct {
	GoVersion         string    `json:"go_version"`
	OS                string    `json:"os"`
	Arch              string    `json:"arch"`
	Online            bool      `json:"online"`
	StorageWritable   bool      `json:"storage_writable"`
	ChannelConfigured bool      `json:"channel_configured"`
	CheckedAt         time.Time `json:"checked_at"`
}

// Summary renders the report as a single capped line, suitable for embedding
// in a failed-notification record.
func (r Report) Summary() string {
	s := fmt.Sprintf("%s %s/%s online=%t storage=%t channel=%t at=%s",
		r.GoVersion, r.OS, r.Arch, r.Online, r.StorageWritable,
		r.ChannelConfigured, r.CheckedAt.UTC().Format(time.RFC3339))
	if len(s) > 250 {
		s = s[:250]
	}
	return s
}

// Probe inspects the environment. It never mutates application state; the
// storage check writes only to its own scratch table.
type Probe struct {
	db                *sql.DB
	channelHost       string
	channelConfigured bool
	dialTimeout       time.Duration
}

// NewProbe builds a probe that checks connectivity against the delivery
// channel's host and storage against the given database.
func NewProbe(db *sql.DB, channelURL string, channelConfigured bool) *Probe {
	return &Probe{
		db:                db,
		channelHost:       hostPort(channelURL),
		channelConfigured: channelConfigured,
		dialTimeout:       2 * time.Second,
	}
}

func (p *Probe) Report(ctx context.Context) Report {
	return Report{
		GoVersion:         runtime.Version(),
		OS:                runtime.GOOS,
		Arch:              runtime.GOARCH,
		Online:            p.online(),
		StorageWritable:   p.storageWritable(ctx),
		ChannelConfigured: p.channelConfigured,
		CheckedAt:         time.Now(),
	}
}

func (p *Probe) online() bool {
	if p.channelHost == "" {
		return false
	}
	conn, err := net.DialTimeout("tcp", p.channelHost, p.dialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (p *Probe) storageWritable(ctx context.Context) bool {
	if p.db == nil {
		return false
	}
	_, err := p.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS diag_probe (checked_at TEXT NOT NULL)`)
	if err != nil {
		return false
	}
	if _, err := p.db.ExecContext(ctx, `INSERT INTO diag_probe (checked_at) VALUES (?)`,
		time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return false
	}
	_, err = p.db.ExecContext(ctx, `DELETE FROM diag_probe`)
	return err == nil
}

func hostPort(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "http" {
		return u.Host + ":80"
	}
	return u.Host + ":443"
}
