// Package storage persists tracked servers and their latest ping results using SQLite.
package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/woozymasta/legacyping/internal/models"
	_ "modernc.org/sqlite" // Driver sqlite
)

const selectServers = `
	SELECT host, port, address, country_code, srv_host, srv_port,
	       motd, motd_clean, players, max_players, latency_ms, online, last_error,
	       count, first_seen, last_seen, last_online
	FROM servers
`

// Repository manages the SQLite database connection.
type Repository struct {
	db *sql.DB
}

// New initializes a new SQLite connection, sets connection pool parameters, and runs migrations.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// UpsertServer records a ping result for (Host, Port).
// A failed ping (Online false) keeps the last known reply fields and only
// updates the error, the online flag and the seen timestamp.
func (r *Repository) UpsertServer(s models.Server) error {
	query := `
	INSERT INTO servers (
		host, port, address, country_code, srv_host, srv_port,
		motd, motd_clean, players, max_players, latency_ms, online, last_error,
		count, first_seen, last_seen, last_online
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
	ON CONFLICT(host, port) DO UPDATE SET
		count = count + 1,
		last_seen = excluded.last_seen,
		online = excluded.online,
		last_error = excluded.last_error,

		-- Update country if resolved and not blank
		country_code = CASE WHEN excluded.country_code != '' THEN excluded.country_code ELSE servers.country_code END,

		-- Reply fields only change on a successful ping
		address     = CASE WHEN excluded.online = 1 THEN excluded.address ELSE servers.address END,
		srv_host    = CASE WHEN excluded.online = 1 THEN excluded.srv_host ELSE servers.srv_host END,
		srv_port    = CASE WHEN excluded.online = 1 THEN excluded.srv_port ELSE servers.srv_port END,
		motd        = CASE WHEN excluded.online = 1 THEN excluded.motd ELSE servers.motd END,
		motd_clean  = CASE WHEN excluded.online = 1 THEN excluded.motd_clean ELSE servers.motd_clean END,
		players     = CASE WHEN excluded.online = 1 THEN excluded.players ELSE servers.players END,
		max_players = CASE WHEN excluded.online = 1 THEN excluded.max_players ELSE servers.max_players END,
		latency_ms  = CASE WHEN excluded.online = 1 THEN excluded.latency_ms ELSE servers.latency_ms END,
		last_online = CASE WHEN excluded.online = 1 THEN excluded.last_online ELSE servers.last_online END;
	`

	var lastOnline sql.NullTime
	if s.Online {
		lastOnline = sql.NullTime{Time: s.LastSeen, Valid: true}
	}

	firstSeen := s.FirstSeen
	if firstSeen.IsZero() {
		firstSeen = s.LastSeen
	}

	_, err := r.db.Exec(query,
		s.Host, s.Port, s.Address, s.CountryCode, s.SRVHost, s.SRVPort,
		s.MOTD, s.MOTDClean, s.Players, s.MaxPlayers, s.LatencyMS, s.Online, s.LastError,
		firstSeen, s.LastSeen, lastOnline,
	)

	return err
}

// GetServers retrieves all servers, most recently seen first.
func (r *Repository) GetServers() ([]models.Server, error) {
	return r.queryServers(selectServers + ` ORDER BY last_seen DESC`)
}

// GetServersSubset retrieves servers for maintenance, optionally only the offline ones.
func (r *Repository) GetServersSubset(onlyOffline bool) ([]models.Server, error) {
	query := selectServers
	if onlyOffline {
		query += ` WHERE online = 0`
	}

	return r.queryServers(query)
}

// GetServer retrieves one server. It returns nil, nil when the server is not tracked.
func (r *Repository) GetServer(host string, port int) (*models.Server, error) {
	row := r.db.QueryRow(selectServers+` WHERE host = ? AND port = ?`, host, port)

	s, err := scanServer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// DeleteServer stops tracking a server.
func (r *Repository) DeleteServer(host string, port int) error {
	_, err := r.db.Exec(`DELETE FROM servers WHERE host = ? AND port = ?`, host, port)
	return err
}

// DeleteOfflineServers removes servers whose latest ping failed.
func (r *Repository) DeleteOfflineServers() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM servers WHERE online = 0`)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *Repository) queryServers(query string, args ...any) ([]models.Server, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var servers []models.Server
	for rows.Next() {
		s, err := scanServer(rows)
		if err != nil {
			return nil, err
		}
		servers = append(servers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return servers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanServer(row rowScanner) (models.Server, error) {
	var (
		s          models.Server
		lastOnline sql.NullTime
	)

	err := row.Scan(
		&s.Host, &s.Port, &s.Address, &s.CountryCode, &s.SRVHost, &s.SRVPort,
		&s.MOTD, &s.MOTDClean, &s.Players, &s.MaxPlayers, &s.LatencyMS, &s.Online, &s.LastError,
		&s.Count, &s.FirstSeen, &s.LastSeen, &lastOnline,
	)
	if err != nil {
		return models.Server{}, err
	}

	if lastOnline.Valid {
		s.LastOnline = lastOnline.Time
	}

	return s, nil
}
