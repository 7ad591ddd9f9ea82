package trace

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// SQLiteSink buffers records and writes them to a SQLite database in batched
// transactions.
type SQLiteSink struct {
	*sql.DB
	statement *sql.Stmt

	dbName    string
	pending   []Record
	batchSize int
	written   int
}

// NewSQLiteSink creates the database file at path (".sqlite3" is appended).
// An empty path generates a unique name. An existing file is an error.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	s := &SQLiteSink{
		dbName:    path,
		batchSize: 10000,
	}
	if err := s.createDatabase(xid.New().String()); err != nil {
		return nil, err
	}
	if err := s.createTable(); err != nil {
		s.DB.Close()
		return nil, err
	}
	if err := s.prepareStatement(); err != nil {
		s.DB.Close()
		return nil, err
	}
	return s, nil
}

// Filename returns the database file path.
func (s *SQLiteSink) Filename() string {
	return s.dbName + ".sqlite3"
}

// Write buffers a record, flushing when the batch is full.
func (s *SQLiteSink) Write(rec Record) error {
	s.pending = append(s.pending, rec)
	if len(s.pending) >= s.batchSize {
		return s.Flush()
	}
	return nil
}

// Flush writes all buffered records in one transaction.
func (s *SQLiteSink) Flush() error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("begin trace transaction: %w", err)
	}
	stmt := tx.Stmt(s.statement)
	for _, rec := range s.pending {
		var start, end, wait, service, sojourn sql.NullFloat64
		if st := rec.Service; st != nil {
			start = sql.NullFloat64{Float64: st.Start, Valid: true}
			wait = sql.NullFloat64{Float64: st.Wait, Valid: true}
			if rec.Kind == KindServiceEnd {
				end = sql.NullFloat64{Float64: st.End, Valid: true}
				service = sql.NullFloat64{Float64: st.Service, Valid: true}
				sojourn = sql.NullFloat64{Float64: st.Sojourn, Valid: true}
			}
		}
		_, err := stmt.Exec(
			rec.RunID,
			rec.Station,
			rec.EntityID,
			string(rec.Kind),
			rec.Timestamp,
			rec.SinceLastArrival,
			rec.QueueLength,
			rec.ServersBusy,
			start, end, wait, service, sojourn,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s record of entity %d: %w", rec.Kind, rec.EntityID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trace transaction: %w", err)
	}

	s.written += len(s.pending)
	s.pending = nil
	return nil
}

// Close flushes the remaining records and closes the database.
func (s *SQLiteSink) Close() error {
	if s.DB == nil {
		return nil
	}
	err := s.Flush()
	s.statement.Close()
	if cerr := s.DB.Close(); err == nil {
		err = cerr
	}
	s.DB = nil
	logrus.Debugf("SQLite trace %s closed with %d records", s.Filename(), s.written)
	return err
}

func (s *SQLiteSink) createDatabase(fileName string) error {
	if s.dbName == "" {
		s.dbName = "queueing_trace_" + fileName
	}

	filename := s.Filename()
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return fmt.Errorf("open %s: %w", filename, err)
	}
	// sqlite allows a single writer per file
	db.SetMaxOpenConns(1)
	logrus.Infof("Trace is collected in database: %s", filename)

	s.DB = db
	return nil
}

func (s *SQLiteSink) createTable() error {
	statements := []string{
		`create table trace
		(
			run_id             varchar(32)  not null,
			station            varchar(100) not null,
			entity_id          integer      not null,
			kind               varchar(20)  not null,
			time               float        not null,
			since_last_arrival float        default 0,
			queue_length       integer      not null,
			servers_busy       integer      not null,
			service_start      float,
			service_end        float,
			wait               float,
			service            float,
			sojourn            float
		);`,
		`create index trace_time_index on trace (time);`,
		`create index trace_kind_index on trace (kind);`,
		`create index trace_station_index on trace (station);`,
		`create index trace_entity_index on trace (entity_id);`,
	}
	for _, q := range statements {
		if _, err := s.Exec(q); err != nil {
			return fmt.Errorf("failed to execute %q: %w", q, err)
		}
	}
	return nil
}

func (s *SQLiteSink) prepareStatement() error {
	stmt, err := s.Prepare(`INSERT INTO trace VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare trace insert: %w", err)
	}
	s.statement = stmt
	return nil
}

// RecordQuery selects records from a SQLite trace. Zero fields match everything.
type RecordQuery struct {
	Station         string
	Kind            EventKind
	EntityID        int // 0 matches all; entity IDs start at 1
	EnableTimeRange bool
	StartTime       float64
	EndTime         float64
}

// SQLiteReader reads records back from a database written by SQLiteSink.
type SQLiteReader struct {
	*sql.DB

	filename string
}

// NewSQLiteReader opens the database file for reading.
func NewSQLiteReader(filename string) (*SQLiteReader, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	return &SQLiteReader{DB: db, filename: filename}, nil
}

// ListStations returns the distinct stations in the trace.
func (r *SQLiteReader) ListStations() ([]string, error) {
	rows, err := r.Query("SELECT DISTINCT station FROM trace ORDER BY station")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []string
	for rows.Next() {
		var station string
		if err := rows.Scan(&station); err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, rows.Err()
}

// ListRecords returns the records matching the query in insertion order.
func (r *SQLiteReader) ListRecords(query RecordQuery) ([]Record, error) {
	sqlStr := `
		SELECT run_id, station, entity_id, kind, time, since_last_arrival,
			queue_length, servers_busy, service_start, service_end, wait, service, sojourn
		FROM trace
		WHERE 1=1
	`
	var args []any
	if query.Station != "" {
		sqlStr += ` AND station = ?`
		args = append(args, query.Station)
	}
	if query.Kind != "" {
		sqlStr += ` AND kind = ?`
		args = append(args, string(query.Kind))
	}
	if query.EntityID != 0 {
		sqlStr += ` AND entity_id = ?`
		args = append(args, query.EntityID)
	}
	if query.EnableTimeRange {
		sqlStr += ` AND time BETWEEN ? AND ?`
		args = append(args, query.StartTime, query.EndTime)
	}
	sqlStr += ` ORDER BY rowid`

	rows, err := r.Query(sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var kind string
		var start, end, wait, service, sojourn sql.NullFloat64
		err := rows.Scan(
			&rec.RunID, &rec.Station, &rec.EntityID, &kind, &rec.Timestamp, &rec.SinceLastArrival,
			&rec.QueueLength, &rec.ServersBusy, &start, &end, &wait, &service, &sojourn,
		)
		if err != nil {
			return nil, err
		}
		rec.Kind = EventKind(kind)
		if start.Valid {
			rec.Service = &ServiceTimes{
				Start:   start.Float64,
				End:     end.Float64,
				Wait:    wait.Float64,
				Service: service.Float64,
				Sojourn: sojourn.Float64,
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
