package parser

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql"

	"firewall-network-graph/internal/model"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// recordColumns lists the rule table columns in model.Record field order.
const recordColumns = "rule_id, source_zone, source_region, source_hostname, source_ip, source_object, " +
	"target_zone, target_region, target_hostname, target_domain, target_ip, target_port, target_object, " +
	"service, application_scenario, request_unit, responsible, request_number"

// MariaDBSource reads rule records from a MariaDB table.
type MariaDBSource struct {
	db    *sql.DB
	table string
}

func NewMariaDBSource(dsn, table string) (*MariaDBSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}

	return &MariaDBSource{db: db, table: table}, nil
}

func (s *MariaDBSource) Close() error {
	return s.db.Close()
}

func (s *MariaDBSource) String() string {
	return "mariadb:" + s.table
}

func (s *MariaDBSource) Records(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM "+s.table+" ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}
	defer rows.Close()

	records := []model.Record{}
	index := 0
	for rows.Next() {
		var cols [18]sql.NullString
		dest := make([]any, len(cols))
		for i := range cols {
			dest[i] = &cols[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		index++

		rec := model.Record{
			RecordID:            index,
			RuleID:              cols[0].String,
			SourceZone:          cols[1].String,
			SourceRegion:        cols[2].String,
			SourceHostname:      cols[3].String,
			SourceIP:            cols[4].String,
			SourceObject:        cols[5].String,
			TargetZone:          cols[6].String,
			TargetRegion:        cols[7].String,
			TargetHostname:      cols[8].String,
			TargetDomain:        cols[9].String,
			TargetIP:            cols[10].String,
			TargetPort:          cols[11].String,
			TargetObject:        cols[12].String,
			Service:             cols[13].String,
			ApplicationScenario: cols[14].String,
			RequestUnit:         cols[15].String,
			Responsible:         cols[16].String,
			RequestNumber:       cols[17].String,
		}
		if rec.SourceIP == "" || rec.TargetIP == "" {
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rule rows: %w", err)
	}
	return records, nil
}
