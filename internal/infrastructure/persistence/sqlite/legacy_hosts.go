package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/domain/repository"
	"github.com/bnema/permstore/internal/domain/service"
	"github.com/bnema/permstore/internal/logging"
)

// LegacyHostsVersion is the schema version whose migration rewrites moz_hosts
// rows into moz_perms.
const LegacyHostsVersion int64 = 3

// Tables left behind by interrupted migrations of earlier releases.
var staleMigrationTables = []string{"moz_hosts_is_backup", "moz_perms_v6"}

// legacyHostsMigration builds the Go migration that moves every moz_hosts row
// into moz_perms, consulting index to pick schemes and ports.
func legacyHostsMigration(index repository.VisitIndex) *goose.Migration {
	up := &goose.GoFunc{
		RunTx: func(ctx context.Context, tx *sql.Tx) error {
			return migrateLegacyHosts(ctx, tx, index, time.Now())
		},
	}
	return goose.NewGoMigration(LegacyHostsVersion, up, nil)
}

func migrateLegacyHosts(ctx context.Context, tx *sql.Tx, index repository.VisitIndex, now time.Time) error {
	log := logging.FromContext(ctx).With().Str("migration", "legacy_hosts").Logger()

	rows, err := readLegacyHosts(ctx, tx)
	if err != nil {
		return err
	}

	expander := service.NewLegacyExpander(service.NewVisitResolver(index), now)

	var written, skipped int
	for _, row := range rows {
		records, err := expander.Expand(ctx, row)
		if err != nil {
			log.Warn().Err(err).Int64("id", row.ID).Msg("skipping legacy permission row")
			skipped++
			continue
		}
		for _, record := range records {
			if err := upsertPermission(ctx, tx, record); err != nil {
				return fmt.Errorf("failed to write migrated permission %s/%s: %w", record.Origin, record.Kind, err)
			}
			written++
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM moz_hosts`); err != nil {
		return fmt.Errorf("failed to empty moz_hosts: %w", err)
	}
	for _, table := range staleMigrationTables {
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}

	log.Info().
		Int("legacy_rows", len(rows)).
		Int("written", written).
		Int("skipped", skipped).
		Msg("legacy host permissions migrated")

	return nil
}

// readLegacyHosts loads moz_hosts in insertion order. Rows written before the
// isolation columns existed read as the default attributes; rows that fail to
// scan are logged and skipped.
func readLegacyHosts(ctx context.Context, q querier) ([]*entity.LegacyHostRecord, error) {
	log := logging.FromContext(ctx)

	columns, err := TableColumns(ctx, q, "moz_hosts")
	if err != nil {
		return nil, err
	}

	selectExpr := func(col, fallback string) string {
		if columns[strings.ToLower(col)] {
			return col
		}
		return fallback
	}

	query := fmt.Sprintf(`SELECT id, host, type, permission, %s, %s, %s, %s, %s FROM moz_hosts ORDER BY id`,
		selectExpr("expireType", "0"),
		selectExpr("expireTime", "0"),
		selectExpr("modificationTime", "0"),
		selectExpr("appId", "0"),
		selectExpr("isInBrowserElement", "0"),
	)

	result, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read moz_hosts: %w", err)
	}
	defer result.Close()

	var rows []*entity.LegacyHostRecord
	for result.Next() {
		var (
			id                                    int64
			host, typ                             sql.NullString
			permission, expireType                sql.NullInt64
			expireTime, modified, appID, inBrowse sql.NullInt64
		)
		if err := result.Scan(&id, &host, &typ, &permission, &expireType, &expireTime, &modified, &appID, &inBrowse); err != nil {
			log.Warn().Err(err).Msg("skipping unreadable moz_hosts row")
			continue
		}
		rows = append(rows, &entity.LegacyHostRecord{
			ID:                 id,
			Host:               host.String,
			Type:               typ.String,
			Permission:         int(permission.Int64),
			ExpireType:         entity.ExpireType(expireType.Int64),
			ExpireTime:         fromMillis(expireTime.Int64),
			ModificationTime:   fromMillis(modified.Int64),
			AppID:              uint32(max(appID.Int64, 0)),
			IsInBrowserElement: inBrowse.Int64 != 0,
		})
	}
	return rows, result.Err()
}
