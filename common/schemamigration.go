package common

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	createTableRegex         = regexp.MustCompile(`(?i)create table if not exists ([0-9a-z_]*) *\(`)
	alterTableAddColumnRegex = regexp.MustCompile(`(?i)alter table ([0-9a-z_]*) add column if not exists ([0-9a-z_]*)`)
	addIndexRegex            = regexp.MustCompile(`(?i)create (unique )?index if not exists ([0-9a-z_]*) on ([0-9a-z_]*)`)
)

// InitSchemas applies the provided schema statements, skipping the ones whose
// table/index/column already exists. Fatals on failure, the service can't run
// against a half-initialized database.
func InitSchemas(name string, schemas ...string) {
	for i, v := range schemas {
		actualName := fmt.Sprintf("%s[%d]", name, i)
		initSchema(v, actualName)
	}
}

func initSchema(schema string, name string) {
	if confNoSchemaInit.GetBool() {
		return
	}

	skip, err := checkSkipSchemaInit(schema)
	if err != nil {
		logger.WithError(err).Error("failed checking if we should skip schema: ", name)
	}

	if skip {
		return
	}

	logger.Info("schema initialization: ", name)

	_, err = PQ.Exec(schema)
	if err != nil {
		logger.WithError(err).Fatal("failed initializing postgres db schema for ", name)
	}
}

func checkSkipSchemaInit(schema string) (exists bool, err error) {
	trimmed := strings.TrimSpace(schema)

	if matches := createTableRegex.FindAllStringSubmatch(trimmed, -1); len(matches) > 0 {
		return TableExists(matches[0][1])
	}

	if matches := addIndexRegex.FindAllStringSubmatch(trimmed, -1); len(matches) > 0 {
		return indexExists(matches[0][3], matches[0][2])
	}

	if matches := alterTableAddColumnRegex.FindAllStringSubmatch(trimmed, -1); len(matches) > 0 {
		return columnExists(matches[0][1], matches[0][2])
	}

	return false, nil
}

func TableExists(table string) (b bool, err error) {
	const query = `
SELECT EXISTS
(
	SELECT 1
	FROM information_schema.tables
	WHERE table_schema = 'public'
	AND table_name = $1
);`

	err = PQ.QueryRow(query, table).Scan(&b)
	return b, err
}

func indexExists(table, index string) (b bool, err error) {
	const query = `
SELECT EXISTS
(
	SELECT 1
	FROM
		pg_class t,
		pg_class i,
		pg_index ix
	WHERE
		t.oid = ix.indrelid
		AND i.oid = ix.indexrelid
		AND t.relkind = 'r'
		AND t.relname = $1
		AND i.relname = $2
);`

	err = PQ.QueryRow(query, table, index).Scan(&b)
	return b, err
}

func columnExists(table, column string) (b bool, err error) {
	const query = `
SELECT EXISTS
(
	SELECT 1
	FROM information_schema.columns
	WHERE table_name=$1 and column_name=$2
);`

	err = PQ.QueryRow(query, table, column).Scan(&b)
	return b, err
}
