package database

// DBQuery is a named SQL statement. Query uses MySQL syntax with `?`
// placeholders; PostgresQuery overrides it where the dialects differ.
type DBQuery struct {
	ID            string
	Query         string
	PostgresQuery string
}

// GetQuery returns the statement text for the given database type
func (q DBQuery) GetQuery(dbType string) string {
	if (dbType == "postgres" || dbType == "postgresql") && q.PostgresQuery != "" {
		return q.PostgresQuery
	}
	return q.Query
}
