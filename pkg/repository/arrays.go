package repository

import (
	"database/sql"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"
)

var typeMaps = sync.Pool{
	New: func() any { return pgtype.NewMap() },
}

type textArray struct {
	dst *[]string
}

// TextArray returns a scan destination for a PostgreSQL text[] column.
// NULL scans to an empty slice.
func TextArray(dst *[]string) sql.Scanner {
	return textArray{dst: dst}
}

func (a textArray) Scan(src any) error {
	m := typeMaps.Get().(*pgtype.Map)
	defer typeMaps.Put(m)

	if err := m.SQLScanner(a.dst).Scan(src); err != nil {
		return err
	}
	if *a.dst == nil {
		*a.dst = []string{}
	}
	return nil
}
