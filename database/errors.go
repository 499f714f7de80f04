/*
 * Copyright 2026 romakot321.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Error taxonomy surfaced to callers. All operation errors wrap one of these
// sentinels, so callers match with errors.Is regardless of the backend.
var (
	// ErrConfiguration reports missing or invalid connection parameters.
	ErrConfiguration = errors.New("invalid database configuration")

	// ErrNotFound reports that zero rows matched a get/update/delete key.
	ErrNotFound = errors.New("entity not found")

	// ErrValidation reports a schema payload violating entity column constraints.
	ErrValidation = errors.New("schema validation failed")

	// ErrConflict reports an integrity violation raised by the database.
	ErrConflict = errors.New("conflict with existing data")
)

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
)

// ClassifySQLError maps a driver error onto an SQLError kind. MySQL errors
// carry numeric codes; postgres and sqlite are matched on sqlstate codes and
// message substrings.
func ClassifySQLError(err error) (bool, SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1054:
			return true, NoColumnErr
		case 1062:
			return true, DuplicateKeyErr
		case 1048:
			return true, NotNullViolationErr
		case 1216, 1217, 1451, 1452:
			return true, ForeignKeyViolationErr
		case 3819:
			return true, CheckConstraintViolationErr
		case 1265:
			return true, DataTruncatedErr
		case 1146:
			return true, NoTableErr
		case 1050:
			return true, ExistTableErr
		default:
			return true, UnknownErr
		}
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "sqlstate 42703"),
		strings.Contains(s, "undefined column"),
		strings.Contains(s, "no such column"):
		return true, NoColumnErr
	case strings.Contains(s, "sqlstate 42p01"),
		strings.Contains(s, "undefined table"),
		strings.Contains(s, "no such table"):
		return true, NoTableErr
	case strings.Contains(s, "already exists") && strings.Contains(s, "table"),
		strings.Contains(s, "relation") && strings.Contains(s, "already exists"):
		return true, ExistTableErr
	case strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "unique constraint failed"),
		strings.Contains(s, "sqlstate 23505"):
		return true, DuplicateKeyErr
	case strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "not null constraint failed"),
		strings.Contains(s, "sqlstate 23502"):
		return true, NotNullViolationErr
	case strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "foreign key constraint failed"),
		strings.Contains(s, "sqlstate 23503"):
		return true, ForeignKeyViolationErr
	case strings.Contains(s, "check constraint"),
		strings.Contains(s, "sqlstate 23514"):
		return true, CheckConstraintViolationErr
	case strings.Contains(s, "string data right truncation"),
		strings.Contains(s, "sqlstate 22001"),
		strings.Contains(s, "data truncated"):
		return true, DataTruncatedErr
	case strings.Contains(s, "datatype mismatch"),
		strings.Contains(s, "sqlstate 42804"):
		return true, InvalidTypeCastErr
	}
	return false, UnknownErr
}

// WrapError folds a driver error into the package taxonomy: no rows becomes
// ErrNotFound, integrity violations become ErrConflict, malformed payloads
// become ErrValidation. Errors outside the taxonomy pass through unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	ok, kind := ClassifySQLError(err)
	if !ok {
		return err
	}
	switch kind {
	case NoRowsErr:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case DuplicateKeyErr, ForeignKeyViolationErr:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case NotNullViolationErr, CheckConstraintViolationErr, DataTruncatedErr,
		InvalidTypeCastErr, NoColumnErr:
		return fmt.Errorf("%w: %v", ErrValidation, err)
	default:
		return err
	}
}
