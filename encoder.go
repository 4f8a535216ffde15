package ygggo_session

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05.999999"
	datetimeLayout = "2006-01-02 15:04:05.999999"
)

// rowEncoder turns scanned rows into Rows using the declared column types.
type rowEncoder struct {
	names []string
	types []string
	dest  []any
	ptrs  []any
}

func newRowEncoder(rs *sql.Rows) (*rowEncoder, error) {
	cts, err := rs.ColumnTypes()
	if err != nil {
		return nil, err
	}
	enc := &rowEncoder{
		names: make([]string, len(cts)),
		types: make([]string, len(cts)),
		dest:  make([]any, len(cts)),
		ptrs:  make([]any, len(cts)),
	}
	for i, ct := range cts {
		enc.names[i] = ct.Name()
		enc.types[i] = strings.ToUpper(ct.DatabaseTypeName())
		enc.ptrs[i] = &enc.dest[i]
	}
	return enc, nil
}

// next scans the current row and converts every column.
func (e *rowEncoder) next(rs *sql.Rows) (Row, error) {
	for i := range e.dest {
		e.dest[i] = nil
	}
	if err := rs.Scan(e.ptrs...); err != nil {
		return nil, err
	}
	row := make(Row, len(e.dest))
	for i, raw := range e.dest {
		v, err := convertColumn(e.types[i], raw)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", e.names[i], err)
		}
		row[i] = Column{Name: e.names[i], Value: v}
	}
	return row, nil
}

// encodeRows drains rs. Any conversion failure discards the whole set.
func encodeRows(rs *sql.Rows) ([]Row, error) {
	enc, err := newRowEncoder(rs)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0)
	for rs.Next() {
		row, err := enc.next(rs)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// encodeFirst returns the first row of rs, or nil when there is none.
func encodeFirst(rs *sql.Rows) (Row, error) {
	enc, err := newRowEncoder(rs)
	if err != nil {
		return nil, err
	}
	if !rs.Next() {
		return nil, rs.Err()
	}
	row, err := enc.next(rs)
	if err != nil {
		return nil, err
	}
	return row, rs.Err()
}

// convertColumn maps a raw driver value to a Value by declared type name.
// go-sql-driver spells unsigned types "UNSIGNED INT"; both orders are accepted.
func convertColumn(typeName string, raw any) (Value, error) {
	if raw == nil {
		return NullValue(), nil
	}
	switch typeName {
	case "NULL":
		return NullValue(), nil
	case "BOOL", "BOOLEAN":
		// go-sql-driver reports TINYINT(1) as TINYINT; other drivers use these
		n, err := toInt(raw, 8)
		return BoolValue(n != 0), err
	case "TINYINT":
		n, err := toInt(raw, 8)
		return Int8Value(int8(n)), err
	case "SMALLINT":
		n, err := toInt(raw, 16)
		return Int16Value(int16(n)), err
	case "INT", "INTEGER", "MEDIUMINT", "YEAR":
		n, err := toInt(raw, 32)
		return Int32Value(int32(n)), err
	case "BIGINT":
		n, err := toInt(raw, 64)
		return Int64Value(n), err
	case "TINYINT UNSIGNED", "UNSIGNED TINYINT":
		n, err := toUint(raw, 8)
		return Uint8Value(uint8(n)), err
	case "SMALLINT UNSIGNED", "UNSIGNED SMALLINT":
		n, err := toUint(raw, 16)
		return Uint16Value(uint16(n)), err
	case "INT UNSIGNED", "UNSIGNED INT", "INTEGER UNSIGNED", "MEDIUMINT UNSIGNED", "UNSIGNED MEDIUMINT":
		n, err := toUint(raw, 32)
		return Uint32Value(uint32(n)), err
	case "BIGINT UNSIGNED", "UNSIGNED BIGINT":
		n, err := toUint(raw, 64)
		return Uint64Value(n), err
	case "FLOAT":
		f, err := toFloat(raw, 32)
		return Float32Value(float32(f)), err
	case "DOUBLE", "REAL":
		f, err := toFloat(raw, 64)
		return Float64Value(f), err
	case "DECIMAL", "NEWDECIMAL":
		return BytesValue(toText(raw, "")), nil
	case "DATE":
		return BytesValue(toText(raw, dateLayout)), nil
	case "TIME":
		return BytesValue(toText(raw, timeLayout)), nil
	case "DATETIME", "TIMESTAMP":
		return BytesValue(toText(raw, datetimeLayout)), nil
	case "BINARY", "VARBINARY", "TINYBLOB", "BLOB", "MEDIUMBLOB", "LONGBLOB",
		"CHAR", "VARCHAR", "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "JSON", "ENUM", "SET":
		return BytesValue(toText(raw, "")), nil
	case "BIT":
		return Value{}, fmt.Errorf("%w: BIT columns cannot be decoded", ErrUnsupportedType)
	}
	return Value{}, fmt.Errorf("%w: column type %q", ErrUnsupportedType, typeName)
}

func toInt(raw any, bits int) (int64, error) {
	var n int64
	switch v := raw.(type) {
	case int64:
		n = v
	case int32:
		n = int64(v)
	case int:
		n = int64(v)
	case uint64:
		if v > 1<<63-1 {
			return 0, fmt.Errorf("value %d overflows int%d", v, bits)
		}
		n = int64(v)
	case bool:
		if v {
			n = 1
		}
	case []byte:
		return strconv.ParseInt(string(v), 10, bits)
	case string:
		return strconv.ParseInt(v, 10, bits)
	default:
		return 0, fmt.Errorf("cannot decode %T as int%d", raw, bits)
	}
	if bits < 64 {
		lim := int64(1) << (bits - 1)
		if n < -lim || n >= lim {
			return 0, fmt.Errorf("value %d overflows int%d", n, bits)
		}
	}
	return n, nil
}

func toUint(raw any, bits int) (uint64, error) {
	var n uint64
	switch v := raw.(type) {
	case uint64:
		n = v
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("value %d is negative for uint%d", v, bits)
		}
		n = uint64(v)
	case int:
		if v < 0 {
			return 0, fmt.Errorf("value %d is negative for uint%d", v, bits)
		}
		n = uint64(v)
	case []byte:
		return strconv.ParseUint(string(v), 10, bits)
	case string:
		return strconv.ParseUint(v, 10, bits)
	default:
		return 0, fmt.Errorf("cannot decode %T as uint%d", raw, bits)
	}
	if bits < 64 && n >= uint64(1)<<bits {
		return 0, fmt.Errorf("value %d overflows uint%d", n, bits)
	}
	return n, nil
}

func toFloat(raw any, bits int) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case []byte:
		return strconv.ParseFloat(string(v), bits)
	case string:
		return strconv.ParseFloat(v, bits)
	}
	return 0, fmt.Errorf("cannot decode %T as float%d", raw, bits)
}

// toText renders raw as bytes. layout formats time.Time values, which only
// show up when a driver parses temporal columns itself.
func toText(raw any, layout string) []byte {
	switch v := raw.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	case time.Time:
		if layout == "" {
			layout = datetimeLayout
		}
		return []byte(v.Format(layout))
	}
	return []byte(fmt.Sprint(raw))
}
