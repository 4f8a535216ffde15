package ygggo_session

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertColumn_Kinds(t *testing.T) {
	cases := []struct {
		typ  string
		raw  any
		kind Kind
		want any
	}{
		{"TINYINT", int64(-5), KindInt8, int8(-5)},
		{"SMALLINT", []byte("-300"), KindInt16, int16(-300)},
		{"INT", int64(70000), KindInt32, int32(70000)},
		{"MEDIUMINT", int64(-8), KindInt32, int32(-8)},
		{"BIGINT", int64(-1 << 40), KindInt64, int64(-1 << 40)},
		{"UNSIGNED TINYINT", int64(255), KindUint8, uint8(255)},
		{"SMALLINT UNSIGNED", []byte("65535"), KindUint16, uint16(65535)},
		{"UNSIGNED INT", int64(4000000000), KindUint32, uint32(4000000000)},
		{"UNSIGNED BIGINT", []byte("18446744073709551615"), KindUint64, uint64(18446744073709551615)},
		{"FLOAT", float32(1.5), KindFloat32, float32(1.5)},
		{"DOUBLE", []byte("2.25"), KindFloat64, float64(2.25)},
		{"YEAR", int64(2024), KindInt32, int32(2024)},
		{"BOOL", int64(1), KindBool, true},
		{"BOOLEAN", int64(0), KindBool, false},
		{"VARCHAR", "hello", KindBytes, []byte("hello")},
		{"BLOB", []byte{0, 1}, KindBytes, []byte{0, 1}},
		{"ENUM", []byte("small"), KindBytes, []byte("small")},
		{"JSON", []byte(`{"a":1}`), KindBytes, []byte(`{"a":1}`)},
		{"NULL", []byte("x"), KindNull, nil},
	}
	for _, tc := range cases {
		t.Run(tc.typ, func(t *testing.T) {
			v, err := convertColumn(tc.typ, tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, v.Kind())
			assert.Equal(t, tc.want, v.Any())
		})
	}
}

func TestConvertColumn_NullWinsOverType(t *testing.T) {
	for _, typ := range []string{"BIGINT", "VARCHAR", "DATETIME", "BIT"} {
		v, err := convertColumn(typ, nil)
		require.NoError(t, err, typ)
		assert.True(t, v.IsNull(), typ)
	}
}

func TestConvertColumn_Overflow(t *testing.T) {
	_, err := convertColumn("TINYINT", int64(200))
	assert.Error(t, err)
	_, err = convertColumn("UNSIGNED SMALLINT", int64(-1))
	assert.Error(t, err)
	_, err = convertColumn("INT", []byte("not a number"))
	assert.Error(t, err)
}

func TestConvertColumn_Unsupported(t *testing.T) {
	_, err := convertColumn("BIT", []byte{1})
	require.ErrorIs(t, err, ErrUnsupportedType)
	_, err = convertColumn("GEOMETRY", []byte{1})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestConvertColumn_TimeValues(t *testing.T) {
	ts := time.Date(2024, 2, 29, 13, 4, 5, 120000000, time.UTC)
	v, err := convertColumn("DATETIME", ts)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29 13:04:05.12", v.String())

	v, err = convertColumn("DATE", ts)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", v.String())
}

// Canonical renderings of decimal and temporal columns come back unchanged.
func TestEncodeRows_CanonicalRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	canonical := []string{"-12345.6789", "2024-02-29", "-838:59:59.000000", "2024-02-29 23:59:59.999999", "1970-01-01 00:00:01"}
	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("d").OfType("DECIMAL", []byte{}),
		sqlmock.NewColumn("day").OfType("DATE", []byte{}),
		sqlmock.NewColumn("t").OfType("TIME", []byte{}),
		sqlmock.NewColumn("dt").OfType("DATETIME", []byte{}),
		sqlmock.NewColumn("ts").OfType("TIMESTAMP", []byte{}),
	).AddRow([]byte(canonical[0]), []byte(canonical[1]), []byte(canonical[2]), []byte(canonical[3]), []byte(canonical[4]))
	mock.ExpectQuery("SELECT d, day, t, dt, ts FROM x").WillReturnRows(rows)

	rs, err := db.QueryContext(context.Background(), "SELECT d, day, t, dt, ts FROM x")
	require.NoError(t, err)
	defer rs.Close()
	got, err := encodeRows(rs)
	require.NoError(t, err)
	require.Len(t, got, 1)
	for i, col := range got[0] {
		assert.Equal(t, KindBytes, col.Value.Kind())
		assert.Equal(t, canonical[i], string(col.Value.Bytes()), col.Name)
	}
}

func TestEncodeRows_FailureDropsAllRows(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("n").OfType("TINYINT", int64(0))).
		AddRow(int64(1)).AddRow(int64(2)).AddRow(int64(999))
	mock.ExpectQuery("SELECT n FROM x").WillReturnRows(rows)

	rs, err := db.QueryContext(context.Background(), "SELECT n FROM x")
	require.NoError(t, err)
	defer rs.Close()
	got, err := encodeRows(rs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "n"`)
	assert.Nil(t, got)
}
