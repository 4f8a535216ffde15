package ygggo_session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_Accessors(t *testing.T) {
	assert.True(t, Value{}.IsNull())
	assert.Equal(t, "NULL", NullValue().String())

	n, ok := Int16Value(-7).Int()
	assert.True(t, ok)
	assert.Equal(t, int64(-7), n)
	_, ok = Int16Value(-7).Uint()
	assert.False(t, ok)

	u, ok := Uint64Value(1 << 63).Uint()
	assert.True(t, ok)
	assert.Equal(t, uint64(1<<63), u)

	f, ok := Float32Value(0.5).Float()
	assert.True(t, ok)
	assert.Equal(t, 0.5, f)

	b, ok := BoolValue(true).Bool()
	assert.True(t, ok && b)

	assert.Equal(t, "abc", BytesValue([]byte("abc")).String())
	assert.Equal(t, "42", Uint8Value(42).String())
	assert.Equal(t, "bytes", KindBytes.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestRow_Get(t *testing.T) {
	r := Row{
		{Name: "id", Value: Int64Value(1)},
		{Name: "id", Value: Int64Value(2)},
	}
	v, ok := r.Get("id")
	assert.True(t, ok)
	assert.Equal(t, int64(1), v.Any())
	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"id", "id"}, r.Names())
}
