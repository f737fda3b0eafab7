package document

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesKeyOrder(t *testing.T) {
	v, err := Parse(`{"_id":"a1","name":"Ada","tags":["x","y"],"nested":{"z":1,"a":2}}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"_id", "name", "tags", "nested"}, v.Keys())
	nested, ok := v.Get("nested")
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a"}, nested.Keys())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"_id":"a1","name":"Ada","tags":["x","y"],"nested":{"z":1,"a":2}}`, string(out))
}

func TestParse_Numbers(t *testing.T) {
	tests := []struct {
		text    string
		integer bool
		want    float64
	}{
		{"42", true, 42},
		{"-7", true, -7},
		{"1.5", false, 1.5},
		{"1e3", false, 1000},
		{"9223372036854775808", false, 9223372036854775808},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			v, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, KindNumber, v.Kind())
			assert.Equal(t, tt.integer, v.IsInteger())
			f, ok := v.Float64()
			require.True(t, ok)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, text := range []string{"{not json", "", "{} {}", `{"a":}`, "[1,"} {
		t.Run(text, func(t *testing.T) {
			_, err := Parse(text)
			assert.Error(t, err)
		})
	}
}

func TestParseObject(t *testing.T) {
	v, err := ParseObject("   ")
	require.NoError(t, err)
	assert.True(t, v.IsObject())
	assert.Equal(t, 0, v.Len())

	_, err = ParseObject(`[1,2]`)
	assert.ErrorIs(t, err, ErrNotObject)

	v, err = ParseObject(`{"age":{"$gt":30}}`)
	require.NoError(t, err)
	assert.True(t, v.Has("age"))
}

func TestWithout_StripsIdentifier(t *testing.T) {
	orig := MustParse(`{"_id":"abc","name":"Ada","age":36}`)
	dup := orig.Without("_id")

	assert.False(t, dup.Has("_id"))
	assert.Equal(t, []string{"name", "age"}, dup.Keys())
	assert.True(t, orig.Has("_id"), "original must be untouched")
}

func TestWithAndPrepend(t *testing.T) {
	v := MustParse(`{"name":"Ada"}`)

	v2 := v.With("age", Int(36)).With("name", String("Grace"))
	assert.Equal(t, []string{"name", "age"}, v2.Keys())
	name, _ := v2.Get("name")
	assert.Equal(t, "Grace", name.Text())

	v3 := v2.Prepend("_id", String("x"))
	assert.Equal(t, []string{"_id", "name", "age"}, v3.Keys())
	assert.Equal(t, []string{"name"}, v.Keys())
}

func TestEqual(t *testing.T) {
	a := MustParse(`{"a":1,"b":[true,null,"s"]}`)
	b := MustParse(`{"b":[true,null,"s"],"a":1.0}`)
	c := MustParse(`{"a":2,"b":[true,null,"s"]}`)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, Int(1).Equal(String("1")))
}

func TestMarshal_NonFinite(t *testing.T) {
	out, err := json.Marshal(Array(Float(math.NaN()), Float(math.Inf(1)), Float(2.5)))
	require.NoError(t, err)
	assert.Equal(t, `[null,null,2.5]`, string(out))
}

func TestText(t *testing.T) {
	assert.Equal(t, "abc", String("abc").Text())
	assert.Equal(t, "12", Int(12).Text())
	assert.Equal(t, "1.25", Float(1.25).Text())
	assert.Equal(t, "true", Bool(true).Text())
	assert.Equal(t, `{"a":1}`, MustParse(`{"a":1}`).Text())
}

func TestFromGo(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	v := FromGo(map[string]any{
		"b":     []byte("bytes"),
		"a":     int32(7),
		"when":  ts,
		"list":  []any{1, "x", nil},
		"ratio": float32(0.5),
	})

	assert.Equal(t, []string{"a", "b", "list", "ratio", "when"}, v.Keys())
	a, _ := v.Get("a")
	assert.True(t, a.Equal(Int(7)))
	b, _ := v.Get("b")
	assert.Equal(t, "bytes", b.Text())
	when, _ := v.Get("when")
	assert.Equal(t, "2024-05-01T12:30:00.000Z", when.Text())
	list, _ := v.Get("list")
	assert.Equal(t, 3, list.Len())

	var nilPtr *int
	assert.True(t, FromGo(nilPtr).IsNull())
	assert.Equal(t, 2, FromGo([]string{"a", "b"}).Len())
}

func TestToGo(t *testing.T) {
	v := MustParse(`{"n":1,"f":1.5,"s":"x","a":[true],"o":{"k":null}}`)
	got := v.ToGo().(map[string]any)

	assert.Equal(t, int64(1), got["n"])
	assert.Equal(t, 1.5, got["f"])
	assert.Equal(t, []any{true}, got["a"])
	assert.Equal(t, map[string]any{"k": nil}, got["o"])
}
