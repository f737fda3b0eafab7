package mongo

import (
	"testing"
	"time"

	"github.com/koustreak/docdeck/internal/document"
	"github.com/koustreak/docdeck/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFromBSON_Document(t *testing.T) {
	oid := primitive.NewObjectID()
	when := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	raw := bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: "Ada"},
		{Key: "age", Value: int32(36)},
		{Key: "big", Value: int64(1) << 40},
		{Key: "score", Value: 9.5},
		{Key: "born", Value: primitive.NewDateTimeFromTime(when)},
		{Key: "tags", Value: bson.A{"a", bson.D{{Key: "k", Value: true}}}},
		{Key: "blob", Value: primitive.Binary{Data: []byte("hi")}},
		{Key: "ts", Value: primitive.Timestamp{T: 10, I: 2}},
		{Key: "nothing", Value: nil},
	}

	v := fromBSON(raw)

	assert.Equal(t, []string{"_id", "name", "age", "big", "score", "born", "tags", "blob", "ts", "nothing"}, v.Keys())
	id, _ := v.Get("_id")
	assert.Equal(t, oid.Hex(), id.Text())
	age, _ := v.Get("age")
	assert.True(t, age.IsInteger())
	born, _ := v.Get("born")
	assert.Equal(t, "2024-01-02T03:04:05.006Z", born.Text())
	blob, _ := v.Get("blob")
	assert.Equal(t, "aGk=", blob.Text())
	ts, _ := v.Get("ts")
	assert.Equal(t, `{"t":10,"i":2}`, ts.Text())
	tags, _ := v.Get("tags")
	assert.Equal(t, `["a",{"k":true}]`, tags.Text())
}

func TestFromBSON_MapSortsKeys(t *testing.T) {
	v := fromBSON(bson.M{"b": 1, "a": primitive.ObjectID{}})
	assert.Equal(t, []string{"a", "b"}, v.Keys())
}

func TestToBSON_Numbers(t *testing.T) {
	small, err := toBSON(document.Int(5))
	require.NoError(t, err)
	assert.Equal(t, int32(5), small)

	large, err := toBSON(document.Int(1 << 40))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), large)

	f, err := toBSON(document.Float(2.5))
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)
}

func TestToFilter_ExtendedJSON(t *testing.T) {
	hex := "65a1b2c3d4e5f60718293a4b"
	filter := document.MustParse(`{"_id":{"$oid":"` + hex + `"},"at":{"$gte":{"$date":"2024-01-01T00:00:00Z"}},"n":{"$numberLong":"12"}}`)

	d, err := toFilter(filter)
	require.NoError(t, err)
	require.Len(t, d, 3)

	oid, _ := primitive.ObjectIDFromHex(hex)
	assert.Equal(t, oid, d[0].Value)

	at := d[1].Value.(bson.D)
	assert.Equal(t, "$gte", at[0].Key)
	assert.Equal(t, primitive.NewDateTimeFromTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), at[0].Value)
	assert.Equal(t, int64(12), d[2].Value)
}

func TestToFilter_Errors(t *testing.T) {
	_, err := toFilter(document.MustParse(`[1]`))
	assert.True(t, errs.IsInvalidFilter(err))

	_, err = toFilter(document.MustParse(`{"_id":{"$oid":"nothex"}}`))
	assert.True(t, errs.IsInvalidFilter(err))

	d, err := toFilter(document.Null())
	require.NoError(t, err)
	assert.Empty(t, d)
}

func TestToDocument_RequiresObject(t *testing.T) {
	_, err := toDocument(document.String("x"))
	assert.True(t, errs.IsInvalidInput(err))
}

func TestIDFilter(t *testing.T) {
	hex := "65a1b2c3d4e5f60718293a4b"
	oid, _ := primitive.ObjectIDFromHex(hex)

	tests := []struct {
		name string
		id   string
		want bson.D
	}{
		{"object id", hex, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{oid, hex}}}}}},
		{"plain string", "user-01", bson.D{{Key: "_id", Value: "user-01"}}},
		{"integer", "42", bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{"42", int32(42), int64(42)}}}}}},
		{"float", "1.5", bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{"1.5", 1.5}}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idFilter(tt.id))
		})
	}
}

func TestRestoreTypes_KeepsUntouchedFields(t *testing.T) {
	owner := primitive.NewObjectID()
	at := primitive.NewDateTimeFromTime(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	stored := bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "owner", Value: owner},
		{Key: "at", Value: at},
		{Key: "meta", Value: bson.D{{Key: "by", Value: owner}}},
		{Key: "refs", Value: bson.A{owner, "plain"}},
		{Key: "label", Value: "x"},
	}

	edited := fromBSON(stored).Without("_id").With("label", document.String("y"))
	next, err := toDocument(edited)
	require.NoError(t, err)

	got := restoreTypes(next, stored).Map()
	assert.Equal(t, owner, got["owner"])
	assert.Equal(t, at, got["at"])
	assert.Equal(t, owner, got["meta"].(bson.D).Map()["by"])
	assert.Equal(t, bson.A{owner, "plain"}, got["refs"])
	assert.Equal(t, "y", got["label"])
}

func TestRestoreTypes_ChangedFieldsStayAsSent(t *testing.T) {
	owner := primitive.NewObjectID()
	stored := bson.D{
		{Key: "owner", Value: owner},
		{Key: "name", Value: owner.Hex()},
	}
	next := bson.D{
		{Key: "owner", Value: primitive.NewObjectID().Hex()},
		{Key: "name", Value: owner.Hex()},
		{Key: "extra", Value: int32(1)},
	}

	got := restoreTypes(next, stored)
	assert.IsType(t, "", got.Map()["owner"])
	assert.Equal(t, owner.Hex(), got.Map()["name"], "a stored string stays a string")
	assert.Equal(t, int32(1), got.Map()["extra"])
}
