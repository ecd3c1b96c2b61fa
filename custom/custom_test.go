package custom

import (
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/query"
	"github.com/donutnomad/autofield/rule"
	"github.com/donutnomad/autofield/schema"
)

var columns = []schema.Column{
	{Name: "id", Type: "int64"},
	{Name: "name", Type: "string"},
	{Name: "create_time", Type: "time.Time"},
	{Name: "update_time", Type: "time.Time"},
	{Name: "create_by", Type: "string"},
	{Name: "update_by", Type: "string"},
	{Name: "version", Type: "int"},
	{Name: "delete_flag", Type: "int"},
	{Name: "state", Type: "int"},
	{Name: "state_name", Type: "string"},
}

func build(cfg feature.Config) Operations {
	b := schema.Bind(cfg, columns)
	return Build(cfg, b, rule.BuildCreate(cfg, b), rule.BuildUpdate(cfg, b))
}

type seqIDs struct {
	n atomic.Int64
}

func (s *seqIDs) NextID() string {
	return strconv.FormatInt(s.n.Add(1), 10)
}

func TestSoftDeleteDisabled(t *testing.T) {
	ops := build(feature.Config{Timestamps: true})
	_, err := ops.SoftDelete()
	assert.ErrorIs(t, err, ErrSoftDeleteDisabled)
	assert.False(t, ops.HasSoftDelete())
}

func TestSoftDeleteApply(t *testing.T) {
	ops := build(feature.Config{Timestamps: true, Audit: true, Version: true, SoftDelete: true, SnowflakeID: true})
	sd, err := ops.SoftDelete()
	require.NoError(t, err)
	assert.Equal(t, "id", sd.KeyColumn)
	assert.Equal(t, "delete_flag", sd.FlagColumn)
	assert.Equal(t, int64(1), sd.FlagValue)

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(48 * time.Hour)
	rec := rule.FromMap(map[string]any{
		"id":          int64(10),
		"create_time": created,
		"update_time": created,
		"update_by":   "u1",
		"version":     3,
		"delete_flag": 0,
	})
	sd.Apply(rec, rule.Env{Now: now, ActorID: "u2"})

	assert.Equal(t, map[string]any{
		"id":          int64(10),
		"create_time": created,
		"update_time": now,
		"update_by":   "u2",
		"version":     int64(4),
		"delete_flag": int64(1),
	}, rec.Map())
}

func TestSoftDeleteSpec(t *testing.T) {
	sd, err := build(feature.Config{SoftDelete: true}).SoftDelete()
	require.NoError(t, err)

	one := sd.One(int64(5))
	assert.Equal(t, query.Eq("id", int64(5)), one.Filter())
	assert.Equal(t, map[string]any{"delete_flag": int64(1)}, one.Assignments())

	many := sd.Many(1, 2, 3)
	assert.Equal(t, query.In("id", 1, 2, 3), many.Filter())
	assert.Len(t, many.Keys, 3)
}

func TestBatchInsertMany(t *testing.T) {
	ops := build(feature.Config{SnowflakeID: true, Timestamps: true, State: true})
	ids := &seqIDs{}
	now := time.Now()

	records := []rule.Record{{}, {}, rule.FromMap(map[string]any{"id": int64(99)})}
	ops.BatchInsertMany(records, rule.Env{Now: now, IDs: ids})

	var got []any
	for _, rec := range records {
		v, ok := rec.Get("id")
		require.True(t, ok)
		got = append(got, v)

		st, _ := rec.Get("state")
		assert.Equal(t, int64(1), st)
		ct, _ := rec.Get("create_time")
		assert.Equal(t, now, ct)
	}
	assert.Equal(t, []any{int64(1), int64(2), int64(99)}, got, "每行独立生成 ID")
}

func TestBatchUpdate(t *testing.T) {
	ops := build(feature.EnableAll())

	spec, err := ops.BatchUpdate().
		Set("name", "x").
		Set("state", 2).
		Where(query.Eq("id", 1)).
		Build()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "x", "state": 2}, spec.Assignments)
	assert.Len(t, spec.Filters, 1)

	_, err = ops.BatchUpdate().Where(query.Eq("id", 1)).Build()
	assert.ErrorIs(t, err, ErrEmptyAssignments)

	_, err = ops.BatchUpdate().Set("name", "x").Build()
	assert.ErrorIs(t, err, ErrMissingFilter)

	for _, col := range []string{"id", "create_time", "update_time", "update_by", "version", "delete_flag"} {
		_, err = ops.BatchUpdate().Set(col, 1).Set("name", "x").Where(query.Eq("id", 1)).Build()
		var reserved *ReservedColumnError
		require.ErrorAs(t, err, &reserved, col)
		assert.Equal(t, col, reserved.Column)
	}

	// 未开启的特性对应的字段可以自由赋值
	ops = build(feature.Config{State: true})
	assert.False(t, ops.Reserved("version"))
	_, err = ops.BatchUpdate().Set("version", 1).Where(query.Eq("id", 1)).Build()
	assert.NoError(t, err)
}
