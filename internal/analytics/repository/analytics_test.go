package repository

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// evalExpr resolves the aggregation operators the completion pipeline uses
// ($add, $ifNull, $divide, field paths) against an in-memory document.
func evalExpr(t *testing.T, doc bson.M, expr any) any {
	t.Helper()

	switch e := expr.(type) {
	case string:
		if len(e) > 1 && e[0] == '$' {
			if v, ok := doc[e[1:]]; ok {
				return v
			}
			return nil
		}
		return e
	case bson.M:
		if len(e) != 1 {
			t.Fatalf("expected a single-operator expression, got %v", e)
		}
		for op, raw := range e {
			args, ok := raw.([]any)
			if !ok {
				t.Fatalf("operator %s arguments are not a list: %v", op, raw)
			}
			switch op {
			case "$add":
				var sum float64
				for _, a := range args {
					sum += toFloat(t, evalExpr(t, doc, a))
				}
				return sum
			case "$ifNull":
				if v := evalExpr(t, doc, args[0]); v != nil {
					return v
				}
				return evalExpr(t, doc, args[1])
			case "$divide":
				return toFloat(t, evalExpr(t, doc, args[0])) / toFloat(t, evalExpr(t, doc, args[1]))
			default:
				t.Fatalf("unsupported operator %s", op)
			}
		}
	}
	return expr
}

func toFloat(t *testing.T, v any) float64 {
	t.Helper()

	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	case nil:
		return 0
	default:
		t.Fatalf("expected a numeric value, got %T", v)
		return 0
	}
}

// applyPipeline mirrors how Mongo runs a pipeline update: each $set stage
// evaluates every field against the document as it stood before the stage.
func applyPipeline(t *testing.T, doc bson.M, pipeline []bson.M) bson.M {
	t.Helper()

	for _, stage := range pipeline {
		set, ok := stage["$set"].(bson.M)
		if !ok {
			t.Fatalf("expected a $set stage, got %v", stage)
		}
		snapshot := bson.M{}
		for k, v := range doc {
			snapshot[k] = v
		}
		for field, expr := range set {
			doc[field] = evalExpr(t, snapshot, expr)
		}
	}
	return doc
}

func TestCompletionPipeline_AccumulatesTotalsAndAverage(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := bson.M{}

	doc = applyPipeline(t, doc, completionPipeline(100, 2, "owner-1", now))
	doc = applyPipeline(t, doc, completionPipeline(200, 4, "owner-1", now.Add(time.Hour)))

	if got := toFloat(t, doc["rental_count"]); got != 2 {
		t.Errorf("expected rental_count 2, got %v", got)
	}
	if got := toFloat(t, doc["total_revenue"]); got != 300 {
		t.Errorf("expected total_revenue 300, got %v", got)
	}
	if got := toFloat(t, doc["total_duration_days"]); got != 6 {
		t.Errorf("expected total_duration_days 6, got %v", got)
	}
	if got := toFloat(t, doc["average_duration_days"]); got != 3 {
		t.Errorf("expected average_duration_days 3, got %v", got)
	}
	if created, ok := doc["created_at"].(time.Time); !ok || !created.Equal(now) {
		t.Errorf("expected created_at to keep the first write time, got %v", doc["created_at"])
	}
	if updated, ok := doc["updated_at"].(time.Time); !ok || !updated.Equal(now.Add(time.Hour)) {
		t.Errorf("expected updated_at to follow the last write, got %v", doc["updated_at"])
	}
}

func TestCompletionPipeline_FirstCompletionFromEmptyRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	doc := applyPipeline(t, bson.M{}, completionPipeline(400, 4, "owner-1", now))

	if got := toFloat(t, doc["rental_count"]); got != 1 {
		t.Errorf("expected rental_count 1, got %v", got)
	}
	if got := toFloat(t, doc["average_duration_days"]); got != 4 {
		t.Errorf("expected average_duration_days 4, got %v", got)
	}
}

func TestZeroRecordUpdate_Idempotent(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	store := map[string]bson.M{}

	// upsert with only $setOnInsert: inserts once, never touches an
	// existing record.
	upsert := func(equipmentID string) bool {
		update := zeroRecordUpdate(equipmentID, now)
		for op := range update {
			if op != "$setOnInsert" {
				t.Fatalf("zero-record update must only seed on insert, found %s", op)
			}
		}
		if _, exists := store[equipmentID]; exists {
			return false
		}
		fields := update["$setOnInsert"].(bson.M)
		doc := bson.M{}
		for k, v := range fields {
			doc[k] = v
		}
		store[equipmentID] = doc
		return true
	}

	if !upsert("64b0c4f1a2b3c4d5e6f7a8b9") {
		t.Fatal("expected the first run to create a record")
	}
	if upsert("64b0c4f1a2b3c4d5e6f7a8b9") {
		t.Fatal("expected the second run to leave the record alone")
	}
	if len(store) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(store))
	}

	doc := store["64b0c4f1a2b3c4d5e6f7a8b9"]
	if got := toFloat(t, doc["rental_count"]); got != 0 {
		t.Errorf("expected a zeroed rental_count, got %v", got)
	}
	if got := toFloat(t, doc["total_revenue"]); got != 0 {
		t.Errorf("expected a zeroed total_revenue, got %v", got)
	}
	if got := toFloat(t, doc["average_duration_days"]); got != 0 {
		t.Errorf("expected a zeroed average_duration_days, got %v", got)
	}
	if doc["equipment_id"] != "64b0c4f1a2b3c4d5e6f7a8b9" {
		t.Errorf("expected the equipment id to be seeded, got %v", doc["equipment_id"])
	}
}
