package workflow

import (
	"fmt"
	"sync"
	"testing"
)

func TestAccumulatorUpdate_MergeKeepsOtherFields(t *testing.T) {
	acc := NewAccumulator(nil)
	acc.Update(map[string]interface{}{
		FieldZone:     "Central",
		FieldLocation: "MG Road",
	})
	acc.Update(map[string]interface{}{
		FieldZone: "North",
	})

	if got := acc.GetString(FieldZone); got != "North" {
		t.Errorf("zone = %q, expected later write to win", got)
	}
	if got := acc.GetString(FieldLocation); got != "MG Road" {
		t.Errorf("location = %q, expected untouched field to survive the merge", got)
	}
}

func TestAccumulatorUpdate_NoFieldDropped(t *testing.T) {
	acc := NewAccumulator(nil)
	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				key := fmt.Sprintf("field-%d-%d", w, i)
				acc.Update(map[string]interface{}{key: i})
			}
		}(w)
	}
	wg.Wait()

	snap := acc.Snapshot()
	if len(snap) != writers*perWriter {
		t.Errorf("snapshot has %d fields, expected %d (concurrent updates must not drop writes)", len(snap), writers*perWriter)
	}
}

func TestAccumulatorSnapshot_CopyIsIndependent(t *testing.T) {
	acc := NewAccumulator(map[string]interface{}{FieldZone: "Central"})
	snap := acc.Snapshot()
	snap[FieldZone] = "mutated"

	if got := acc.GetString(FieldZone); got != "Central" {
		t.Errorf("zone = %q, mutating a snapshot must not affect the accumulator", got)
	}
}

func TestAccumulatorSetOnce(t *testing.T) {
	t.Run("generates exactly once across repeated initialization", func(t *testing.T) {
		acc := NewAccumulator(nil)
		calls := 0
		gen := func() interface{} {
			calls++
			return fmt.Sprintf("COMP-%d", calls)
		}

		first := acc.SetOnce(FieldComplaintNo, gen)
		second := acc.SetOnce(FieldComplaintNo, gen)
		third := acc.SetOnce(FieldComplaintNo, gen)

		if calls != 1 {
			t.Errorf("generator ran %d times, expected 1", calls)
		}
		if first != second || second != third {
			t.Errorf("SetOnce returned %v, %v, %v, expected a stable value", first, second, third)
		}
	})

	t.Run("seeded value short-circuits the generator", func(t *testing.T) {
		acc := NewAccumulator(map[string]interface{}{FieldComplaintNo: "DRAFT-u1-42"})
		got := acc.SetOnce(FieldComplaintNo, func() interface{} {
			t.Fatal("generator must not run for a seeded field")
			return nil
		})
		if got != "DRAFT-u1-42" {
			t.Errorf("SetOnce = %v, expected the seeded draft identifier", got)
		}
	})

	t.Run("independent per field", func(t *testing.T) {
		acc := NewAccumulator(nil)
		acc.SetOnce(FieldComplaintNo, func() interface{} { return "COMP-1" })
		got := acc.SetOnce(FieldDate, func() interface{} { return "2025-03-09" })
		if got != "2025-03-09" {
			t.Errorf("SetOnce(date) = %v, expected its own generator to run", got)
		}
	})
}

func TestAccumulatorRevision(t *testing.T) {
	acc := NewAccumulator(nil)
	r0 := acc.Revision()

	acc.Update(map[string]interface{}{FieldZone: "Central"})
	r1 := acc.Revision()
	if r1 == r0 {
		t.Error("revision did not advance on update")
	}

	acc.Update(nil)
	if acc.Revision() != r1 {
		t.Error("empty update must not advance the revision")
	}

	acc.Set(FieldZone, "North")
	if acc.Revision() == r1 {
		t.Error("revision did not advance on Set")
	}
}
