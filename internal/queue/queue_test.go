package queue

import (
	"math/rand"
	"sort"
	"testing"
)

func TestPriorityQueue(t *testing.T) {
	pq := NewMax(4)

	pq.Push(Item{Node: 1, Distance: 10.0})
	pq.Push(Item{Node: 2, Distance: 5.0})
	pq.Push(Item{Node: 3, Distance: 20.0})

	if pq.Len() != 3 {
		t.Errorf("expected len 3, got %d", pq.Len())
	}

	top, ok := pq.Top()
	if !ok || top.Distance != 20.0 {
		t.Errorf("expected top 20.0, got %v", top.Distance)
	}

	// Pop order: 20, 10, 5
	for _, want := range []float32{20.0, 10.0, 5.0} {
		it, ok := pq.Pop()
		if !ok || it.Distance != want {
			t.Errorf("expected %v, got %v", want, it.Distance)
		}
	}

	if _, ok := pq.Pop(); ok {
		t.Error("expected empty queue")
	}
}

// A bounded max-heap must retain exactly the bound smallest distances.
func TestPushBounded(t *testing.T) {
	const bound = 8
	const n = 100

	rng := rand.New(rand.NewSource(42))
	dists := make([]float64, n)
	pq := NewMax(bound + 1)

	for i := 0; i < n; i++ {
		d := rng.Float64()
		dists[i] = d
		pq.PushBounded(Item{Node: int32(i), Distance: float32(d)}, bound)
		if pq.Len() > bound {
			t.Fatalf("queue grew past bound: %d", pq.Len())
		}
	}

	sort.Float64s(dists)
	kept := make([]float64, 0, bound)
	for pq.Len() > 0 {
		it, _ := pq.Pop()
		kept = append(kept, float64(it.Distance))
	}
	sort.Float64s(kept)

	for i := range kept {
		if float32(kept[i]) != float32(dists[i]) {
			t.Fatalf("rank %d: kept %v, want %v", i, kept[i], dists[i])
		}
	}
}

func TestReset(t *testing.T) {
	pq := NewMax(2)
	pq.Push(Item{Node: 1, Distance: 1})
	pq.Reset()

	if pq.Len() != 0 {
		t.Errorf("expected empty queue after reset, got %d", pq.Len())
	}
	if _, ok := pq.Top(); ok {
		t.Error("expected no top after reset")
	}

	// A reset queue must order fresh items correctly.
	pq.Push(Item{Node: 2, Distance: 7})
	pq.Push(Item{Node: 3, Distance: 3})
	it, ok := pq.Pop()
	if !ok || it.Distance != 7 {
		t.Errorf("expected 7 after reset, got %v", it.Distance)
	}
}
