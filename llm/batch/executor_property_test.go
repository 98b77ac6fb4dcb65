package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/BaSui01/visiondesc/testutil"
)

// TestProperty_Executor_OrderBoundAndIsolation 对任意输入、并发度和失败集合:
// 结果与输入逐位对齐，并发不超过上限，失败只影响自身条目。
func TestProperty_Executor_OrderBoundAndIsolation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(rt, "n")
		concurrency := rapid.IntRange(1, 8).Draw(rt, "concurrency")
		failing := rapid.SliceOfN(rapid.Bool(), n, n).Draw(rt, "failing")

		items := make([]string, n)
		shouldFail := make(map[string]bool, n)
		for i := range items {
			items[i] = fmt.Sprintf("item-%d", i)
			shouldFail[items[i]] = failing[i]
		}

		probe := testutil.NewConcurrencyProbe()
		op := func(ctx context.Context, item string) (string, error) {
			exit := probe.Enter(item)
			defer exit()
			time.Sleep(200 * time.Microsecond)
			if shouldFail[item] {
				return "", errors.New("failed: " + item)
			}
			return "ok: " + item, nil
		}

		results, err := NewExecutor(Config{Concurrency: concurrency}).Run(context.Background(), items, op)
		require.NoError(rt, err)
		require.Len(rt, results, n)

		for i, r := range results {
			assert.Equal(rt, items[i], r.Identifier)
			if failing[i] {
				assert.False(rt, r.Success)
				assert.Equal(rt, "failed: "+items[i], r.Error)
				assert.Empty(rt, r.Description)
			} else {
				assert.True(rt, r.Success)
				assert.Equal(rt, "ok: "+items[i], r.Description)
				assert.Empty(rt, r.Error)
			}
		}

		assert.LessOrEqual(rt, probe.Peak(), concurrency)
		assert.Equal(rt, n, probe.Total())

		summary := Summarize(results)
		assert.Equal(rt, n, summary.Succeeded+summary.Failed)
	})
}

// TestProperty_Executor_CapRejectsWithoutInvoking 超过上限的批次永远不会调用 Operation。
func TestProperty_Executor_CapRejectsWithoutInvoking(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 25).Draw(rt, "limit")
		n := rapid.IntRange(0, 40).Draw(rt, "n")

		calls := 0
		op := func(ctx context.Context, item string) (string, error) {
			calls++
			return item, nil
		}

		// Concurrency 1 keeps calls race-free.
		results, err := NewExecutor(Config{Concurrency: 1, MaxBatchSize: limit}).Run(context.Background(), make([]string, n), op)
		if n > limit {
			require.Error(rt, err)
			assert.Nil(rt, results)
			assert.Zero(rt, calls)
			return
		}
		require.NoError(rt, err)
		assert.Len(rt, results, n)
		assert.Equal(rt, n, calls)
	})
}

// TestProperty_Executor_Deterministic 相同输入和确定性 Operation 在不同并发度下产生相同结果。
func TestProperty_Executor_Deterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	op := func(ctx context.Context, item string) (string, error) {
		if len(item)%3 == 0 {
			return "", fmt.Errorf("rejected %q", item)
		}
		return fmt.Sprintf("%d chars", len(item)), nil
	}

	properties.Property("results do not depend on concurrency", prop.ForAll(
		func(items []string, c1, c2 int) bool {
			first, err := NewExecutor(Config{Concurrency: c1}).Run(context.Background(), items, op)
			if err != nil {
				t.Logf("first run failed: %v", err)
				return false
			}
			second, err := NewExecutor(Config{Concurrency: c2}).Run(context.Background(), items, op)
			if err != nil {
				t.Logf("second run failed: %v", err)
				return false
			}
			if len(first) != len(items) || len(second) != len(items) {
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					t.Logf("index %d differs: %+v vs %+v", i, first[i], second[i])
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.IntRange(1, 6),
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}
