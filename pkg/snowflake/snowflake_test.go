package snowflake

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Generate_Is_Strictly_Increasing(t *testing.T) {
	req := require.New(t)

	node, err := NewNode(1)
	req.NoError(err)

	prev := node.Generate()
	for i := 0; i < 10_000; i++ {
		next := node.Generate()
		req.Greater(next, prev)
		prev = next
	}
}

func Test_Generate_Is_Unique_Under_Concurrency(t *testing.T) {
	req := require.New(t)

	node, err := NewNode(1)
	req.NoError(err)

	const workers = 8
	const perWorker = 2_000

	var mu sync.Mutex
	seen := make(map[int64]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, node.Generate())
			}
			mu.Lock()
			for _, id := range ids {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	req.Len(seen, workers*perWorker)
}

func Test_NewNode_Rejects_Out_Of_Range_Ids(t *testing.T) {
	req := require.New(t)

	_, err := NewNode(-1)
	req.ErrorIs(err, ErrNodeOutOfRange)

	_, err = NewNode(1024)
	req.ErrorIs(err, ErrNodeOutOfRange)

	_, err = NewNode(1023)
	req.NoError(err)
}
