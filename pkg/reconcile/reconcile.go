package reconcile

import (
	"context"
	"sync"

	"github.com/kitchensync/pkg/errors"
	"github.com/kitchensync/pkg/utils"
)

// Diff 关联集合的差异
type Diff struct {
	ToAdd    []int64 // desired − current
	ToRemove []int64 // current − desired
}

// Empty 差异是否为空
func (d *Diff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// Calls 需要发出的网络调用数
func (d *Diff) Calls() int {
	return len(d.ToAdd) + len(d.ToRemove)
}

// Compute 计算当前集合到目标集合的最小差异
// 重复元素按集合语义去重
func Compute(current, desired []int64) Diff {
	currentSet := utils.ToSet(current)
	desiredSet := utils.ToSet(desired)

	var diff Diff
	for _, id := range utils.Unique(desired) {
		if _, ok := currentSet[id]; !ok {
			diff.ToAdd = append(diff.ToAdd, id)
		}
	}
	for _, id := range utils.Unique(current) {
		if _, ok := desiredSet[id]; !ok {
			diff.ToRemove = append(diff.ToRemove, id)
		}
	}
	return diff
}

// Linker 单条关联的增删接口
type Linker interface {
	Assign(ctx context.Context, parentID, childID int64) error
	Remove(ctx context.Context, parentID, childID int64) error
}

// apply 并发发出全部增删调用并等待完成
// 调用之间没有顺序保证；任一失败整体视为失败，成功的部分不回滚
func apply(ctx context.Context, links Linker, parentID int64, diff Diff) error {
	if diff.Empty() {
		return nil
	}

	var wg sync.WaitGroup
	errCh := make(chan error, diff.Calls())

	for _, id := range diff.ToAdd {
		wg.Add(1)
		go func(childID int64) {
			defer wg.Done()
			if err := links.Assign(ctx, parentID, childID); err != nil {
				errCh <- err
			}
		}(id)
	}
	for _, id := range diff.ToRemove {
		wg.Add(1)
		go func(childID int64) {
			defer wg.Done()
			if err := links.Remove(ctx, parentID, childID); err != nil {
				errCh <- err
			}
		}(id)
	}

	wg.Wait()
	close(errCh)

	errs := make([]error, 0, diff.Calls())
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Aggregate(errs)
}
