package querycache

import (
	"context"
)

// FetchAs 类型化读取
func FetchAs[T any](ctx context.Context, s *Store, key Key, fetcher func(context.Context) (T, error)) (T, error) {
	var dest T
	err := s.Fetch(ctx, key, &dest, func(ctx context.Context) (interface{}, error) {
		return fetcher(ctx)
	})
	return dest, err
}

// Mutate 执行变更
// 变更不重试（副作用未必幂等）；成功后按资源名前缀标脏依赖的查询
func (s *Store) Mutate(ctx context.Context, mutation func(context.Context) error, invalidates ...string) error {
	if err := mutation(ctx); err != nil {
		return err
	}

	if len(invalidates) > 0 {
		s.Invalidate(invalidates...)
	}
	return nil
}

// MutateAs 带返回值的变更
func MutateAs[T any](ctx context.Context, s *Store, mutation func(context.Context) (T, error), invalidates ...string) (T, error) {
	var result T
	err := s.Mutate(ctx, func(ctx context.Context) error {
		var err error
		result, err = mutation(ctx)
		return err
	}, invalidates...)
	return result, err
}
