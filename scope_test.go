package di_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sectrean/inject-kit"
	"github.com/sectrean/inject-kit/internal/errors"
	"github.com/sectrean/inject-kit/internal/mocks"
	"github.com/sectrean/inject-kit/internal/testtypes"
	"github.com/sectrean/inject-kit/internal/testutils"
)

func Test_Container_Enter(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		s1, err := c.Enter(di.RequestLifetime)
		require.NoError(t, err)

		s2, err := c.NewScope()
		require.NoError(t, err)

		assert.NotSame(t, s1, s2)
		assert.Equal(t, di.RequestLifetime, s1.Kind())
		assert.Equal(t, di.RequestLifetime, s2.Kind())
		assert.Same(t, c, s1.Container())
	})

	t.Run("singleton", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		s1, err := c.Enter(di.SingletonLifetime)
		require.NoError(t, err)

		s2, err := c.Enter(di.SingletonLifetime)
		require.NoError(t, err)

		assert.Same(t, s1, s2)
		assert.Equal(t, di.SingletonLifetime, s1.Kind())
	})

	t.Run("transient", func(t *testing.T) {
		f := &testtypes.Factory{}
		c, err := di.NewContainer(
			di.WithBinding(f.NewInterfaceA, di.TransientLifetime),
			di.WithBinding(testtypes.NewInterfaceB, di.RequestLifetime),
		)
		require.NoError(t, err)

		s, err := c.Enter(di.TransientLifetime)
		require.NoError(t, err)
		assert.Equal(t, di.TransientLifetime, s.Kind())

		ctx := context.Background()
		a1, err := di.Resolve[testtypes.InterfaceA](ctx, s)
		assert.NoError(t, err)

		a2, err := di.Resolve[testtypes.InterfaceA](ctx, s)
		assert.NoError(t, err)

		assert.NotSame(t, a1, a2)
		assert.Equal(t, 0, s.Len())

		_, err = di.Resolve[testtypes.InterfaceB](ctx, s)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "di.Scope.Resolve testtypes.InterfaceB: no active request scope")
		assert.ErrorIs(t, err, di.ErrNoRequestScope)
	})

	t.Run("unknown lifetime", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		s, err := c.Enter(di.Lifetime(9))
		testutils.LogError(t, err)

		assert.Nil(t, s)
		assert.EqualError(t, err, "di.Container.Enter: unknown Unknown Lifetime 9")
	})

	t.Run("container closed", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		err = c.Close(context.Background())
		require.NoError(t, err)

		s, err := c.NewScope()
		testutils.LogError(t, err)

		assert.Nil(t, s)
		assert.EqualError(t, err, "di.Container.Enter: container closed")
		assert.ErrorIs(t, err, di.ErrContainerClosed)
	})
}

func Test_Scope_Resolve(t *testing.T) {
	t.Run("singleton same instance across scopes", func(t *testing.T) {
		f := &testtypes.Factory{}
		c, err := di.NewContainer(
			di.WithBinding(f.NewInterfaceA),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s1, err := c.NewScope()
		require.NoError(t, err)

		s2, err := c.NewScope()
		require.NoError(t, err)

		a1, err := di.Resolve[testtypes.InterfaceA](ctx, s1)
		require.NoError(t, err)

		a2, err := di.Resolve[testtypes.InterfaceA](ctx, s2)
		require.NoError(t, err)

		a3, err := di.Resolve[testtypes.InterfaceA](ctx, c)
		require.NoError(t, err)

		assert.Same(t, a1, a2)
		assert.Same(t, a1, a3)
		assert.Equal(t, 1, f.Calls())

		// Singletons are owned by the singleton scope
		assert.Equal(t, 0, s1.Len())
	})

	t.Run("singleton concurrent resolution", func(t *testing.T) {
		f := &testtypes.Factory{}
		c, err := di.NewContainer(
			di.WithBinding(func() testtypes.InterfaceA {
				time.Sleep(10 * time.Millisecond)
				return f.NewInterfaceA()
			}),
		)
		require.NoError(t, err)

		const concurrency = 100
		ctx := context.Background()
		results := make([]testtypes.InterfaceA, concurrency)
		errs := make([]error, concurrency)

		testutils.RunParallel(concurrency, func(i int) {
			results[i], errs[i] = di.Resolve[testtypes.InterfaceA](ctx, c)
		})

		for i := range concurrency {
			assert.NoError(t, errs[i])
			assert.Same(t, results[0], results[i])
		}
		assert.Equal(t, 1, f.Calls())
	})

	t.Run("singleton concurrent resolution from request scopes", func(t *testing.T) {
		f := &testtypes.Factory{}
		c, err := di.NewContainer(
			di.WithBinding(func() testtypes.InterfaceA {
				time.Sleep(10 * time.Millisecond)
				return f.NewInterfaceA()
			}),
			di.WithBinding(testtypes.NewInterfaceB, di.RequestLifetime),
		)
		require.NoError(t, err)

		const concurrency = 50
		ctx := context.Background()
		results := make([]testtypes.InterfaceA, concurrency)

		testutils.RunParallel(concurrency, func(i int) {
			s, err := c.NewScope()
			if !assert.NoError(t, err) {
				return
			}
			defer func() {
				assert.NoError(t, s.Exit(ctx))
			}()

			_, err = di.Resolve[testtypes.InterfaceB](ctx, s)
			assert.NoError(t, err)

			results[i], err = di.Resolve[testtypes.InterfaceA](ctx, s)
			assert.NoError(t, err)
		})

		for i := range concurrency {
			assert.Same(t, results[0], results[i])
		}
		assert.Equal(t, 1, f.Calls())
	})

	t.Run("request same instance within scope", func(t *testing.T) {
		f := &testtypes.Factory{}
		c, err := di.NewContainer(
			di.WithBinding(f.NewInterfaceA, di.RequestLifetime),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		a1, err := di.Resolve[testtypes.InterfaceA](ctx, s)
		require.NoError(t, err)

		a2, err := di.Resolve[testtypes.InterfaceA](ctx, s)
		require.NoError(t, err)

		assert.Same(t, a1, a2)
		assert.Equal(t, 1, f.Calls())
		assert.Equal(t, 1, s.Len())
	})

	t.Run("request different instance across scopes", func(t *testing.T) {
		f := &testtypes.Factory{}
		c, err := di.NewContainer(
			di.WithBinding(f.NewInterfaceA, di.RequestLifetime),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s1, err := c.NewScope()
		require.NoError(t, err)

		s2, err := c.NewScope()
		require.NoError(t, err)

		a1, err := di.Resolve[testtypes.InterfaceA](ctx, s1)
		require.NoError(t, err)

		a2, err := di.Resolve[testtypes.InterfaceA](ctx, s2)
		require.NoError(t, err)

		assert.NotSame(t, a1, a2)
		assert.Equal(t, 2, f.Calls())
	})

	t.Run("request depends on singleton", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewStructAPtr, di.As[testtypes.InterfaceA]()),
			di.WithBinding(func(a testtypes.InterfaceA) *testtypes.StructB {
				return &testtypes.StructB{}
			}, di.RequestLifetime),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		_, err = di.Resolve[*testtypes.StructB](ctx, s)
		assert.NoError(t, err)

		s1, err := c.Enter(di.SingletonLifetime)
		require.NoError(t, err)
		assert.Equal(t, 1, s1.Len())
	})

	t.Run("singleton depends on request", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewInterfaceA, di.RequestLifetime),
			di.WithBinding(testtypes.NewInterfaceB),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.InterfaceB](ctx, s)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "di.Scope.Resolve testtypes.InterfaceB: dependency testtypes.InterfaceA: no active request scope")
		assert.ErrorIs(t, err, di.ErrNoRequestScope)
	})

	t.Run("transient different instances", func(t *testing.T) {
		f := &testtypes.Factory{}
		c, err := di.NewContainer(
			di.WithBinding(f.NewInterfaceA, di.TransientLifetime),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		a1, err := di.Resolve[testtypes.InterfaceA](ctx, s)
		require.NoError(t, err)

		a2, err := di.Resolve[testtypes.InterfaceA](ctx, s)
		require.NoError(t, err)

		assert.NotSame(t, a1, a2)
		assert.Equal(t, 2, f.Calls())
		assert.Equal(t, 0, s.Len())
	})

	t.Run("transient dependencies of request", func(t *testing.T) {
		f := &testtypes.Factory{}
		c, err := di.NewContainer(
			di.WithBinding(f.NewInterfaceA, di.TransientLifetime),
			di.WithBinding(func(a1, a2 testtypes.InterfaceA) testtypes.InterfaceB {
				assert.NotSame(t, a1, a2)
				return &testtypes.StructB{}
			}, di.RequestLifetime),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.InterfaceB](ctx, s)
		assert.NoError(t, err)
		assert.Equal(t, 2, f.Calls())
	})

	t.Run("scope exited", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewInterfaceA, di.RequestLifetime),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		err = s.Exit(ctx)
		require.NoError(t, err)
		assert.True(t, s.Exited())

		_, err = di.Resolve[testtypes.InterfaceA](ctx, s)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "di.Scope.Resolve testtypes.InterfaceA: scope exited")
		assert.ErrorIs(t, err, di.ErrScopeExited)
	})

	t.Run("container closed", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewInterfaceA),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		err = c.Close(ctx)
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.InterfaceA](ctx, s)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "di.Scope.Resolve testtypes.InterfaceA: container closed")
		assert.ErrorIs(t, err, di.ErrContainerClosed)
	})

	t.Run("contains", func(t *testing.T) {
		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewInterfaceA, di.RequestLifetime),
		)
		require.NoError(t, err)

		s, err := c.NewScope()
		require.NoError(t, err)

		assert.True(t, s.Contains(testtypes.TypeInterfaceA))
		assert.False(t, s.Contains(testtypes.TypeInterfaceB))
	})
}

func Test_Scope_Exit(t *testing.T) {
	t.Run("closes request instances in reverse order", func(t *testing.T) {
		var closed []string

		c, err := di.NewContainer(
			di.WithBinding(testtypes.NewInterfaceA,
				di.RequestLifetime,
				di.WithCloseFunc(func(context.Context, testtypes.InterfaceA) error {
					closed = append(closed, "A")
					return nil
				}),
			),
			di.WithBinding(testtypes.NewInterfaceB,
				di.TransientLifetime,
				di.WithCloseFunc(func(context.Context, testtypes.InterfaceB) error {
					closed = append(closed, "B")
					return nil
				}),
			),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.InterfaceB](ctx, s)
		require.NoError(t, err)

		err = s.Exit(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []string{"B", "A"}, closed)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("does not close singletons", func(t *testing.T) {
		aMock := mocks.NewInterfaceAMock(t)
		aMock.On("Close", mock.Anything).Return(nil).Once()

		bMock := mocks.NewInterfaceBMock(t)
		bMock.On("Close", mock.Anything).Return().Once()

		c, err := di.NewContainer(
			di.WithBinding(func() testtypes.InterfaceA { return aMock }),
			di.WithBinding(func(testtypes.InterfaceA) testtypes.InterfaceB { return bMock }, di.RequestLifetime),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.InterfaceB](ctx, s)
		require.NoError(t, err)

		err = s.Exit(ctx)
		require.NoError(t, err)

		bMock.AssertCalled(t, "Close", mock.Anything)
		aMock.AssertNotCalled(t, "Close", mock.Anything)

		err = c.Close(ctx)
		assert.NoError(t, err)
	})

	t.Run("close errors joined", func(t *testing.T) {
		aMock := mocks.NewInterfaceAMock(t)
		aMock.On("Close", mock.Anything).Return(errors.New("close A")).Once()

		c, err := di.NewContainer(
			di.WithBinding(func() testtypes.InterfaceA { return aMock }, di.RequestLifetime),
			di.WithBinding(testtypes.NewInterfaceB,
				di.RequestLifetime,
				di.WithCloseFunc(func(context.Context, testtypes.InterfaceB) error {
					return errors.New("close B")
				}),
			),
		)
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		_, err = di.Resolve[testtypes.InterfaceB](ctx, s)
		require.NoError(t, err)

		err = c.Exit(ctx, s)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "di.Scope.Exit: close B\nclose A")
	})

	t.Run("exit twice", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		ctx := context.Background()
		s, err := c.NewScope()
		require.NoError(t, err)

		err = s.Exit(ctx)
		assert.NoError(t, err)

		err = s.Exit(ctx)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "di.Scope.Exit: scope exited")
		assert.ErrorIs(t, err, di.ErrScopeExited)
	})

	t.Run("singleton scope", func(t *testing.T) {
		c, err := di.NewContainer()
		require.NoError(t, err)

		s, err := c.Enter(di.SingletonLifetime)
		require.NoError(t, err)

		err = s.Exit(context.Background())
		testutils.LogError(t, err)

		assert.EqualError(t, err, "di.Scope.Exit: singleton scope cannot be exited")
		assert.ErrorIs(t, err, di.ErrScopeNotExitable)
		assert.False(t, s.Exited())
	})

	t.Run("scope from another container", func(t *testing.T) {
		c1, err := di.NewContainer()
		require.NoError(t, err)

		c2, err := di.NewContainer()
		require.NoError(t, err)

		s, err := c1.NewScope()
		require.NoError(t, err)

		err = c2.Exit(context.Background(), s)
		testutils.LogError(t, err)

		assert.EqualError(t, err, "di.Container.Exit: scope does not belong to this container")
		assert.False(t, s.Exited())
	})
}
