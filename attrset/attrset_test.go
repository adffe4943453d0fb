package attrset_test

import (
	"slices"
	"testing"

	"github.com/Alia5/padmapper/attrset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniverseDedup(t *testing.T) {
	u := attrset.New([]string{"a", "b", "a", "c", "b"})
	assert.Equal(t, 3, u.Len())
	assert.Equal(t, []string{"a", "b", "c"}, u.Items())
	assert.True(t, u.Contains("c"))
	assert.False(t, u.Contains("d"))
}

func TestUniverseIdentity(t *testing.T) {
	u1 := attrset.New([]int{1, 2, 3})
	u2 := attrset.New([]int{1, 2, 3})
	assert.NotEqual(t, u1.ID(), u2.ID())

	s1 := u1.SubsetWith(1, 2)
	s2 := u2.SubsetWith(1, 2)
	assert.False(t, s1.Equal(s2))
	assert.NotEqual(t, s1.Key(), s2.Key())

	s3 := u1.SubsetWith(2, 1)
	assert.True(t, s1.Equal(s3))
	assert.Equal(t, s1.Key(), s3.Key())
}

func TestSubsetAsMapKey(t *testing.T) {
	u := attrset.New([]string{"x", "y", "z"})
	table := map[attrset.Key]string{
		u.SubsetWith("x", "y").Key(): "xy",
		u.SubsetWith("z").Key():      "z",
	}

	s := u.EmptySubset()
	_, ok := table[s.Key()]
	assert.False(t, ok)

	require.NoError(t, s.TryInsert("y"))
	require.NoError(t, s.TryInsert("x"))
	assert.Equal(t, "xy", table[s.Key()])

	s.Remove("x")
	s.Remove("y")
	require.NoError(t, s.TryInsert("z"))
	assert.Equal(t, "z", table[s.Key()])
}

func TestTryInsert(t *testing.T) {
	tests := []struct {
		name    string
		item    string
		wantErr error
	}{
		{name: "member", item: "a"},
		{name: "non member", item: "q", wantErr: attrset.ErrNotMember},
		{name: "empty string non member", item: "", wantErr: attrset.ErrNotMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := attrset.New([]string{"a", "b"})
			s := u.EmptySubset()
			err := s.TryInsert(tt.item)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, s.Len())
				return
			}
			assert.NoError(t, err)
			assert.True(t, s.Contains(tt.item))
		})
	}
}

func TestSubsetWithDropsNonMembers(t *testing.T) {
	u := attrset.New([]int{10, 20})
	s := u.SubsetWith(10, 30, 20, 40)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []int{10, 20}, slices.Collect(s.Items()))

	s2 := u.SubsetFrom(slices.Values([]int{30, 20}))
	assert.Equal(t, []int{20}, slices.Collect(s2.Items()))
}

func TestRemoveAndClear(t *testing.T) {
	u := attrset.New([]int{1, 2, 3})
	s := u.SubsetWith(1, 2, 3)
	s.Remove(99)
	assert.Equal(t, 3, s.Len())
	s.Remove(2)
	assert.False(t, s.Contains(2))
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Equal(u.EmptySubset()))
}

func TestCopyFrom(t *testing.T) {
	u := attrset.New([]int{1, 2, 3})
	src := u.SubsetWith(1, 3)
	dst := u.SubsetWith(2)
	require.NoError(t, dst.CopyFrom(src))
	assert.True(t, dst.Equal(src))

	src.Remove(1)
	assert.True(t, dst.Contains(1), "copy is independent of source")

	other := attrset.New([]int{1, 2, 3}).SubsetWith(1)
	assert.ErrorIs(t, dst.CopyFrom(other), attrset.ErrMismatchedUniverse)
	assert.True(t, dst.Contains(3), "failed copy leaves destination untouched")
}

func TestLargeUniverse(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i * 7
	}
	u := attrset.NewWithCapacity(items, 256)
	s := u.SubsetWith(0, 7*64, 7*65, 7*199)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []int{0, 7 * 64, 7 * 65, 7 * 199}, slices.Collect(s.Items()))

	c := s.Clone()
	assert.Equal(t, s.Key(), c.Key())
	c.Remove(7 * 65)
	assert.NotEqual(t, s.Key(), c.Key())
}
