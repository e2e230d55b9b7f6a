package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// go test -v -run=TestLevelDBStore
func TestLevelDBStore(t *testing.T) {
	st, err := NewLevelDBStore(filepath.Join(t.TempDir(), "db"))
	require.Nil(t, err)
	defer st.Close()

	require.Nil(t, st.Put([]byte("k1"), []byte("v1")))
	v, err := st.Get([]byte("k1"))
	require.Nil(t, err)
	require.Equal(t, []byte("v1"), v)

	has, err := st.Has([]byte("k2"))
	require.Nil(t, err)
	require.False(t, has)

	_, err = st.Get([]byte("k2"))
	require.Equal(t, ErrNotFound, err)

	require.Nil(t, st.Delete([]byte("k1")))
	has, err = st.Has([]byte("k1"))
	require.Nil(t, err)
	require.False(t, has)
}

// go test -v -run=TestBatchCommit
func TestBatchCommit(t *testing.T) {
	st, err := NewMemLevelDBStore()
	require.Nil(t, err)
	defer st.Close()

	require.Nil(t, st.Put([]byte("gone"), []byte{1}))

	require.Nil(t, st.NewBatch())
	require.Nil(t, st.BatchPut([]byte("a"), []byte{1}))
	require.Nil(t, st.BatchPut([]byte("b"), []byte{2}))
	require.Nil(t, st.BatchDelete([]byte("gone")))

	has, err := st.Has([]byte("a"))
	require.Nil(t, err)
	require.False(t, has, "batch must not be visible before commit")

	require.Nil(t, st.BatchCommit())

	v, err := st.Get([]byte("b"))
	require.Nil(t, err)
	require.Equal(t, []byte{2}, v)
	has, err = st.Has([]byte("gone"))
	require.Nil(t, err)
	require.False(t, has)
}

// go test -v -run=TestIteratorPrefix
func TestIteratorPrefix(t *testing.T) {
	st, err := NewMemLevelDBStore()
	require.Nil(t, err)
	defer st.Close()

	require.Nil(t, st.Put([]byte{0x01, 0x02}, []byte("x")))
	require.Nil(t, st.Put([]byte{0x01, 0x01}, []byte("y")))
	require.Nil(t, st.Put([]byte{0x02, 0x01}, []byte("z")))

	iter := st.NewIterator([]byte{0x01})
	defer iter.Release()

	var values []string
	for iter.Next() {
		values = append(values, string(iter.Value()))
	}
	require.Nil(t, iter.Error())
	require.Equal(t, []string{"y", "x"}, values)
}

// go test -v -run=TestReopen
func TestReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "db")
	st, err := NewLevelDBStore(file)
	require.Nil(t, err)
	require.Nil(t, st.Put([]byte("persist"), []byte("yes")))
	require.Nil(t, st.Close())

	st, err = NewLevelDBStore(file)
	require.Nil(t, err)
	defer st.Close()
	v, err := st.Get([]byte("persist"))
	require.Nil(t, err)
	require.Equal(t, []byte("yes"), v)

	c := NewLevelDBConfig(file + DBConfigSuffix)
	require.True(t, c.DisableSeeksCompaction)
}
