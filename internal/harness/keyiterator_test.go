package harness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/martin-neuhaeusser/smartace/internal/harness"
)

func TestKeyIteratorEnumeratesEveryTuple(t *testing.T) {
	it := harness.NewKeyIterator(2, 2)
	var suffixes []string
	for !it.IsFull() {
		suffixes = append(suffixes, it.Suffix())
		it.Next()
	}
	assert.Equal(t, []string{"_0_0", "_0_1", "_1_0", "_1_1"}, suffixes)
}

func TestKeyIteratorDegenerateIsImmediatelyFull(t *testing.T) {
	assert.True(t, harness.NewKeyIterator(0, 2).IsFull())
	assert.True(t, harness.NewKeyIterator(3, 0).IsFull())
}

func TestKeyIteratorSingleDigit(t *testing.T) {
	it := harness.NewKeyIterator(3, 1)
	var suffixes []string
	for !it.IsFull() {
		suffixes = append(suffixes, it.Suffix())
		it.Next()
	}
	assert.Equal(t, []string{"_0", "_1", "_2"}, suffixes)
}
