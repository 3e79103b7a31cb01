package store_test

import "math"

// faultyStore is a raw store whose every operation fails with err.
type faultyStore struct {
	err error
}

func (f *faultyStore) GetItem(string) (string, bool, error) { return "", false, f.err }
func (f *faultyStore) SetItem(string, string) error         { return f.err }
func (f *faultyStore) RemoveItem(string) error              { return f.err }
func (f *faultyStore) Clear() error                         { return f.err }

func nanValue() float64 {
	return math.NaN()
}

// panicky panics when serialized.
type panicky struct{}

func (panicky) MarshalJSON() ([]byte, error) {
	panic("boom")
}
