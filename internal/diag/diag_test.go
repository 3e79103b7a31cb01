package diag

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/pkg/types"
)

func TestLogger_Report(t *testing.T) {
	tests := []struct {
		name    string
		failure types.Failure
		want    string
	}{
		{
			name: "write failure with key",
			failure: types.Failure{
				Kind:    types.WriteFailure,
				Message: "write failed",
				Key:     "settings",
				Err:     types.ErrQuotaExceeded,
			},
			want: `[WARN] write failed, key="settings": storage quota exceeded`,
		},
		{
			name: "clear failure has no key",
			failure: types.Failure{
				Kind:    types.ClearFailure,
				Message: "clear failed",
				Err:     errors.New("permission denied"),
			},
			want: `[WARN] clear failed: permission denied`,
		},
		{
			name: "empty key on read is still shown",
			failure: types.Failure{
				Kind:    types.ReadFailure,
				Message: "read failed",
				Err:     types.ErrMalformedValue,
			},
			want: `[WARN] read failed, key="": stored value is not valid JSON`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			l := lgr.Func(func(format string, args ...interface{}) {
				got = fmt.Sprintf(format, args...)
			})
			NewLogger(l).Report(tt.failure)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_WritesThroughLgr(t *testing.T) {
	out := bytes.Buffer{}
	l := lgr.New(lgr.Out(&out), lgr.Err(&out))

	NewLogger(l).Report(types.Failure{Kind: types.RemoveFailure, Message: "remove failed", Key: "k", Err: errors.New("boom")})

	assert.Contains(t, out.String(), "WARN")
	assert.Contains(t, out.String(), `remove failed, key="k": boom`)
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.log")
	l, closer := NewFileLogger(path, 1)

	NewLogger(l).Report(types.Failure{Kind: types.WriteFailure, Message: "write failed", Key: "k", Err: types.ErrQuotaExceeded})
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `write failed, key="k": storage quota exceeded`), string(data))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	assert.Zero(t, r.Len())

	r.Report(types.Failure{Kind: types.ReadFailure, Key: "a"})
	r.Report(types.Failure{Kind: types.WriteFailure, Key: "b"})

	recs := r.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, types.ReadFailure, recs[0].Kind)
	assert.Equal(t, "b", recs[1].Key)
	assert.NotEqual(t, recs[0].ID, recs[1].ID)
	_, err := uuid.Parse(recs[0].ID)
	assert.NoError(t, err)
	assert.False(t, recs[1].Time.Before(recs[0].Time))

	// Records returns a copy.
	recs[0].Key = "mutated"
	assert.Equal(t, "a", r.Records()[0].Key)
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Multi{a, nil, b, Discard}.Report(types.Failure{Kind: types.ClearFailure})
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
}
