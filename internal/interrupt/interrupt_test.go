package interrupt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"began", Began, false},
		{"BEGAN", Began, false},
		{" ended ", Ended, false},
		{"end", Ended, false},
		{"paused", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "began", Began.String())
	assert.Equal(t, "ended", Ended.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestQueueDeliversEveryEvent(t *testing.T) {
	q := NewQueue(8)
	ctx := context.Background()

	for _, k := range []Kind{Began, Began, Ended, Ended, Began} {
		require.NoError(t, q.Push(ctx, k))
	}
	q.Close()

	var got []Kind
	for k := range q.Events() {
		got = append(got, k)
	}
	assert.Equal(t, []Kind{Began, Began, Ended, Ended, Began}, got)
}

func TestQueueRejectsInvalidKind(t *testing.T) {
	q := NewQueue(1)
	defer q.Close()

	assert.Error(t, q.Push(context.Background(), Kind(0)))
}

func TestQueueClosed(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Push(context.Background(), Began), ErrClosed)
}

func TestQueueFullPushHonorsContext(t *testing.T) {
	q := NewQueue(1)
	defer q.Close()
	require.NoError(t, q.Push(context.Background(), Began))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Push(ctx, Ended), context.DeadlineExceeded)
}

func TestCloseReturnsWithBlockedPushers(t *testing.T) {
	q := NewQueue(16)
	ctx := context.Background()
	for i := 0; i < 16; i++ {
		require.NoError(t, q.Push(ctx, Began))
	}

	pushed := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { pushed <- q.Push(ctx, Ended) }()
	}
	time.Sleep(20 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		q.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close blocked behind a full queue")
	}
	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, <-pushed, ErrClosed)
	}
}
