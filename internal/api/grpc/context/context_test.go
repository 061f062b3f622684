package context

import (
	stdctx "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestManager_SetAndGetSubject(t *testing.T) {
	m := NewManager()
	ctx := m.SetSubjectToContext(stdctx.Background(), "admin")

	got, ok := m.GetSubjectFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "admin", got)
}

func TestManager_GetSubject_NotFound(t *testing.T) {
	m := NewManager()

	_, ok := m.GetSubjectFromContext(stdctx.Background())
	assert.False(t, ok)

	ctx := metadata.NewIncomingContext(stdctx.Background(), metadata.New(map[string]string{"x-trace-id": "t"}))
	_, ok = m.GetSubjectFromContext(ctx)
	assert.False(t, ok)
}

func TestManager_SetSubject_OverridesClientValue(t *testing.T) {
	m := NewManager()
	baseMD := metadata.New(map[string]string{
		"x-trace-id": "t",
		subjectKey:   "mallory",
	})
	ctxWithMD := metadata.NewIncomingContext(stdctx.Background(), baseMD)

	ctx := m.SetSubjectToContext(ctxWithMD, "admin")

	got, ok := m.GetSubjectFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "admin", got)

	md, _ := metadata.FromIncomingContext(ctx)
	assert.Equal(t, []string{"t"}, md.Get("x-trace-id"))
	assert.Equal(t, []string{"mallory"}, baseMD.Get(subjectKey), "original metadata must stay untouched")
}
